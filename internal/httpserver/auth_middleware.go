package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetledger/internal/service/ledger"
	"budgetledger/pkg/config"
	"budgetledger/pkg/rbac"
	"budgetledger/pkg/util"
)

const (
	ctxSubject = "subject"
	ctxRole    = "role"
)

// AuthMiddleware 校验 Bearer token，并把 sub 作为操作人写入 request context
func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := util.ExtractToken(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(token, cfg.Issuer, cfg.Secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		if !rbac.ValidRole(claims.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "unknown role"})
			c.Abort()
			return
		}

		c.Set(ctxSubject, claims.Subject)
		c.Set(ctxRole, claims.Role)
		c.Request = c.Request.WithContext(ledger.WithActor(c.Request.Context(), claims.Subject))

		c.Next()
	}
}
