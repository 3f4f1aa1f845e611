package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"budgetledger/internal/handler"
	"budgetledger/pkg/config"
	"budgetledger/pkg/rbac"
	"budgetledger/pkg/trace"
)

// Pinger 用于 /readyz 检查存储是否可用
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	JWT  config.JWTConfig
	CORS config.CORSConfig
}

func NewRouter(h *handler.Handlers, store Pinger, opts Options, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(corsConfig(opts.CORS)))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_not_ready", "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	// jwt.secret 为空时关闭鉴权（本地开发）
	authEnabled := opts.JWT.Secret != ""
	if authEnabled {
		api.Use(AuthMiddleware(opts.JWT))
	} else {
		logger.Warn("JWT secret not configured, API authentication disabled")
	}
	perm := func(p string) gin.HandlerFunc {
		if !authEnabled {
			return func(c *gin.Context) { c.Next() }
		}
		return RequirePermission(p)
	}
	read, write, del, decide := perm(rbac.PermissionRead), perm(rbac.PermissionWrite),
		perm(rbac.PermissionDelete), perm(rbac.PermissionDecide)

	resource := func(g *gin.RouterGroup, get, update, remove gin.HandlerFunc) {
		g.GET("/:id", read, get)
		g.PUT("/:id", write, update)
		g.PATCH("/:id", write, update)
		g.DELETE("/:id", del, remove)
	}

	clients := api.Group("/clients")
	{
		clients.GET("", read, h.Clients.List)
		clients.POST("", write, h.Clients.Create)
		resource(clients, h.Clients.Get, h.Clients.Update, h.Clients.Delete)
		clients.GET("/:id/pocs", read, h.Clients.POCs)
		clients.GET("/:id/projects", read, h.Clients.Projects)
	}

	pocs := api.Group("/pocs")
	{
		pocs.GET("", read, h.POCs.List)
		pocs.POST("", write, h.POCs.Create)
		resource(pocs, h.POCs.Get, h.POCs.Update, h.POCs.Delete)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", read, h.Projects.List)
		projects.POST("", write, h.Projects.Create)
		resource(projects, h.Projects.Get, h.Projects.Update, h.Projects.Delete)
		projects.GET("/:id/detail", read, h.Projects.Detail)
		projects.GET("/:id/estimations", read, h.Projects.Estimations)
		projects.GET("/:id/payments", read, h.Projects.Payments)
		projects.GET("/:id/additional-requests", read, h.Projects.Requests)
		projects.GET("/:id/holds", read, h.Projects.Holds)
		projects.POST("/:id/add-hold", write, h.Holds.Add)
	}

	estimations := api.Group("/estimations")
	{
		estimations.POST("", write, h.Estimations.Create)
		resource(estimations, h.Estimations.Get, h.Estimations.Update, h.Estimations.Delete)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", write, h.Payments.Create)
		resource(payments, h.Payments.Get, h.Payments.Update, h.Payments.Delete)
		payments.GET("/:id/milestones", read, h.Payments.Milestones)
	}

	milestones := api.Group("/milestones")
	{
		milestones.GET("", read, h.Milestones.List)
		milestones.POST("", write, h.Milestones.Create)
		resource(milestones, h.Milestones.Get, h.Milestones.Update, h.Milestones.Delete)
	}

	requests := api.Group("/additional-requests")
	{
		requests.GET("", read, h.Requests.List)
		requests.POST("", write, h.Requests.Create)
		resource(requests, h.Requests.Get, h.Requests.Update, h.Requests.Delete)
		requests.POST("/:id/approve", decide, h.Requests.Approve)
		requests.POST("/:id/reject", decide, h.Requests.Reject)
	}

	holds := api.Group("/holds")
	{
		holds.GET("/:id", read, h.Holds.Get)
		holds.POST("/:id/release", write, h.Holds.Release)
	}

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", trace.HeaderName(), "X-Request-ID")
	c.ExposeHeaders = []string{trace.HeaderName()}
	return c
}
