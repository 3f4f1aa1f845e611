// Package handler exposes the ledger over REST/JSON with gin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"budgetledger/internal/service/ledger"
	"budgetledger/pkg/logger"
)

// Handlers 汇总所有资源的 handler，由 router 注册
type Handlers struct {
	Clients     *ClientHandler
	POCs        *POCHandler
	Projects    *ProjectHandler
	Estimations *EstimationHandler
	Payments    *PaymentHandler
	Milestones  *MilestoneHandler
	Requests    *RequestHandler
	Holds       *HoldHandler
}

func New(l *ledger.Ledger, logger *zap.Logger) *Handlers {
	b := base{ledger: l, logger: logger}
	return &Handlers{
		Clients:     &ClientHandler{b},
		POCs:        &POCHandler{b},
		Projects:    &ProjectHandler{b},
		Estimations: &EstimationHandler{b},
		Payments:    &PaymentHandler{b},
		Milestones:  &MilestoneHandler{b},
		Requests:    &RequestHandler{b},
		Holds:       &HoldHandler{b},
	}
}

type base struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// StatusOf maps a ledger error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInconsistentReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, ledger.ErrReferenced),
		errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail 写错误响应：{"error", "code", "field"}
func (b base) fail(c *gin.Context, op string, err error) {
	log := logger.WithTrace(c.Request.Context(), b.logger)
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error(op+": failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error", "code": ledger.Code(err)})
		return
	}

	log.Warn(op+": rejected", zap.Int("status", status), zap.Error(err))
	body := gin.H{"error": err.Error(), "code": ledger.Code(err)}
	var fe *ledger.FieldError
	if errors.As(err, &fe) {
		body["field"] = fe.Field
	}
	c.JSON(status, body)
}

func (b base) bind(c *gin.Context, op string, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		logger.WithTrace(c.Request.Context(), b.logger).Warn(op+": invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error(), "code": "validation_error"})
		return false
	}
	return true
}

// bindOptional 允许空 body
func (b base) bindOptional(c *gin.Context, op string, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return b.bind(c, op, v)
}

// queryBool 解析 ?active=true 这类开关，缺省为 false
func queryBool(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, ledger.InvalidField(key, "must be a boolean")
	}
	return v, nil
}

func create[In, Out any](b base, c *gin.Context, op string, fn func(context.Context, In) (*Out, error)) {
	var in In
	if !b.bind(c, op, &in) {
		return
	}
	out, err := fn(c.Request.Context(), in)
	if err != nil {
		b.fail(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func get[Out any](b base, c *gin.Context, op string, fn func(context.Context, string) (*Out, error)) {
	out, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		b.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func list[Out any](b base, c *gin.Context, op string, fn func(context.Context) ([]Out, error)) {
	out, err := fn(c.Request.Context())
	if err != nil {
		b.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func update[In, Out any](b base, c *gin.Context, op string, fn func(context.Context, string, In) (*Out, error)) {
	var in In
	if !b.bind(c, op, &in) {
		return
	}
	out, err := fn(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		b.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func remove(b base, c *gin.Context, op string, fn func(context.Context, string) error) {
	id := c.Param("id")
	if err := fn(c.Request.Context(), id); err != nil {
		b.fail(c, op, err)
		return
	}
	logger.WithTrace(c.Request.Context(), b.logger).Info(op+": success", zap.String("id", id))
	c.Status(http.StatusNoContent)
}
