package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"budgetledger/internal/service/ledger"
	"budgetledger/pkg/logger"
)

type RequestHandler struct{ base }

func (h *RequestHandler) Create(c *gin.Context) {
	create(h.base, c, "CreateRequest", h.ledger.CreateRequest)
}

func (h *RequestHandler) Get(c *gin.Context) {
	get(h.base, c, "GetRequest", h.ledger.GetRequest)
}

// List handles GET /api/additional-requests?project=<id>
func (h *RequestHandler) List(c *gin.Context) {
	requests, err := h.ledger.ListRequests(c.Request.Context(), c.Query("project"))
	if err != nil {
		h.fail(c, "ListRequests", err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdateRequest", h.ledger.UpdateRequest)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeleteRequest", h.ledger.DeleteRequest)
}

// Approve handles POST /api/additional-requests/:id/approve
// approved_by 缺省时取当前登录用户
func (h *RequestHandler) Approve(c *gin.Context) {
	var req struct {
		ApprovedBy string `json:"approved_by"`
	}
	if !h.bindOptional(c, "ApproveRequest", &req) {
		return
	}
	if req.ApprovedBy == "" {
		req.ApprovedBy = ledger.ActorFrom(c.Request.Context())
	}

	id := c.Param("id")
	r, err := h.ledger.Approve(c.Request.Context(), id, req.ApprovedBy)
	if err != nil {
		h.fail(c, "ApproveRequest", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("ApproveRequest: success",
		zap.String("request_id", id),
		zap.String("approved_by", r.ApprovedBy),
	)
	c.JSON(http.StatusOK, r)
}

// Reject handles POST /api/additional-requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	var req struct {
		RejectionReason string `json:"rejection_reason"`
	}
	if !h.bindOptional(c, "RejectRequest", &req) {
		return
	}

	id := c.Param("id")
	r, err := h.ledger.Reject(c.Request.Context(), id, req.RejectionReason)
	if err != nil {
		h.fail(c, "RejectRequest", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("RejectRequest: success",
		zap.String("request_id", id),
	)
	c.JSON(http.StatusOK, r)
}
