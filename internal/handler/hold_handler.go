package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetledger/internal/model"
)

type HoldHandler struct{ base }

// Add handles POST /api/projects/:id/add-hold
func (h *HoldHandler) Add(c *gin.Context) {
	var in model.HoldInput
	if !h.bind(c, "AddHold", &in) {
		return
	}
	hold, err := h.ledger.AddHold(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, "AddHold", err)
		return
	}
	c.JSON(http.StatusCreated, hold)
}

func (h *HoldHandler) Get(c *gin.Context) {
	get(h.base, c, "GetHold", h.ledger.GetHold)
}

// Release handles POST /api/holds/:id/release
func (h *HoldHandler) Release(c *gin.Context) {
	get(h.base, c, "ReleaseHold", h.ledger.ReleaseHold)
}
