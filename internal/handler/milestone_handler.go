package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MilestoneHandler struct{ base }

func (h *MilestoneHandler) Create(c *gin.Context) {
	create(h.base, c, "CreateMilestone", h.ledger.CreateMilestone)
}

func (h *MilestoneHandler) Get(c *gin.Context) {
	get(h.base, c, "GetMilestone", h.ledger.GetMilestone)
}

// List handles GET /api/milestones?payment=<id>
func (h *MilestoneHandler) List(c *gin.Context) {
	milestones, err := h.ledger.ListMilestones(c.Request.Context(), c.Query("payment"))
	if err != nil {
		h.fail(c, "ListMilestones", err)
		return
	}
	c.JSON(http.StatusOK, milestones)
}

func (h *MilestoneHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdateMilestone", h.ledger.UpdateMilestone)
}

func (h *MilestoneHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeleteMilestone", h.ledger.DeleteMilestone)
}
