package handler

import "github.com/gin-gonic/gin"

type EstimationHandler struct{ base }

func (h *EstimationHandler) Create(c *gin.Context) {
	create(h.base, c, "CreateEstimation", h.ledger.CreateEstimation)
}

func (h *EstimationHandler) Get(c *gin.Context) {
	get(h.base, c, "GetEstimation", h.ledger.GetEstimation)
}

func (h *EstimationHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdateEstimation", h.ledger.UpdateEstimation)
}

func (h *EstimationHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeleteEstimation", h.ledger.DeleteEstimation)
}
