package handler

import "github.com/gin-gonic/gin"

type PaymentHandler struct{ base }

func (h *PaymentHandler) Create(c *gin.Context) {
	create(h.base, c, "CreatePayment", h.ledger.CreatePayment)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	get(h.base, c, "GetPayment", h.ledger.GetPayment)
}

func (h *PaymentHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdatePayment", h.ledger.UpdatePayment)
}

// Delete 同时删除付款下的里程碑
func (h *PaymentHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeletePayment", h.ledger.DeletePayment)
}

// Milestones handles GET /api/payments/:id/milestones and returns the
// milestones together with their rollup.
func (h *PaymentHandler) Milestones(c *gin.Context) {
	get(h.base, c, "PaymentMilestones", h.ledger.PaymentMilestones)
}
