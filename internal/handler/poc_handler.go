package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetledger/internal/model"
)

type POCHandler struct{ base }

func (h *POCHandler) Create(c *gin.Context) {
	create(h.base, c, "CreatePOC", h.ledger.CreatePOC)
}

func (h *POCHandler) Get(c *gin.Context) {
	get(h.base, c, "GetPOC", h.ledger.GetPOC)
}

// List handles GET /api/pocs?client=<id>&active=true
func (h *POCHandler) List(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		h.fail(c, "ListPOCs", err)
		return
	}

	var pocs []model.POC
	if clientID := c.Query("client"); clientID != "" {
		pocs, err = h.ledger.POCsByClient(c.Request.Context(), clientID, active)
	} else {
		pocs, err = h.ledger.ListPOCs(c.Request.Context())
		if err == nil && active {
			pocs = activeOnly(pocs)
		}
	}
	if err != nil {
		h.fail(c, "ListPOCs", err)
		return
	}
	c.JSON(http.StatusOK, pocs)
}

func (h *POCHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdatePOC", h.ledger.UpdatePOC)
}

func (h *POCHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeletePOC", h.ledger.DeletePOC)
}

func activeOnly(pocs []model.POC) []model.POC {
	out := make([]model.POC, 0, len(pocs))
	for _, p := range pocs {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}
