package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct{ base }

func (h *ProjectHandler) Create(c *gin.Context) {
	create(h.base, c, "CreateProject", h.ledger.CreateProject)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	get(h.base, c, "GetProject", h.ledger.GetProject)
}

func (h *ProjectHandler) List(c *gin.Context) {
	list(h.base, c, "ListProjects", h.ledger.ListProjects)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdateProject", h.ledger.UpdateProject)
}

// Delete 级联删除项目下的估算、付款、里程碑、追加申请和冻结
func (h *ProjectHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeleteProject", h.ledger.DeleteProject)
}

// Detail handles GET /api/projects/:id/detail
func (h *ProjectHandler) Detail(c *gin.Context) {
	get(h.base, c, "ProjectDetail", h.ledger.GetProjectDetail)
}

func (h *ProjectHandler) Estimations(c *gin.Context) {
	children(h.base, c, "ProjectEstimations", h.ledger.EstimationsByProject)
}

func (h *ProjectHandler) Payments(c *gin.Context) {
	children(h.base, c, "ProjectPayments", h.ledger.PaymentsByProject)
}

func (h *ProjectHandler) Requests(c *gin.Context) {
	children(h.base, c, "ProjectRequests", h.ledger.RequestsByProject)
}

func (h *ProjectHandler) Holds(c *gin.Context) {
	children(h.base, c, "ProjectHolds", h.ledger.HoldsByProject)
}

// children 列出 :id 所指父记录下的子记录
func children[Out any](b base, c *gin.Context, op string, fn func(ctx context.Context, parentID string) ([]Out, error)) {
	out, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		b.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
