package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct{ base }

// Create handles POST /api/clients
func (h *ClientHandler) Create(c *gin.Context) {
	create(h.base, c, "CreateClient", h.ledger.CreateClient)
}

func (h *ClientHandler) Get(c *gin.Context) {
	get(h.base, c, "GetClient", h.ledger.GetClient)
}

func (h *ClientHandler) List(c *gin.Context) {
	list(h.base, c, "ListClients", h.ledger.ListClients)
}

// Update handles both PUT and PATCH; absent fields keep their value.
func (h *ClientHandler) Update(c *gin.Context) {
	update(h.base, c, "UpdateClient", h.ledger.UpdateClient)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	remove(h.base, c, "DeleteClient", h.ledger.DeleteClient)
}

// POCs handles GET /api/clients/:id/pocs?active=true
func (h *ClientHandler) POCs(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		h.fail(c, "ClientPOCs", err)
		return
	}
	pocs, err := h.ledger.POCsByClient(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		h.fail(c, "ClientPOCs", err)
		return
	}
	c.JSON(http.StatusOK, pocs)
}

// Projects handles GET /api/clients/:id/projects
func (h *ClientHandler) Projects(c *gin.Context) {
	projects, err := h.ledger.ProjectsByClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "ClientProjects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}
