package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/notebook-backend/internal/http/response"
	"github.com/yungbote/notebook-backend/internal/services"
)

type NotebookHandler struct {
	notebooks services.NotebookService
	pages     services.PageService
}

func NewNotebookHandler(notebooks services.NotebookService, pages services.PageService) *NotebookHandler {
	return &NotebookHandler{notebooks: notebooks, pages: pages}
}

type createNotebookRequest struct {
	Title string `json:"title" binding:"required"`
}

type updateNotebookRequest struct {
	Title              *string `json:"title"`
	KeepLatestVersions *int    `json:"keep_latest_versions" binding:"omitempty,min=0"`
}

// POST /api/notebooks
func (h *NotebookHandler) Create(c *gin.Context) {
	var req createNotebookRequest
	if !bindJSON(c, &req) {
		return
	}
	nb, err := h.notebooks.Create(c.Request.Context(), req.Title)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"notebook": nb})
}

// GET /api/notebooks
func (h *NotebookHandler) List(c *gin.Context) {
	out, err := h.notebooks.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notebooks": out})
}

// GET /api/notebooks/:id
func (h *NotebookHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	nb, err := h.notebooks.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notebook": nb})
}

// PATCH /api/notebooks/:id
func (h *NotebookHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateNotebookRequest
	if !bindJSON(c, &req) {
		return
	}
	nb, err := h.notebooks.Update(c.Request.Context(), id, services.UpdateNotebookInput{
		Title:              req.Title,
		KeepLatestVersions: req.KeepLatestVersions,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notebook": nb})
}

// DELETE /api/notebooks/:id
func (h *NotebookHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.notebooks.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_pages": res.PageIDs, "deleted_versions": res.DeletedVersions})
}

// GET /api/notebooks/:id/pages
func (h *NotebookHandler) ListPages(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	pages, err := h.pages.ListByNotebook(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pages": pages})
}

// GET /api/notebooks/:id/tree
func (h *NotebookHandler) Tree(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	tree, err := h.pages.Tree(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tree": tree})
}
