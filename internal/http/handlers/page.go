package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/notebook-backend/internal/http/response"
	"github.com/yungbote/notebook-backend/internal/services"
)

type PageHandler struct {
	pages services.PageService
}

func NewPageHandler(pages services.PageService) *PageHandler {
	return &PageHandler{pages: pages}
}

type createPageRequest struct {
	Title        string     `json:"title" binding:"required"`
	Content      string     `json:"content"`
	ParentPageID *uuid.UUID `json:"parent_page_id"`
}

type updatePageRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	ExpectedVersion int     `json:"expected_version" binding:"omitempty,min=0"`
}

type moveRequest struct {
	TargetID uuid.UUID `json:"target_id" binding:"required"`
	Relation string    `json:"relation" binding:"required,oneof=before after child"`
}

// POST /api/notebooks/:id/pages
func (h *PageHandler) Create(c *gin.Context) {
	notebookID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req createPageRequest
	if !bindJSON(c, &req) {
		return
	}
	page, err := h.pages.Create(c.Request.Context(), notebookID, services.CreatePageInput{
		Title:        req.Title,
		Content:      req.Content,
		ParentPageID: req.ParentPageID,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"page": page})
}

// GET /api/pages/:id
func (h *PageHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	page, err := h.pages.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": page})
}

// PATCH /api/pages/:id
func (h *PageHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updatePageRequest
	if !bindJSON(c, &req) {
		return
	}
	page, err := h.pages.Update(c.Request.Context(), id, services.UpdatePageInput{
		Title:           req.Title,
		Content:         req.Content,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": page})
}

// DELETE /api/pages/:id
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.pages.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_pages": res.PageIDs, "deleted_versions": res.DeletedVersions})
}

// POST /api/pages/:id/move
func (h *PageHandler) Move(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}
	page, err := h.pages.Move(c.Request.Context(), id, req.TargetID, req.Relation)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": page})
}

// POST /api/pages/:id/move/plan
func (h *PageHandler) PlanMove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req) {
		return
	}
	dec, err := h.pages.PlanMove(c.Request.Context(), id, req.TargetID, req.Relation)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"decision": dec})
}
