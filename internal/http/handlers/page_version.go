package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/notebook-backend/internal/http/response"
	"github.com/yungbote/notebook-backend/internal/services"
)

const maxVersionListLimit = 500

type PageVersionHandler struct {
	pages services.PageService
}

func NewPageVersionHandler(pages services.PageService) *PageVersionHandler {
	return &PageVersionHandler{pages: pages}
}

type pruneRequest struct {
	KeepLatest *int `json:"keep_latest" binding:"required"`
}

// GET /api/pages/:id/versions?limit=
func (h *PageVersionHandler) List(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "validation", errInvalidLimit)
			return
		}
		limit = min(n, maxVersionListLimit)
	}
	out, err := h.pages.ListVersions(c.Request.Context(), id, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": out})
}

// GET /api/pages/:id/versions/:versionId
func (h *PageVersionHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	versionID, ok := uuidParam(c, "versionId")
	if !ok {
		return
	}
	v, err := h.pages.GetVersion(c.Request.Context(), id, versionID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"version": v})
}

// GET /api/pages/:id/diff?from=&to=&format=json|patch
func (h *PageVersionHandler) Diff(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	from, to := c.Query("from"), c.Query("to")
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "json"))) {
	case "json":
		res, err := h.pages.Diff(c.Request.Context(), id, from, to)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"diff": res})
	case "patch":
		patch, err := h.pages.Patch(c.Request.Context(), id, from, to)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/x-diff; charset=utf-8", patch)
	default:
		response.RespondError(c, http.StatusBadRequest, "validation", errInvalidFormat)
	}
}

// POST /api/pages/:id/versions/:versionId/restore
func (h *PageVersionHandler) Restore(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	versionID, ok := uuidParam(c, "versionId")
	if !ok {
		return
	}
	res, err := h.pages.Restore(c.Request.Context(), id, versionID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"page":          res.Page,
		"snapshot":      res.Snapshot,
		"restored_from": res.RestoredFrom,
	})
}

// POST /api/pages/:id/versions/prune
func (h *PageVersionHandler) Prune(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req pruneRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.pages.Prune(c.Request.Context(), id, *req.KeepLatest)
	if err != nil {
		if n > 0 {
			c.Header("X-Pruned-Count", strconv.Itoa(n))
		}
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}
