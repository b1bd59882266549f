package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
)

// StageFiles adds selected files to the add-entry draft
func (h *ViewHandler) StageFiles(c *gin.Context) {
	incoming, closeFiles, err := readIncoming(c, h.maxRequest)
	if err != nil {
		respondError(c, err, actionSave)
		return
	}
	defer closeFiles()

	page, err := h.views.StageFiles(c.Request.Context(), middleware.CurrentSession(c), incoming)
	if err != nil {
		h.logError(c, err, "Failed to stage files", "count", len(incoming))
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}

// RemoveStagedFile drops one file from the draft
func (h *ViewHandler) RemoveStagedFile(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	page, err := h.views.RemoveStaged(c.Request.Context(), middleware.CurrentSession(c), index)
	if err != nil {
		h.logError(c, err, "Failed to remove staged file", "index", index)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PreviewStagedFile streams a staged file back for previewing
func (h *ViewHandler) PreviewStagedFile(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		respondError(c, err, actionLoad)
		return
	}

	f, content, err := h.views.OpenStaged(c.Request.Context(), middleware.CurrentSession(c), index)
	if err != nil {
		h.logError(c, err, "Failed to open staged file", "index", index)
		respondError(c, err, actionLoad)
		return
	}
	defer content.Close()

	c.Header("Content-Type", f.ContentType)
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, f.Filename, time.Time{}, content)
}
