package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/update_entry"
)

// UpdateEntry edits the title of a milestone
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	var req models.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.views.EditTitle(c.Request.Context(), middleware.CurrentSession(c), id, req.Title)
	if err != nil {
		h.logError(c, err, "Failed to update entry", "entry_id", id)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}
