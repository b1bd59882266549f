package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
)

// LikeEntry adds one like to a milestone
func (h *EntryHandler) LikeEntry(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	page, err := h.views.Like(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		h.logError(c, err, "Failed to like entry", "entry_id", id)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}
