package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
)

// DeleteEntry removes a milestone together with its comments
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	page, err := h.views.DeleteEntry(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		h.logError(c, err, "Failed to delete entry", "entry_id", id)
		respondError(c, err, "删除失败")
		return
	}
	c.JSON(http.StatusOK, page)
}
