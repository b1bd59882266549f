package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
)

// OpenAlbum drills into one album
func (h *ViewHandler) OpenAlbum(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionLoad)
		return
	}

	page, err := h.views.OpenAlbum(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		h.logError(c, err, "Failed to open album", "album_id", id)
		respondError(c, err, actionLoad)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CloseAlbum returns to the album list
func (h *ViewHandler) CloseAlbum(c *gin.Context) {
	page, err := h.views.CloseAlbum(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		h.logError(c, err, "Failed to close album")
		respondError(c, err, actionLoad)
		return
	}
	c.JSON(http.StatusOK, page)
}
