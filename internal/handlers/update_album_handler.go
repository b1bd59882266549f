package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/update_album"
)

// UpdateAlbum renames an album or changes its description or cover
func (h *AlbumHandler) UpdateAlbum(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	var req models.UpdateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	patch := domain.AlbumPatch{Name: req.Name, Description: req.Description, CoverImage: req.CoverImage}
	page, err := h.views.UpdateAlbum(c.Request.Context(), middleware.CurrentSession(c), id, patch)
	if err != nil {
		h.logError(c, err, "Failed to update album", "album_id", id)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}
