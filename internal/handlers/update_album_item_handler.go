package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/update_album_item"
)

// UpdateAlbumItem edits the caption of an album item
func (h *AlbumHandler) UpdateAlbumItem(c *gin.Context) {
	albumID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	var req models.UpdateAlbumItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.views.EditAlbumItemCaption(c.Request.Context(), middleware.CurrentSession(c), albumID, itemID, req.Caption)
	if err != nil {
		h.logError(c, err, "Failed to update album item", "album_id", albumID, "item_id", itemID)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}
