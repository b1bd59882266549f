package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
)

// DeleteAlbum removes an album and its items
func (h *AlbumHandler) DeleteAlbum(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	page, err := h.views.DeleteAlbum(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		h.logError(c, err, "Failed to delete album", "album_id", id)
		respondError(c, err, "删除失败")
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteAlbumItem removes one item from an album
func (h *AlbumHandler) DeleteAlbumItem(c *gin.Context) {
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

	page, err := h.views.DeleteAlbumItem(c.Request.Context(), middleware.CurrentSession(c), albumID, itemID)
	if err != nil {
		h.logError(c, err, "Failed to delete album item", "album_id", albumID, "item_id", itemID)
		respondError(c, err, "删除失败")
		return
	}
	c.JSON(http.StatusOK, page)
}
