package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/add_album_items"
	"io.winapps.babytracker/internal/view"
)

// AddAlbumItems adds media to an album, either uploaded as multipart "files"
// or copied from an existing entry given as JSON.
func (h *AlbumHandler) AddAlbumItems(c *gin.Context) {
	albumID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	var page view.Page
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		incoming, closeFiles, err := readIncoming(c, h.maxRequest)
		if err != nil {
			respondError(c, err, actionSave)
			return
		}
		defer closeFiles()

		page, err = h.views.AddAlbumItemsFromUpload(c.Request.Context(), middleware.CurrentSession(c), albumID, incoming, c.PostForm("caption"))
		if err != nil {
			h.logError(c, err, "Failed to add uploaded album items", "album_id", albumID, "count", len(incoming))
			respondError(c, err, actionSave)
			return
		}
	} else {
		var req models.AddAlbumItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		page, err = h.views.AddAlbumItemsFromEntry(c.Request.Context(), middleware.CurrentSession(c), albumID, req.EntryID, req.Caption)
		if err != nil {
			h.logError(c, err, "Failed to add album items from entry", "album_id", albumID, "entry_id", req.EntryID)
			respondError(c, err, actionSave)
			return
		}
	}
	c.JSON(http.StatusCreated, page)
}
