package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/create_album"
)

type AlbumHandler struct {
	views      Views
	maxRequest int64
	logger     *zap.SugaredLogger
}

// NewAlbumHandler creates a new album handler. maxRequest bounds multipart bodies.
func NewAlbumHandler(views Views, maxRequest int64, logger *zap.SugaredLogger) *AlbumHandler {
	return &AlbumHandler{
		views:      views,
		maxRequest: maxRequest,
		logger:     logger,
	}
}

// CreateAlbum adds an album
func (h *AlbumHandler) CreateAlbum(c *gin.Context) {
	var req models.CreateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.views.CreateAlbum(c.Request.Context(), middleware.CurrentSession(c), req.Name, req.Description)
	if err != nil {
		h.logError(c, err, "Failed to create album", "name", req.Name)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusCreated, page)
}
