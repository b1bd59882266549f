package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/create_entry"
	"io.winapps.babytracker/internal/view"
)

type EntryHandler struct {
	views  Views
	logger *zap.SugaredLogger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(views Views, logger *zap.SugaredLogger) *EntryHandler {
	return &EntryHandler{
		views:  views,
		logger: logger,
	}
}

// CreateEntry uploads the staged draft files and records a new milestone
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req models.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.views.CreateEntry(c.Request.Context(), middleware.CurrentSession(c), view.EntryInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Category:    req.Category,
	})
	if err != nil {
		h.logError(c, err, "Failed to create entry", "title", req.Title, "category", req.Category)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusCreated, page)
}
