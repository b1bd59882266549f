package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/update_view"
	"io.winapps.babytracker/internal/view"
)

// SwitchTab moves the session to another tab
func (h *ViewHandler) SwitchTab(c *gin.Context) {
	var req models.SwitchTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	tab, err := view.ParseTab(req.Tab)
	if err != nil {
		respondError(c, err, actionLoad)
		return
	}

	page, err := h.views.SwitchTab(c.Request.Context(), middleware.CurrentSession(c), tab)
	if err != nil {
		h.logError(c, err, "Failed to switch tab", "tab", tab)
		respondError(c, err, actionLoad)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SetFilter sets the timeline category filter
func (h *ViewHandler) SetFilter(c *gin.Context) {
	var req models.SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.views.SetFilter(c.Request.Context(), middleware.CurrentSession(c), req.Category)
	if err != nil {
		h.logError(c, err, "Failed to set filter", "category", req.Category)
		respondError(c, err, actionLoad)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SetBirthday changes the birth date used for age labels
func (h *ViewHandler) SetBirthday(c *gin.Context) {
	var req models.SetBirthdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	page, err := h.views.SetBirthday(c.Request.Context(), middleware.CurrentSession(c), req.Birthday)
	if err != nil {
		h.logError(c, err, "Failed to set birthday")
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, page)
}
