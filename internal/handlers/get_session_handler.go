package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "io.winapps.babytracker/internal/models/login"
)

// GetSession reports whether the current browser session is authenticated
func (h *SessionHandler) GetSession(c *gin.Context) {
	sid, _ := c.Cookie(h.cookie.CookieName)
	s := h.gate.CheckAuth(c.Request.Context(), sid)
	c.Set("session_id", s.ID)
	c.JSON(http.StatusOK, models.LoginResponse{Authenticated: s.Authenticated})
}
