package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "io.winapps.babytracker/internal/models/login"
	"io.winapps.babytracker/internal/session"
)

// Logout clears the session flag and the session cookie
func (h *SessionHandler) Logout(c *gin.Context) {
	sid, _ := c.Cookie(h.cookie.CookieName)
	if sid != "" {
		c.Set("session_id", sid)
		h.views.Logout(c.Request.Context(), session.Session{ID: sid})
		if err := h.gate.Logout(c.Request.Context(), sid); err != nil {
			h.logError(c, err, "Failed to clear session")
			respondError(c, err, actionSave)
			return
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", "", h.cookie.SecureCookie, true)
	c.JSON(http.StatusOK, models.LoginResponse{Authenticated: false})
}
