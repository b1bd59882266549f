package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/config"
	"io.winapps.babytracker/internal/domain"
	models "io.winapps.babytracker/internal/models/login"
	"io.winapps.babytracker/internal/session"
)

// Gate authenticates the shared site password.
type Gate interface {
	Authenticate(ctx context.Context, candidate string) (session.Session, error)
	CheckAuth(ctx context.Context, sessionID string) session.Session
	Logout(ctx context.Context, sessionID string) error
}

// ViewResetter forgets the view state of a session.
type ViewResetter interface {
	Logout(ctx context.Context, s session.Session)
}

type SessionHandler struct {
	gate   Gate
	views  ViewResetter
	cookie config.SessionConfig
	logger *zap.SugaredLogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(gate Gate, views ViewResetter, cookie config.SessionConfig, logger *zap.SugaredLogger) *SessionHandler {
	return &SessionHandler{
		gate:   gate,
		views:  views,
		cookie: cookie,
		logger: logger,
	}
}

// Login checks the site password and starts a browser session
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	s, err := h.gate.Authenticate(c.Request.Context(), req.Password)
	if errors.Is(err, domain.ErrIncorrectPassword) {
		logWithContext(h.logger, c, "warn", "Login rejected", "error", err)
		respondError(c, err, actionSave)
		return
	}
	if err != nil {
		h.logError(c, err, "Failed to start session")
		respondError(c, err, actionSave)
		return
	}

	// MaxAge 0 makes a session cookie that ends with the browser session
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, s.ID, 0, "/", "", h.cookie.SecureCookie, true)
	c.Set("session_id", s.ID)

	c.JSON(http.StatusOK, models.LoginResponse{Authenticated: true})
}
