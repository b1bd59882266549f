package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/session"
)

// Context keys set by SessionMiddleware.
const (
	SessionKey   = "session"
	SessionIDKey = "session_id"
)

// SessionChecker resolves a session id to its authentication state.
type SessionChecker interface {
	CheckAuth(ctx context.Context, sessionID string) session.Session
}

// SessionMiddleware reads the session cookie, checks it and stores the
// resulting session.Session in the context. Unauthenticated requests are
// rejected with 401.
func SessionMiddleware(checker SessionChecker, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先输入密码"})
			return
		}

		s := checker.CheckAuth(c.Request.Context(), sid)
		c.Set(SessionIDKey, s.ID)
		if !s.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先输入密码"})
			return
		}

		c.Set(SessionKey, s)
		c.Next()
	}
}

// CurrentSession returns the session stored by SessionMiddleware.
func CurrentSession(c *gin.Context) session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return session.Session{}
	}
	s, _ := v.(session.Session)
	return s
}
