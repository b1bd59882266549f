package middleware

import "github.com/gin-gonic/gin"

// SecurityHeadersMiddleware sets a Content-Security-Policy that only lets
// pages load images and videos from mediaSources.
func SecurityHeadersMiddleware(mediaSources string) gin.HandlerFunc {
	csp := "default-src 'self'; img-src " + mediaSources + "; media-src " + mediaSources + "; frame-ancestors 'none'"
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		c.Next()
	}
}

// CORSMiddleware allows the configured web origin to call the API with cookies.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		c.Header("Vary", "Origin")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
