package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/githubayushraj/My-Lobby-Backend/internal/origin"
)

// CORSMiddleware answers browsers calling the REST API from another origin
// listed in allowed_origins. Foreign origins get 403.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	check := origin.Checker(allowed)
	return func(c *gin.Context) {
		from := c.GetHeader("Origin")
		if from == "" {
			c.Next()
			return
		}
		if !check(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", from)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
