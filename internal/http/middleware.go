package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
)

const userContextKey = "currentUser"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authGuard rejects unauthenticated requests before they reach the task and
// profile handlers: it extracts the bearer token, verifies it, resolves the
// subject to a user, and attaches that user to the request context.
func (h *Handler) authGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "msg": "No token provided"})
			return
		}

		userID, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "msg": "Invalid or expired token"})
			return
		}

		user, err := h.auth.ResolveUser(c.Request.Context(), userID)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, service.ErrUserNotFound) {
				msg = "User not found"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "msg": msg})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the user attached by the auth guard.
func currentUser(c *gin.Context) *domain.User {
	user, _ := c.MustGet(userContextKey).(*domain.User)
	return user
}
