package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"placechat/internal/auth"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	TokenKey  = "token"
	ClaimsKey = "authClaims"
)

// AuthMiddleware validates the bearer token and stores the caller in the context.
func AuthMiddleware(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		token, ok := auth.BearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			log.Printf("token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenKey, token)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RejectAuthenticated blocks login and registration for callers that already hold a valid token.
func RejectAuthenticated(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
			if _, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "already authenticated"})
				return
			}
		}
		c.Next()
	}
}
