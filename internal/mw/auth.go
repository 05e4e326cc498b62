package mw

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mikrotik-manager/internal/auth"
)

const sessionKey = "session"

// SessionResolver turns a bearer token into a session, or nil when the token
// does not identify one.
type SessionResolver interface {
	GetSession(ctx context.Context, accessToken string) (*auth.Session, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireSession rejects requests without a valid session and stores the
// session in the context for handlers.
func RequireSession(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := resolver.GetSession(c.Request.Context(), BearerToken(c))
		if err != nil {
			log.Printf("Error resolving session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session"})
			return
		}
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrNoSession.Error()})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// Session returns the session stored by RequireSession.
func Session(c *gin.Context) *auth.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}
