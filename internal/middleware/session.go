package middleware

import (
	"context"
	"net/http"
	"strings"

	"book-tracker/backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// UserIDHeader carries the caller's identity on book endpoints
	UserIDHeader = "user-id"
	// AccessTokenCookie is the httponly session cookie set at sign-in
	AccessTokenCookie = "sb-access-token"
	// RefreshTokenCookie is the httponly refresh cookie set at sign-in
	RefreshTokenCookie = "sb-refresh-token"
)

// SessionValidator resolves an access token to its user.
type SessionValidator interface {
	User(ctx context.Context, accessToken string) (*supabase.User, error)
}

// SessionGate rejects requests whose identity cannot be established. The
// user-id header is required on every gated route. When the request also
// carries an access token (session cookie or bearer header), the token is
// resolved against the identity provider and must belong to the same user.
// Every failure, provider errors included, answers with the same generic
// 401 so nothing about accounts or internals leaks.
func SessionGate(auth SessionValidator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			unauthorized(c)
			return
		}

		token := accessToken(c)
		if token == "" {
			// Header-only requests pass; the repository's owner filter
			// remains the guard on every query.
			c.Next()
			return
		}

		user, err := auth.User(c.Request.Context(), token)
		if err != nil {
			logger.Warn().Err(err).Msg("session validation failed")
			unauthorized(c)
			return
		}
		if user == nil || user.ID != userID {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
}
