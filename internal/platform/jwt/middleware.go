package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskandtime_backend/internal/shared/principal"
)

// Context keys set by AuthRequired on the gin context.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
	ContextToken  = "accessToken"
)

// TokenVerifier checks a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*Claims, error)
}

// TokenStatusFunc reports whether the ledger still considers raw VALID.
type TokenStatusFunc func(ctx context.Context, raw string) (bool, error)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
// A token with a good signature is still rejected once the ledger has revoked or expired it.
func AuthRequired(verifier TokenVerifier, isValid TokenStatusFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		raw, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3. Check the ledger
		valid, err := isValid(c.Request.Context(), raw)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "token status lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		// 4. Publish the principal
		p := principal.Principal{UserID: claims.UserID, Email: claims.Email(), Role: claims.Role}
		c.Set(ContextUserID, p.UserID)
		c.Set(ContextEmail, p.Email)
		c.Set(ContextRole, p.Role)
		c.Set(ContextToken, raw)
		c.Request = c.Request.WithContext(principal.WithPrincipal(c.Request.Context(), p))

		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// TokenFromContext returns the raw token stored by AuthRequired.
func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextToken)
	if !ok {
		return "", false
	}
	raw, ok := v.(string)
	return raw, ok && raw != ""
}
