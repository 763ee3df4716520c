// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication and role gating. The
// catalog service itself performs no authorization; every write endpoint is
// gated here, before any service or store call runs.
//
//   - RequireAuth() validates the Authorization header against the JWT
//     manager and stores the caller's identity in the Gin context
//     ("userID", "userEmail", "userRole"). It rejects with 401 on any
//     missing/invalid/expired token.
//   - RequireRole(role) must run after RequireAuth and rejects with 403
//     when the authenticated caller does not hold the required role.
//
// Design notes:
//   - The "userID" context key doubles as the rate limiter's bucket key
//     (see KeyByUserOrIP), so authenticated callers are limited per user,
//     not per IP.
//   - Token parse failures are logged at debug level only; 401 responses
//     stay uniform to avoid oracle behavior.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-catalog-backend/internal/auth"
)

// Context keys set by RequireAuth.
const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
	ctxUserRole  = "userRole"
)

// TokenVerifier validates a bearer token string and returns its claims.
// *auth.Manager is the production implementation.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth returns a middleware that authenticates the request via the
// Authorization header ("Bearer <token>") and stores the caller's identity
// in the Gin context. Requests without a valid token are aborted with a
// uniform 401 envelope.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := v.Verify(parts[1])
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID())
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole returns a middleware that rejects authenticated callers whose
// role does not match. It must be registered after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "forbidden",
				"message":    "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id, or "" when unauthenticated.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// UserRole returns the authenticated caller's role, or "" when unauthenticated.
func UserRole(c *gin.Context) string {
	if v, ok := c.Get(ctxUserRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// abortUnauthorized writes the standard 401 envelope with a WWW-Authenticate
// challenge and stops the chain.
func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
