package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "user_id"
	ContextPrincipal = "principal"
)

// Authorizer resolves a bearer token to the caller
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*service.Principal, error)
}

// AuthMiddleware rejects requests without a valid bearer token and a live
// session. On success the user id and principal are stored on the context.
func AuthMiddleware(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must be 'Bearer <token>'",
			})
			return
		}

		principal, err := auth.Authorize(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			status := http.StatusInternalServerError
			msg := "Internal server error"
			if errors.Is(err, apperrors.ErrAuthentication) {
				status = http.StatusUnauthorized
				msg = apperrors.Message(err, "Unauthorized")
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(ContextUserID, principal.UserID)
		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by AuthMiddleware
func PrincipalFrom(c *gin.Context) (*service.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil, false
	}
	p, ok := v.(*service.Principal)
	return p, ok
}
