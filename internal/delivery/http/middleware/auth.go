package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey     = "user_id"
	permissionKey = "permission"
	tokenKey      = "token"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Principal, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth rejects requests without a live bearer session.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, domain.CodeUnauthorized, "missing authorization token")
			return
		}

		principal, err := m.verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrSessionNotFound) {
				abort(c, http.StatusUnauthorized, domain.CodeUnauthorized, "invalid or expired session")
				return
			}
			abort(c, http.StatusInternalServerError, "", "failed to verify session")
			return
		}

		c.Set(userIDKey, principal.UserID)
		c.Set(permissionKey, principal.Permission)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequirePermission must run after RequireAuth.
func (m *AuthMiddleware) RequirePermission(min domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, domain.CodeUnauthorized, "unauthorized")
			return
		}
		if !principal.Permission.AtLeast(min) {
			abort(c, http.StatusForbidden, domain.CodeForbidden, "insufficient permission")
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the caller stored by RequireAuth.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	userID := c.GetString(userIDKey)
	if userID == "" {
		return domain.Principal{}, false
	}
	permission, _ := c.Get(permissionKey)
	p, _ := permission.(domain.Permission)
	return domain.Principal{UserID: userID, Permission: p}, true
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	if token := c.GetString(tokenKey); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}

func abort(c *gin.Context, status int, code, message string) {
	body := gin.H{"error": message}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, body)
}
