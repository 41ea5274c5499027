package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]domain.Principal

func (s stubVerifier) VerifyToken(_ context.Context, token string) (*domain.Principal, error) {
	if token == "broken" {
		return nil, assert.AnError
	}
	p, ok := s[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &p, nil
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, p)
	})
	r.GET("/test", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{
		"customer": {UserID: "u1", Permission: domain.PermissionCustomer},
	})
	r := newTestRouter(auth.RequireAuth())

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"unknown token", "nope", http.StatusUnauthorized},
		{"store failure", "broken", http.StatusInternalServerError},
		{"valid token", "customer", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.token)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := get(r, "customer")
	assert.JSONEq(t, `{"userId":"u1","permission":"customer"}`, w.Body.String())
}

func TestRequirePermission(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{
		"customer": {UserID: "u1", Permission: domain.PermissionCustomer},
		"admin":    {UserID: "u2", Permission: domain.PermissionAdmin},
	})
	r := newTestRouter(auth.RequireAuth(), auth.RequirePermission(domain.PermissionEmployee))

	w := get(r, "customer")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), domain.CodeForbidden)

	assert.Equal(t, http.StatusOK, get(r, "admin").Code)
}

func TestRateLimiter_PerUser(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{
		"a": {UserID: "u1", Permission: domain.PermissionCustomer},
		"b": {UserID: "u2", Permission: domain.PermissionCustomer},
	})
	limiter := NewRateLimiter(0.001, 2, logger.Discard())
	r := newTestRouter(auth.RequireAuth(), limiter.Handler())

	assert.Equal(t, http.StatusOK, get(r, "a").Code)
	assert.Equal(t, http.StatusOK, get(r, "a").Code)
	w := get(r, "a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), domain.CodeRateLimited)

	assert.Equal(t, http.StatusOK, get(r, "b").Code)
}

type recordedRequest struct {
	method, path, status string
}

type stubRecorder struct {
	requests []recordedRequest
}

func (s *stubRecorder) RecordHTTPRequest(method, path, status string, _ time.Duration) {
	s.requests = append(s.requests, recordedRequest{method, path, status})
}

func TestMetricsAndLogging(t *testing.T) {
	rec := &stubRecorder{}
	r := gin.New()
	r.Use(RequestLogger(logger.Discard()), Metrics(rec))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, []recordedRequest{{"GET", "/items/:id", "204"}}, rec.requests)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
