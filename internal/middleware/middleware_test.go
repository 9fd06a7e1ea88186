package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-cms/internal/auth"
	"portfolio-cms/internal/domain/user"
	"portfolio-cms/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func issue(t *testing.T, sessions *auth.SessionManager, role user.Role) string {
	t.Helper()
	session, err := sessions.Issue(&user.User{ID: uuid.New(), Email: "a@b.co", Role: role})
	require.NoError(t, err)
	return session.Token
}

func TestAuthMiddleware(t *testing.T) {
	sessions := auth.NewSessionManager("secret", "portfolio-cms", time.Hour)
	r := gin.New()
	r.GET("/me", AuthMiddleware(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Email)
	})

	w := perform(r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token abc"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Invalid or expired session"}`, w.Body.String())

	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + issue(t, sessions, user.RoleUser)})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a@b.co", w.Body.String())
}

func TestAdminOnly(t *testing.T) {
	sessions := auth.NewSessionManager("secret", "portfolio-cms", time.Hour)
	r := gin.New()
	r.GET("/admin", AuthMiddleware(sessions), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := perform(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + issue(t, sessions, user.RoleUser)})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + issue(t, sessions, user.RoleAdmin)})
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoleMiddlewareWithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, events.ClientIP(c.Request.Context()))
	})

	w := perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	require.Equal(t, "192.0.2.1", w.Body.String())

	w = perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: strings.Repeat("x", 100)})
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter("test", 0.001, 2)
	t.Cleanup(rl.Stop)

	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	require.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil).Code)
	require.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", nil).Code)
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", RequestSizeLimitMiddleware(8), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/", nil)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	require.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
