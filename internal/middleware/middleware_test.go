package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hezo-be/webinar-backend/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAdminRouter(t *testing.T, sessions *auth.SessionService) *gin.Engine {
	r := gin.New()
	r.Use(AdminOnly(auth.NewSecret("letmein"), sessions, zaptest.NewLogger(t)))
	r.GET("/webinars", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	return r
}

func TestAdminOnly(t *testing.T) {
	sessions := auth.NewSessionService("signing-key", time.Hour)
	token, _, err := sessions.Generate()
	require.NoError(t, err)
	r := newAdminRouter(t, sessions)

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"wrong password", map[string]string{HeaderAdminPassword: "nope"}, http.StatusUnauthorized},
		{"right password", map[string]string{HeaderAdminPassword: "letmein"}, http.StatusOK},
		{"session token", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK},
		{"garbage bearer", map[string]string{"Authorization": "Bearer abc"}, http.StatusUnauthorized},
		{"basic scheme", map[string]string{"Authorization": "Basic " + token}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/webinars", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestRateLimit(t *testing.T) {
	run := func(l Limiter) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(RateLimit(l, "viewer", zaptest.NewLogger(t)))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w
	}

	allow := &fakeLimiter{allowed: true}
	assert.Equal(t, http.StatusOK, run(allow).Code)
	require.Len(t, allow.keys, 1)
	assert.Contains(t, allow.keys[0], "viewer:")

	w := run(&fakeLimiter{allowed: false})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, run(&fakeLimiter{err: errors.New("redis down")}).Code)
	assert.Equal(t, http.StatusOK, run(nil).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://hezo.be, https://www.hezo.be"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://www.hezo.be")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://www.hezo.be", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), HeaderAdminPassword)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://hezo.be", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLogger_UsesRouteTemplate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/webinar-view/:token", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webinar-view/secret-token", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/webinar-view/:token", entries[0].ContextMap()["path"])
}
