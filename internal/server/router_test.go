package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/web"
)

// stubRoutes answers every mounted route with its own name.
type stubRoutes struct {
	name string
}

func (s stubRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/", s.reply(s.name))
	r.Post("/", s.reply(s.name))
}

func (s stubRoutes) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", s.reply(s.name+"-admin"))
}

func (s stubRoutes) reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func newTestRouter(limiter *RateLimiter) http.Handler {
	return NewRouter(config.ServerConfig{
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}, Routes{
		Menu:   stubRoutes{name: "menu"},
		Orders: stubRoutes{name: "orders"},
		Stats:  stubRoutes{name: "stats"},
		OrderBoard: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("board"))
		}),
	}, limiter, zap.NewNop())
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouter_MountsControllers(t *testing.T) {
	h := newTestRouter(nil)

	tests := map[string]string{
		"/api/menu":        "menu",
		"/api/orders":      "orders",
		"/api/admin/menu":  "menu-admin",
		"/api/admin/stats": "stats",
		"/ws/orders":       "board",
	}
	for target, want := range tests {
		rec := get(h, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, want, rec.Body.String(), target)
		assert.NotEmpty(t, rec.Header().Get(web.TraceIDHeader), target)
	}
}

func TestRouter_Health(t *testing.T) {
	rec := get(newTestRouter(nil), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Data["status"])
}

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	rec := get(newTestRouter(nil), "/api/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env web.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, web.CodeNotFound, env.Error.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimitsAPIButNotHealth(t *testing.T) {
	l, _ := newTestLimiter(1)
	h := newTestRouter(l)

	assert.Equal(t, http.StatusOK, get(h, "/api/menu").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, "/api/menu").Code)
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
}
