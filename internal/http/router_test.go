package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocert/internal/access"
	"agrocert/internal/platform/logger"
	"agrocert/internal/platform/metrics"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/httputil"
)

type staticValidator struct {
	ident *access.Identity
}

func (v staticValidator) ValidateIdentity(token string) (*access.Identity, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.ident, nil
}

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"role": access.IdentityFrom(r.Context()).Role.String()})
	})
}

func newRouter(checks map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:       logger.Discard(),
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		Validator:    staticValidator{ident: &access.Identity{UserID: id.UserID(uuid.New()), Role: access.RoleGerente}},
		HealthChecks: checks,
		Modules:      []Module{whoami{}},
	})
}

func TestRouter(t *testing.T) {
	router := newRouter(map[string]HealthCheck{"postgres": func(context.Context) error { return nil }})

	t.Run("health is public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"postgres":"up"`)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("module routes need a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches the module", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "gerente")
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "agrocert_http_request_duration_seconds")
	})
}

func TestHealthReportsDownDependency(t *testing.T) {
	router := newRouter(map[string]HealthCheck{"redis": func(context.Context) error { return errors.New("refused") }})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
