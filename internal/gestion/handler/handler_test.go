package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"agrocert/internal/access"
	"agrocert/internal/gestion/models"
	"agrocert/internal/gestion/service"
	"agrocert/internal/gestion/store"
	"agrocert/internal/platform/logger"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/platform/tx"
)

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
	ident  *access.Identity
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	svc := service.New(store.NewInMemory(), tx.NewLockRunner())
	s.ident = &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        access.RoleAdministrador,
		Permissions: access.DefaultPermissions(access.RoleAdministrador),
	}
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), s.ident)))
		})
	})
	New(svc, logger.Discard()).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) createGestion(year string) models.Gestion {
	rec := s.do(http.MethodPost, "/gestiones", `{"year":`+year+`}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var g models.Gestion
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &g))
	return g
}

func (s *HandlerSuite) TestLifecycle() {
	g := s.createGestion("2025")
	s.Equal(models.StatePlanificada, g.State)

	rec := s.do(http.MethodGet, "/gestiones/activa", "")
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/gestiones/"+g.ID.String()+"/activar", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/gestiones/activa", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var active models.Gestion
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &active))
	s.Equal(2025, active.Year)

	rec = s.do(http.MethodPost, "/gestiones/"+g.ID.String()+"/desactivar", "")
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestErrors() {
	s.Run("duplicate year is 409", func() {
		s.createGestion("2027")
		rec := s.do(http.MethodPost, "/gestiones", `{"year":2027}`)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("invalid year is 400 with details", func() {
		rec := s.do(http.MethodPost, "/gestiones", `{"year":1900}`)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		var body httputil.ErrorResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Equal("validation_error", body.Error)
		s.NotEmpty(body.Details)
		s.NotEmpty(body.Timestamp)
	})

	s.Run("malformed id is 400", func() {
		rec := s.do(http.MethodGet, "/gestiones/not-a-uuid", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("gerente cannot manage gestiones", func() {
		s.ident = &access.Identity{
			UserID:      id.UserID(uuid.New()),
			Role:        access.RoleGerente,
			Permissions: access.DefaultPermissions(access.RoleGerente),
		}
		rec := s.do(http.MethodPost, "/gestiones", `{"year":2028}`)
		s.Equal(http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodGet, "/gestiones", "")
		s.Equal(http.StatusOK, rec.Code)
	})
}

func TestUnauthenticatedIsRejected(t *testing.T) {
	router := chi.NewRouter()
	New(service.New(store.NewInMemory(), tx.NewLockRunner()), logger.Discard()).Register(router)

	req := httptest.NewRequest(http.MethodGet, "/gestiones", nil).WithContext(context.Background())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}
