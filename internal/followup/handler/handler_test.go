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
	"github.com/stretchr/testify/suite"

	"agrocert/internal/access"
	"agrocert/internal/followup/models"
	"agrocert/internal/followup/service"
	"agrocert/internal/followup/store"
	"agrocert/internal/platform/logger"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/platform/tx"
)

type fichaDirectory map[id.FichaID]id.ComunidadID

func (d fichaDirectory) ComunidadOf(_ context.Context, fichaID id.FichaID) (id.ComunidadID, error) {
	c, ok := d[fichaID]
	if !ok {
		return id.ComunidadID{}, dErrors.New(dErrors.CodeNotFound, "ficha not found")
	}
	return c, nil
}

type HandlerSuite struct {
	suite.Suite
	router     *chi.Mux
	ident      *access.Identity
	fichaID    id.FichaID
	comunidadA id.ComunidadID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.comunidadA = id.ComunidadID(uuid.New())
	s.fichaID = id.FichaID(uuid.New())
	fichas := fichaDirectory{s.fichaID: s.comunidadA}

	svc := service.New(store.NewInMemory(), tx.NewLockRunner(), fichas,
		service.WithFileStorage(storage.NewInMemory()),
	)
	s.ident = &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        access.RoleTecnico,
		Permissions: access.DefaultPermissions(access.RoleTecnico),
		Comunidades: []id.ComunidadID{s.comunidadA},
	}
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), s.ident)))
		})
	})
	New(svc, fichas, logger.Discard()).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) createNoConformidad() models.NoConformidad {
	rec := s.do(http.MethodPost, "/fichas/"+s.fichaID.String()+"/no-conformidades",
		`{"descripcion":"Quema de rastrojos en parcela norte","fecha_limite":"2025-09-30"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var nc models.NoConformidad
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &nc))
	return nc
}

func (s *HandlerSuite) TestCreateAndList() {
	nc := s.createNoConformidad()
	s.Equal(models.FollowUpPendiente, nc.EstadoSeguimiento)

	rec := s.do(http.MethodGet, "/fichas/"+s.fichaID.String()+"/no-conformidades", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), nc.ID.String())
	s.Contains(rec.Body.String(), `"fecha_limite":"2025-09-30"`)
}

func (s *HandlerSuite) TestFollowUpDateRoundTrips() {
	nc := s.createNoConformidad()

	rec := s.do(http.MethodPatch, "/no-conformidades/"+nc.ID.String()+"/seguimiento",
		`{"estado":"corregido","comentario":"rastrojo incorporado","fecha_seguimiento":"2023-01-01"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/no-conformidades/"+nc.ID.String(), "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"fecha_seguimiento":"2023-01-01"`)
	s.Contains(rec.Body.String(), `"estado_seguimiento":"corregido"`)
}

func (s *HandlerSuite) TestValidationEnvelope() {
	nc := s.createNoConformidad()
	rec := s.do(http.MethodPatch, "/no-conformidades/"+nc.ID.String()+"/seguimiento", `{"estado":"archivado"}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	var body httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("validation_error", body.Error)
	s.Len(body.Details, 1)
}

func (s *HandlerSuite) TestCommunityScoping() {
	nc := s.createNoConformidad()
	s.ident = &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        access.RoleTecnico,
		Permissions: access.DefaultPermissions(access.RoleTecnico),
		Comunidades: []id.ComunidadID{id.ComunidadID(uuid.New())},
	}

	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/no-conformidades/"+nc.ID.String(), "").Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/fichas/"+s.fichaID.String()+"/no-conformidades", "").Code)
}

func (s *HandlerSuite) TestEvidenceLifecycle() {
	nc := s.createNoConformidad()

	rec := s.do(http.MethodPost, "/no-conformidades/"+nc.ID.String()+"/evidencias",
		`{"categoria":"foto_despues","nombre":"parcela.jpg","mime":"image/jpeg","tamano":3}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var e models.ArchivoNoConformidad
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &e))

	rec = s.do(http.MethodPut, "/evidencias/"+e.ID.String()+"/contenido", "jpg")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"estado_subida":"subido"`)

	rec = s.do(http.MethodDelete, "/evidencias/"+e.ID.String(), "")
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/no-conformidades/"+nc.ID.String()+"/evidencias", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), e.ID.String())
}

func (s *HandlerSuite) TestUnknownIDs() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/no-conformidades/"+uuid.NewString(), "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/no-conformidades/not-a-uuid", "").Code)
}

func (s *HandlerSuite) TestEvidenceDeleteRequiresOwnership() {
	nc := s.createNoConformidad()
	rec := s.do(http.MethodPost, "/no-conformidades/"+nc.ID.String()+"/evidencias",
		`{"categoria":"foto_antes","nombre":"quema.jpg","mime":"image/jpeg","tamano":3}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var e models.ArchivoNoConformidad
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &e))

	s.ident = &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        access.RoleTecnico,
		Permissions: access.DefaultPermissions(access.RoleTecnico),
		Comunidades: []id.ComunidadID{s.comunidadA},
	}
	rec = s.do(http.MethodDelete, "/evidencias/"+e.ID.String(), "")
	s.Require().Equal(http.StatusForbidden, rec.Code)
	var body httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(access.ReasonOwnership, body.Reason)

	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/evidencias/"+uuid.NewString(), "").Code)

	s.ident = &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        access.RoleAdministrador,
		Permissions: access.DefaultPermissions(access.RoleAdministrador),
	}
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/evidencias/"+e.ID.String(), "").Code)
}
