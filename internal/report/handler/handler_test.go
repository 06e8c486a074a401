package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocert/internal/access"
	fmodels "agrocert/internal/ficha/models"
	"agrocert/internal/platform/logger"
	"agrocert/internal/report"
	"agrocert/pkg/testutil"
)

type emptyFichas struct{}

func (emptyFichas) List(context.Context, fmodels.ListFilter) ([]*fmodels.View, error) {
	return []*fmodels.View{}, nil
}

func newRouter(role access.Role) *chi.Mux {
	ident := testutil.NewIdentity(role)
	r := chi.NewRouter()
	r.Use(testutil.AsIdentity(func() *access.Identity { return ident }))
	New(report.New(emptyFichas{}, logger.Discard()), logger.Discard()).Register(r)
	return r
}

func TestExportEndpoint(t *testing.T) {
	rec := testutil.DoRequest(newRouter(access.RoleGerente), testutil.NewJSONRequest(t, http.MethodGet, "/reportes/cumplimiento.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestComplianceEndpoint(t *testing.T) {
	t.Run("json summary", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(access.RoleAdministrador), testutil.NewJSONRequest(t, http.MethodGet, "/reportes/cumplimiento", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"fichas":0`)
	})

	t.Run("tecnico is forbidden", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(access.RoleTecnico), testutil.NewJSONRequest(t, http.MethodGet, "/reportes/cumplimiento", nil))
		testutil.AssertStatusAndError(t, rec, http.StatusForbidden, "forbidden")
	})

	t.Run("bad gestion id", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(access.RoleGerente), testutil.NewJSONRequest(t, http.MethodGet, "/reportes/cumplimiento?gestion_id=abc", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
