package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	id "agrocert/pkg/domain"
)

func newGuardedRouter(comunidad id.ComunidadID) http.Handler {
	r := chi.NewRouter()
	r.With(RoleMiddleware(RoleGerente, RoleAdministrador)).Get("/decisions", okHandler)
	r.With(ComunidadMiddleware(func(*http.Request) ComunidadResolver {
		return func(context.Context) (id.ComunidadID, error) { return comunidad, nil }
	})).Get("/productores/{id}", okHandler)
	return r
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func serve(h http.Handler, path string, ident *Identity) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(WithIdentity(req.Context(), ident))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoleMiddleware(t *testing.T) {
	router := newGuardedRouter(id.ComunidadID(uuid.New()))

	if code := serve(router, "/decisions", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", code)
	}
	if code := serve(router, "/decisions", &Identity{Role: RoleTecnico}); code != http.StatusForbidden {
		t.Fatalf("expected 403 for tecnico, got %d", code)
	}
	if code := serve(router, "/decisions", &Identity{Role: RoleGerente}); code != http.StatusOK {
		t.Fatalf("expected 200 for gerente, got %d", code)
	}
}

func TestComunidadMiddleware(t *testing.T) {
	comunidadA := id.ComunidadID(uuid.New())
	comunidadB := id.ComunidadID(uuid.New())
	router := newGuardedRouter(comunidadB)

	tecnico := &Identity{Role: RoleTecnico, Comunidades: []id.ComunidadID{comunidadA}}
	if code := serve(router, "/productores/"+uuid.NewString(), tecnico); code != http.StatusForbidden {
		t.Fatalf("expected 403 for producer in another community, got %d", code)
	}

	tecnico.Comunidades = append(tecnico.Comunidades, comunidadB)
	if code := serve(router, "/productores/"+uuid.NewString(), tecnico); code != http.StatusOK {
		t.Fatalf("expected 200 once the community is assigned, got %d", code)
	}
}
