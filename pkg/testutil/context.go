package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"agrocert/internal/access"
	id "agrocert/pkg/domain"
)

// NewIdentity builds an identity with the role's default permissions.
func NewIdentity(role access.Role, comunidades ...id.ComunidadID) *access.Identity {
	return &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        role,
		Permissions: access.DefaultPermissions(role),
		Comunidades: comunidades,
	}
}

// AsIdentity is middleware that stands in for token validation. current is
// read per request, so a test can switch users between calls.
func AsIdentity(current func() *access.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ident := current(); ident != nil {
				r = r.WithContext(access.WithIdentity(r.Context(), ident))
			}
			next.ServeHTTP(w, r)
		})
	}
}
