package access

import (
	"net/http"

	"agrocert/pkg/platform/httputil"
)

// RoleMiddleware rejects requests whose identity role is not among allowed.
func RoleMiddleware(allowed ...Role) func(http.Handler) http.Handler {
	return guard(func(r *http.Request) error {
		return RequireRole(IdentityFrom(r.Context()), allowed...)
	})
}

// PermissionMiddleware rejects requests lacking the capability p.
func PermissionMiddleware(p Permission) func(http.Handler) http.Handler {
	return guard(func(r *http.Request) error {
		return RequirePermission(IdentityFrom(r.Context()), p)
	})
}

// ComunidadMiddleware scopes a route to the community resolved from the request.
func ComunidadMiddleware(resolve func(r *http.Request) ComunidadResolver) func(http.Handler) http.Handler {
	return guard(func(r *http.Request) error {
		return CheckComunidad(r.Context(), resolve(r))
	})
}

// OwnershipMiddleware scopes a route to the owner resolved from the request.
func OwnershipMiddleware(resolve func(r *http.Request) OwnerResolver) func(http.Handler) http.Handler {
	return guard(func(r *http.Request) error {
		return CheckOwnership(r.Context(), resolve(r))
	})
}

func guard(check func(r *http.Request) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(r); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
