package access

import (
	"context"
	"slices"

	id "agrocert/pkg/domain"
)

// Identity is the claim attached to a request by the auth gateway. It is
// trusted as-is for the lifetime of that request only.
type Identity struct {
	UserID      id.UserID
	Role        Role
	Permissions PermissionSet
	Comunidades []id.ComunidadID
}

// HasComunidad reports whether c is among the identity's assigned communities.
func (i *Identity) HasComunidad(c id.ComunidadID) bool {
	return slices.Contains(i.Comunidades, c)
}

type identityKey struct{}

// WithIdentity attaches the request identity to ctx.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	if ident == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, ident)
}

// IdentityFrom returns the request identity, or nil for unauthenticated contexts.
func IdentityFrom(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey{}).(*Identity)
	return ident
}
