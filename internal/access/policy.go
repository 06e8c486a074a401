// Package access implements the authorization policy: a strict role hierarchy,
// community scoping for tecnicos, ownership checks and typed capability sets.
//
// Every rule is a pure function of the request identity and the target resource;
// HTTP adapters live in middleware.go.
package access

import (
	"context"

	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

// Denial reasons carried on forbidden errors.
const (
	ReasonRole             = "role"
	ReasonHierarchy        = "hierarchy"
	ReasonOwnership        = "ownership"
	ReasonCommunity        = "community"
	ReasonPermission       = "permission"
	ReasonSelfModification = "self_modification"
)

// CanManageUser is true iff actor is a supervisor that strictly outranks
// target. Tecnicos manage no one.
func CanManageUser(actor, target Role) bool {
	return actor.IsSupervisor() && actor.Outranks(target)
}

func unauthenticated() error {
	return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
}

// RequireAuthenticated fails with Unauthorized when no identity is present.
func RequireAuthenticated(ident *Identity) error {
	if ident == nil {
		return unauthenticated()
	}
	return nil
}

// RequireRole allows identities whose role is one of allowed.
func RequireRole(ident *Identity, allowed ...Role) error {
	if ident == nil {
		return unauthenticated()
	}
	for _, r := range allowed {
		if ident.Role == r {
			return nil
		}
	}
	return dErrors.Forbidden(ReasonRole, "role "+ident.Role.String()+" is not allowed to perform this operation")
}

// RequireManageUser allows the identity to act on a user holding target role.
func RequireManageUser(ident *Identity, target Role) error {
	if ident == nil {
		return unauthenticated()
	}
	if !CanManageUser(ident.Role, target) {
		return dErrors.Forbidden(ReasonHierarchy, "cannot manage a user with role "+target.String())
	}
	return nil
}

// RequireComunidadAccess lets supervisors through unconditionally; tecnicos
// need the target among their assigned communities; any other role is denied.
func RequireComunidadAccess(ident *Identity, target id.ComunidadID) error {
	if ident == nil {
		return unauthenticated()
	}
	if ident.Role.IsSupervisor() {
		return nil
	}
	if ident.Role != RoleTecnico {
		return dErrors.Forbidden(ReasonCommunity, "role "+ident.Role.String()+" has no community access")
	}
	if len(ident.Comunidades) == 0 {
		return dErrors.Forbidden(ReasonCommunity, "tecnico has no assigned communities")
	}
	if !ident.HasComunidad(target) {
		return dErrors.Forbidden(ReasonCommunity, "resource belongs to a community not assigned to this tecnico")
	}
	return nil
}

// RequireOwnership lets administradores through; anyone else must be the owner.
func RequireOwnership(ident *Identity, owner id.UserID) error {
	if ident == nil {
		return unauthenticated()
	}
	if ident.Role == RoleAdministrador {
		return nil
	}
	if ident.UserID != owner {
		return dErrors.Forbidden(ReasonOwnership, "only the owner can modify this resource")
	}
	return nil
}

// RequirePermission checks a single capability; the all wildcard short-circuits.
func RequirePermission(ident *Identity, p Permission) error {
	if ident == nil {
		return unauthenticated()
	}
	if !ident.Permissions.Has(p) {
		return dErrors.Forbidden(ReasonPermission, "missing permission "+p.String())
	}
	return nil
}

// ComunidadResolver maps a request target to the community that owns it.
type ComunidadResolver func(ctx context.Context) (id.ComunidadID, error)

// OwnerResolver maps a request target to the user that owns it.
type OwnerResolver func(ctx context.Context) (id.UserID, error)

// CheckComunidad resolves the target lazily so supervisors never pay for the lookup.
func CheckComunidad(ctx context.Context, resolve ComunidadResolver) error {
	ident := IdentityFrom(ctx)
	if ident == nil {
		return unauthenticated()
	}
	if ident.Role.IsSupervisor() {
		return nil
	}
	if ident.Role != RoleTecnico {
		return RequireComunidadAccess(ident, id.ComunidadID{})
	}
	target, err := resolve(ctx)
	if err != nil {
		return err
	}
	return RequireComunidadAccess(ident, target)
}

// CheckOwnership resolves the owner lazily; administradores skip the lookup.
func CheckOwnership(ctx context.Context, resolve OwnerResolver) error {
	ident := IdentityFrom(ctx)
	if ident == nil {
		return unauthenticated()
	}
	if ident.Role == RoleAdministrador {
		return nil
	}
	owner, err := resolve(ctx)
	if err != nil {
		return err
	}
	return RequireOwnership(ident, owner)
}
