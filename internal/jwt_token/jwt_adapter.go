package jwttoken

import (
	"agrocert/internal/access"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	strs "agrocert/pkg/platform/strings"
)

// ToIdentity converts verified claims into the policy's identity type.
// A claim without explicit permissions receives the role's default set.
func ToIdentity(claims *Claims) (*access.Identity, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := access.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token role")
	}

	perms := access.DefaultPermissions(role)
	if len(claims.Permissions) > 0 {
		perms, err = access.ParsePermissionSet(claims.Permissions)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token permissions")
		}
	}

	rawComunidades := strs.DedupeAndTrimLower(claims.Comunidades)
	comunidades := make([]id.ComunidadID, 0, len(rawComunidades))
	for _, raw := range rawComunidades {
		c, err := id.ParseComunidadID(raw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token community")
		}
		comunidades = append(comunidades, c)
	}

	return &access.Identity{
		UserID:      userID,
		Role:        role,
		Permissions: perms,
		Comunidades: comunidades,
	}, nil
}

// IdentityValidator adapts JWTService to the auth middleware.
type IdentityValidator struct {
	service *JWTService
}

func NewIdentityValidator(service *JWTService) *IdentityValidator {
	return &IdentityValidator{service: service}
}

func (v *IdentityValidator) ValidateIdentity(tokenString string) (*access.Identity, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToIdentity(claims)
}
