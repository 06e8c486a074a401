package access

import (
	"sort"

	dErrors "agrocert/pkg/domain-errors"
)

// Permission is a single named capability. A PermissionSet is a bitmask of them.
type Permission uint32

const (
	PermAll Permission = 1 << iota
	PermGestionRead
	PermGestionManage
	PermFichaRead
	PermFichaWrite
	PermFichaSubmit
	PermFichaApprove
	PermFichaDelete
	PermNoConformidadRead
	PermNoConformidadWrite
	PermUsuarioManage
	PermReporteExport
)

var permissionNames = map[string]Permission{
	"all":                    PermAll,
	"gestiones.read":         PermGestionRead,
	"gestiones.manage":       PermGestionManage,
	"fichas.read":            PermFichaRead,
	"fichas.write":           PermFichaWrite,
	"fichas.submit":          PermFichaSubmit,
	"fichas.approve":         PermFichaApprove,
	"fichas.delete":          PermFichaDelete,
	"no_conformidades.read":  PermNoConformidadRead,
	"no_conformidades.write": PermNoConformidadWrite,
	"usuarios.manage":        PermUsuarioManage,
	"reportes.export":        PermReporteExport,
}

func (p Permission) String() string {
	for name, perm := range permissionNames {
		if perm == p {
			return name
		}
	}
	return "unknown"
}

// PermissionSet is the capability set carried by an identity claim.
type PermissionSet uint32

// NewPermissionSet builds a set from individual permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s |= PermissionSet(p)
	}
	return s
}

// ParsePermissionSet converts the claim's name→bool map into a typed set.
// Unknown names are rejected so a typo in the gateway never grants or hides a capability silently.
func ParsePermissionSet(raw map[string]bool) (PermissionSet, error) {
	var s PermissionSet
	for name, granted := range raw {
		p, ok := permissionNames[name]
		if !ok {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown permission "+name)
		}
		if granted {
			s |= PermissionSet(p)
		}
	}
	return s, nil
}

// Has reports whether the set grants p. The all wildcard grants everything.
func (s PermissionSet) Has(p Permission) bool {
	if s&PermissionSet(PermAll) != 0 {
		return true
	}
	return s&PermissionSet(p) != 0
}

// Names lists the granted capability names in stable order.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(permissionNames))
	for name, p := range permissionNames {
		if s&PermissionSet(p) != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultPermissions is the capability set each role carries unless the claim overrides it.
func DefaultPermissions(r Role) PermissionSet {
	switch r {
	case RoleAdministrador:
		return NewPermissionSet(PermAll)
	case RoleGerente:
		return NewPermissionSet(
			PermGestionRead, PermFichaRead, PermFichaWrite, PermFichaSubmit, PermFichaApprove, PermFichaDelete,
			PermNoConformidadRead, PermNoConformidadWrite, PermUsuarioManage, PermReporteExport,
		)
	case RoleTecnico:
		return NewPermissionSet(
			PermGestionRead, PermFichaRead, PermFichaWrite, PermFichaSubmit, PermFichaDelete,
			PermNoConformidadRead, PermNoConformidadWrite,
		)
	case RoleInvitado:
		return NewPermissionSet(PermGestionRead)
	default:
		return 0
	}
}
