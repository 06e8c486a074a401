package access

import (
	"strings"

	dErrors "agrocert/pkg/domain-errors"
)

// Role is the single role a user holds.
type Role string

const (
	RoleAdministrador Role = "administrador"
	RoleGerente       Role = "gerente"
	RoleTecnico       Role = "tecnico"
	RoleInvitado      Role = "invitado"
)

// roleRank orders roles: administrador > gerente > tecnico > invitado.
var roleRank = map[Role]int{
	RoleAdministrador: 4,
	RoleGerente:       3,
	RoleTecnico:       2,
	RoleInvitado:      1,
}

// ParseRole constructs a Role from external input (token claims, request bodies).
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// Outranks reports whether r is strictly above other. Unknown roles outrank nothing
// and are outranked by every known role.
func (r Role) Outranks(other Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank > roleRank[other]
}

// IsSupervisor is true for roles that bypass community and ownership scoping.
func (r Role) IsSupervisor() bool {
	return r == RoleAdministrador || r == RoleGerente
}
