// Package models holds the user records consumed by the access policy: one
// role per user and, for tecnicos, the communities they may work in.
package models

import (
	"strings"
	"time"

	"agrocert/internal/access"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/email"
	"agrocert/pkg/platform/validation"
)

type Usuario struct {
	ID          id.UserID        `json:"id"`
	Email       string           `json:"email"`
	Nombre      string           `json:"nombre"`
	Rol         access.Role      `json:"rol"`
	Comunidades []id.ComunidadID `json:"comunidades"`
	Activo      bool             `json:"activo"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type CreateRequest struct {
	Email       string           `json:"email" validate:"required,email,max=255"`
	Nombre      string           `json:"nombre,omitempty" validate:"max=200"`
	Rol         access.Role      `json:"rol" validate:"required,oneof=administrador gerente tecnico invitado"`
	Comunidades []id.ComunidadID `json:"comunidades,omitempty"`
}

func (r *CreateRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Nombre = strings.TrimSpace(r.Nombre)
	if r.Nombre == "" {
		r.Nombre = email.DisplayName(r.Email)
	}
	r.Rol = access.Role(strings.ToLower(string(r.Rol)))
	c := dErrors.NewCollector("")
	validation.Check(c, "", r)
	checkComunidades(c, r.Rol, r.Comunidades)
	return c.Err("invalid usuario")
}

// UpdateRequest leaves nil fields unchanged; a non-nil Comunidades replaces the set.
type UpdateRequest struct {
	Nombre      *string          `json:"nombre,omitempty" validate:"omitempty,min=1,max=200"`
	Rol         *access.Role     `json:"rol,omitempty" validate:"omitempty,oneof=administrador gerente tecnico invitado"`
	Comunidades []id.ComunidadID `json:"comunidades,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	if r.Nombre != nil {
		trimmed := strings.TrimSpace(*r.Nombre)
		r.Nombre = &trimmed
	}
	c := dErrors.NewCollector("")
	validation.Check(c, "", r)
	return c.Err("invalid usuario")
}

// Apply merges r into u and re-checks the tecnico community rule on the result.
func (u *Usuario) Apply(r UpdateRequest, now time.Time) error {
	if r.Nombre != nil {
		u.Nombre = *r.Nombre
	}
	if r.Rol != nil {
		u.Rol = *r.Rol
	}
	if r.Comunidades != nil {
		u.Comunidades = r.Comunidades
	}
	if u.Rol != access.RoleTecnico {
		u.Comunidades = []id.ComunidadID{}
	}
	u.UpdatedAt = now
	c := dErrors.NewCollector("")
	checkComunidades(c, u.Rol, u.Comunidades)
	return c.Err("invalid usuario")
}

func checkComunidades(c *dErrors.Collector, rol access.Role, comunidades []id.ComunidadID) {
	if rol == access.RoleTecnico && len(comunidades) == 0 {
		c.Add("comunidades: a tecnico needs at least one assigned community")
	}
}
