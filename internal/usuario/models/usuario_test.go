package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocert/internal/access"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

func TestCreateRequestValidate(t *testing.T) {
	t.Run("normalizes email and role", func(t *testing.T) {
		req := CreateRequest{Email: "  Ana@Coop.BO ", Nombre: "Ana", Rol: "GERENTE"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "ana@coop.bo", req.Email)
		assert.Equal(t, access.RoleGerente, req.Rol)
	})

	t.Run("missing nombre is derived from email", func(t *testing.T) {
		req := CreateRequest{Email: "rosa.quispe@coop.bo", Nombre: "  ", Rol: access.RoleInvitado}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Rosa Quispe", req.Nombre)
	})

	t.Run("tecnico without communities", func(t *testing.T) {
		req := CreateRequest{Email: "t@coop.bo", Nombre: "T", Rol: access.RoleTecnico}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, dErrors.DetailsOf(err), "comunidades: a tecnico needs at least one assigned community")
	})

	t.Run("bad email and unknown role", func(t *testing.T) {
		req := CreateRequest{Email: "nope", Nombre: "X", Rol: "root"}
		err := req.Validate()
		assert.Contains(t, dErrors.DetailsOf(err), "email: must be a valid email address")
		assert.Contains(t, dErrors.DetailsOf(err), "rol: must be one of administrador gerente tecnico invitado")
	})
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	comunidad := id.ComunidadID(uuid.New())

	t.Run("demoting to invitado clears communities", func(t *testing.T) {
		u := Usuario{Rol: access.RoleTecnico, Comunidades: []id.ComunidadID{comunidad}}
		rol := access.RoleInvitado
		require.NoError(t, u.Apply(UpdateRequest{Rol: &rol}, now))
		assert.Empty(t, u.Comunidades)
		assert.Equal(t, now, u.UpdatedAt)
	})

	t.Run("promoting to tecnico requires communities", func(t *testing.T) {
		u := Usuario{Rol: access.RoleInvitado}
		rol := access.RoleTecnico
		assert.Error(t, u.Apply(UpdateRequest{Rol: &rol}, now))
		assert.NoError(t, u.Apply(UpdateRequest{Rol: &rol, Comunidades: []id.ComunidadID{comunidad}}, now))
	})
}
