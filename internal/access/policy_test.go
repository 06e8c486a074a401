package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

var allRoles = []Role{RoleAdministrador, RoleGerente, RoleTecnico, RoleInvitado}

func TestCanManageUser(t *testing.T) {
	t.Run("administrador manages every other role", func(t *testing.T) {
		for _, target := range []Role{RoleGerente, RoleTecnico, RoleInvitado} {
			assert.True(t, CanManageUser(RoleAdministrador, target), target)
		}
	})

	t.Run("gerente manages tecnico and invitado only", func(t *testing.T) {
		assert.False(t, CanManageUser(RoleGerente, RoleAdministrador))
		assert.False(t, CanManageUser(RoleGerente, RoleGerente))
		assert.True(t, CanManageUser(RoleGerente, RoleTecnico))
		assert.True(t, CanManageUser(RoleGerente, RoleInvitado))
	})

	t.Run("tecnico manages no one", func(t *testing.T) {
		for _, target := range allRoles {
			assert.False(t, CanManageUser(RoleTecnico, target), target)
		}
	})

	t.Run("no role manages its own rank", func(t *testing.T) {
		for _, r := range allRoles {
			assert.False(t, CanManageUser(r, r), r)
		}
	})
}

func TestRequireRole(t *testing.T) {
	err := RequireRole(nil, RoleGerente)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	tecnico := &Identity{Role: RoleTecnico}
	err = RequireRole(tecnico, RoleGerente, RoleAdministrador)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, ReasonRole, dErrors.ReasonOf(err))

	assert.NoError(t, RequireRole(&Identity{Role: RoleGerente}, RoleGerente, RoleAdministrador))
}

func TestRequireComunidadAccess(t *testing.T) {
	comunidadA := id.ComunidadID(uuid.New())
	comunidadB := id.ComunidadID(uuid.New())
	tecnico := &Identity{Role: RoleTecnico, Comunidades: []id.ComunidadID{comunidadA}}

	t.Run("tecnico allowed in assigned community", func(t *testing.T) {
		assert.NoError(t, RequireComunidadAccess(tecnico, comunidadA))
	})

	t.Run("tecnico denied in other community", func(t *testing.T) {
		err := RequireComunidadAccess(tecnico, comunidadB)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Equal(t, ReasonCommunity, dErrors.ReasonOf(err))
	})

	t.Run("tecnico without assignments denied", func(t *testing.T) {
		err := RequireComunidadAccess(&Identity{Role: RoleTecnico}, comunidadA)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("supervisors bypass", func(t *testing.T) {
		assert.NoError(t, RequireComunidadAccess(&Identity{Role: RoleGerente}, comunidadB))
		assert.NoError(t, RequireComunidadAccess(&Identity{Role: RoleAdministrador}, comunidadB))
	})

	t.Run("invitado denied outright", func(t *testing.T) {
		inv := &Identity{Role: RoleInvitado, Comunidades: []id.ComunidadID{comunidadA}}
		assert.True(t, dErrors.HasCode(RequireComunidadAccess(inv, comunidadA), dErrors.CodeForbidden))
	})
}

func TestRequireOwnership(t *testing.T) {
	owner := id.UserID(uuid.New())
	other := id.UserID(uuid.New())

	assert.NoError(t, RequireOwnership(&Identity{UserID: other, Role: RoleAdministrador}, owner))
	assert.NoError(t, RequireOwnership(&Identity{UserID: owner, Role: RoleTecnico}, owner))

	err := RequireOwnership(&Identity{UserID: other, Role: RoleGerente}, owner)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, ReasonOwnership, dErrors.ReasonOf(err))
}

func TestRequirePermission(t *testing.T) {
	wildcard := &Identity{Role: RoleAdministrador, Permissions: NewPermissionSet(PermAll)}
	assert.NoError(t, RequirePermission(wildcard, PermReporteExport))

	limited := &Identity{Role: RoleTecnico, Permissions: NewPermissionSet(PermFichaRead)}
	assert.NoError(t, RequirePermission(limited, PermFichaRead))
	err := RequirePermission(limited, PermFichaApprove)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, ReasonPermission, dErrors.ReasonOf(err))
}

func TestParsePermissionSet(t *testing.T) {
	set, err := ParsePermissionSet(map[string]bool{"fichas.read": true, "fichas.approve": false})
	require.NoError(t, err)
	assert.True(t, set.Has(PermFichaRead))
	assert.False(t, set.Has(PermFichaApprove))
	assert.Equal(t, []string{"fichas.read"}, set.Names())

	_, err = ParsePermissionSet(map[string]bool{"fichas.raed": true})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCheckComunidadResolvesLazily(t *testing.T) {
	comunidad := id.ComunidadID(uuid.New())
	calls := 0
	resolve := func(context.Context) (id.ComunidadID, error) {
		calls++
		return comunidad, nil
	}

	ctx := WithIdentity(context.Background(), &Identity{Role: RoleGerente})
	require.NoError(t, CheckComunidad(ctx, resolve))
	assert.Zero(t, calls, "supervisors skip the lookup")

	ctx = WithIdentity(context.Background(), &Identity{Role: RoleTecnico, Comunidades: []id.ComunidadID{comunidad}})
	require.NoError(t, CheckComunidad(ctx, resolve))
	assert.Equal(t, 1, calls)

	lookupErr := dErrors.New(dErrors.CodeNotFound, "productor not found")
	err := CheckComunidad(ctx, func(context.Context) (id.ComunidadID, error) { return id.ComunidadID{}, lookupErr })
	assert.True(t, errors.Is(err, lookupErr))
}

func TestRequireManageUser(t *testing.T) {
	tecnico := &Identity{Role: RoleTecnico, Permissions: NewPermissionSet(PermUsuarioManage)}
	for _, target := range allRoles {
		err := RequireManageUser(tecnico, target)
		require.Error(t, err, target)
		assert.Equal(t, ReasonHierarchy, dErrors.ReasonOf(err))
	}

	assert.NoError(t, RequireManageUser(&Identity{Role: RoleGerente}, RoleInvitado))
	assert.True(t, dErrors.HasCode(RequireManageUser(nil, RoleInvitado), dErrors.CodeUnauthorized))
}

func TestCheckOwnershipResolvesLazily(t *testing.T) {
	owner := id.UserID(uuid.New())
	calls := 0
	resolve := func(context.Context) (id.UserID, error) {
		calls++
		return owner, nil
	}

	ctx := WithIdentity(context.Background(), &Identity{UserID: id.UserID(uuid.New()), Role: RoleAdministrador})
	require.NoError(t, CheckOwnership(ctx, resolve))
	assert.Zero(t, calls, "administradores skip the lookup")

	ctx = WithIdentity(context.Background(), &Identity{UserID: owner, Role: RoleTecnico})
	require.NoError(t, CheckOwnership(ctx, resolve))
	assert.Equal(t, 1, calls)

	ctx = WithIdentity(context.Background(), &Identity{UserID: id.UserID(uuid.New()), Role: RoleGerente})
	err := CheckOwnership(ctx, resolve)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, ReasonOwnership, dErrors.ReasonOf(err))

	assert.True(t, dErrors.HasCode(CheckOwnership(context.Background(), resolve), dErrors.CodeUnauthorized))
}
