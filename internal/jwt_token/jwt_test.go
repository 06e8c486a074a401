package jwttoken

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocert/internal/access"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer", "test-audience")

func TestGenerateAndValidate(t *testing.T) {
	userID := uuid.New()
	comunidad := uuid.New()
	token, err := jwtService.GenerateAccessToken(TokenInput{
		UserID:      userID,
		Role:        "tecnico",
		Comunidades: []uuid.UUID{comunidad},
	}, time.Hour)
	require.NoError(t, err)

	ident, err := NewIdentityValidator(jwtService).ValidateIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID(userID), ident.UserID)
	assert.Equal(t, access.RoleTecnico, ident.Role)
	assert.Equal(t, []id.ComunidadID{id.ComunidadID(comunidad)}, ident.Comunidades)
	assert.Equal(t, access.DefaultPermissions(access.RoleTecnico), ident.Permissions)
}

func TestExplicitPermissionsOverrideRoleDefaults(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(TokenInput{
		UserID:      uuid.New(),
		Role:        "gerente",
		Permissions: map[string]bool{"fichas.read": true},
	}, time.Hour)
	require.NoError(t, err)

	ident, err := NewIdentityValidator(jwtService).ValidateIdentity(token)
	require.NoError(t, err)
	assert.True(t, ident.Permissions.Has(access.PermFichaRead))
	assert.False(t, ident.Permissions.Has(access.PermFichaApprove))
}

func TestToIdentityDedupesComunidades(t *testing.T) {
	comunidad := uuid.New()
	ident, err := ToIdentity(&Claims{
		UserID:      uuid.NewString(),
		Role:        "tecnico",
		Comunidades: []string{comunidad.String(), " " + strings.ToUpper(comunidad.String()), ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []id.ComunidadID{id.ComunidadID(comunidad)}, ident.Comunidades)
}

func TestValidateToken_Failures(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		_, err := jwtService.ValidateToken("invalid-token-string")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(TokenInput{UserID: uuid.New(), Role: "tecnico"}, -time.Hour)
		require.NoError(t, err)
		_, err = jwtService.ValidateToken(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTService("other-key", "test-issuer", "test-audience")
		token, err := other.GenerateAccessToken(TokenInput{UserID: uuid.New(), Role: "tecnico"}, time.Hour)
		require.NoError(t, err)
		_, err = jwtService.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(TokenInput{UserID: uuid.New(), Role: "root"}, time.Hour)
		require.NoError(t, err)
		_, err = NewIdentityValidator(jwtService).ValidateIdentity(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
