package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

func TestNewGestion(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("planned and soft-active", func(t *testing.T) {
		g, err := NewGestion(id.GestionID(uuid.New()), 2025, "campaña 2025", now)
		require.NoError(t, err)
		assert.Equal(t, StatePlanificada, g.State)
		assert.True(t, g.IsSoftActive)
		assert.False(t, g.IsSystemActive)
	})

	for _, year := range []int{1999, 2101} {
		t.Run("rejects year out of range", func(t *testing.T) {
			_, err := NewGestion(id.GestionID(uuid.New()), year, "", now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	t.Run("accepts range bounds", func(t *testing.T) {
		_, err := NewGestion(id.GestionID(uuid.New()), MinYear, "", now)
		require.NoError(t, err)
		_, err = NewGestion(id.GestionID(uuid.New()), MaxYear, "", now)
		require.NoError(t, err)
	})
}

func TestGestionTransitions(t *testing.T) {
	now := time.Now()
	newGestion := func() *Gestion {
		g, err := NewGestion(id.GestionID(uuid.New()), 2025, "", now)
		require.NoError(t, err)
		return g
	}

	t.Run("soft-deactivated gestion cannot be activated", func(t *testing.T) {
		g := newGestion()
		g.ApplyDeactivation(now)
		assert.True(t, dErrors.HasCode(g.CanActivate(), dErrors.CodeInvalidState))
	})

	t.Run("system-active gestion cannot be deactivated or finished", func(t *testing.T) {
		g := newGestion()
		g.ApplyActivation(now)
		assert.Equal(t, StateActiva, g.State)
		assert.True(t, dErrors.HasCode(g.CanDeactivate(), dErrors.CodeInvalidState))
		assert.True(t, dErrors.HasCode(g.CanFinish(), dErrors.CodeInvalidState))
	})

	t.Run("finished gestion cannot be activated", func(t *testing.T) {
		g := newGestion()
		require.NoError(t, g.CanFinish())
		g.ApplyFinish(now)
		assert.True(t, dErrors.HasCode(g.CanActivate(), dErrors.CodeInvalidState))
		assert.True(t, dErrors.HasCode(g.CanFinish(), dErrors.CodeInvalidState))
	})
}
