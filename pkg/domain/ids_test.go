package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agrocert/pkg/domain-errors"
)

// TestParseUUID_Invariants validates that IDs parsed at trust boundaries are
// non-empty, well-formed and non-nil.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseFichaID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseGestionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseComunidadID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ComunidadID(valid), id)
	})
}

func TestIDsSerializeAsUUIDStrings(t *testing.T) {
	raw := uuid.New()
	b, err := json.Marshal(struct {
		ID FichaID `json:"id"`
	}{ID: FichaID(raw)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+raw.String()+`"}`, string(b))

	var decoded struct {
		ID FichaID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, FichaID(raw), decoded.ID)
}
