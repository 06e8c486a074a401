package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revision(values ...ComplianceStatus) RevisionDocumentacion {
	return RevisionDocumentacion{
		SolicitudIngreso:   values[0],
		NormasReglamentos:  values[1],
		ContratoProduccion: values[2],
		CroquisUbicacion:   values[3],
		DiarioCampo:        values[4],
		RegistroCosecha:    values[5],
		ReciboPago:         values[6],
	}
}

func TestRevisionDocumentacionComplete(t *testing.T) {
	tests := []struct {
		name     string
		values   []ComplianceStatus
		complete bool
	}{
		{"all cumple", []ComplianceStatus{Cumple, Cumple, Cumple, Cumple, Cumple, Cumple, Cumple}, true},
		{"five mixed and two no_aplica", []ComplianceStatus{Cumple, Parcial, Cumple, Parcial, Cumple, NoAplica, NoAplica}, true},
		{"only four met", []ComplianceStatus{Cumple, Cumple, Cumple, Cumple, NoAplica, NoAplica, NoAplica}, false},
		{"one no_cumple fails regardless", []ComplianceStatus{Cumple, Cumple, Cumple, Cumple, Cumple, Cumple, NoCumple}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.complete, revision(tt.values...).Complete())
		})
	}
}

func TestEvaluacionMitigacionAdequate(t *testing.T) {
	e := EvaluacionMitigacion{Cumple, Parcial, Cumple, Parcial, NoCumple, ""}
	assert.True(t, e.Adequate())
	e.DepositoInsumosOrganicos = NoAplica
	assert.False(t, e.Adequate())
}

func TestEvaluacionPoscosechaAdequate(t *testing.T) {
	tests := []struct {
		name     string
		section  EvaluacionPoscosecha
		adequate bool
	}{
		{"three cumple one no_cumple", EvaluacionPoscosecha{Cumple, Cumple, Cumple, NoCumple, ""}, true},
		{"all four cumple or parcial", EvaluacionPoscosecha{Parcial, Parcial, Parcial, Cumple, ""}, true},
		{"two cumple one parcial one no_aplica", EvaluacionPoscosecha{Cumple, Cumple, Parcial, NoAplica, ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.adequate, tt.section.Adequate())
		})
	}
}

func TestTally(t *testing.T) {
	got := revision(Cumple, Parcial, NoCumple, NoAplica, Cumple, Parcial, Cumple).Tally()
	assert.Equal(t, Tally{Cumple: 3, Parcial: 2, NoCumple: 1, NoAplica: 1}, got)
	assert.Equal(t, Tally{Cumple: 6, Parcial: 4, NoCumple: 2, NoAplica: 2}, got.Add(got))
}

func TestComplianceSectionJSONPreservesValues(t *testing.T) {
	in := EvaluacionConocimientoNormas{
		ConoceNormasOrganicas: Cumple,
		ConoceProhibiciones:   Parcial,
		RecibioCapacitacion:   NoCumple,
		ConoceSanciones:       NoAplica,
		AplicaRegistros:       Cumple,
		Observaciones:         "capacitación pendiente",
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recibio_capacitacion":"no_cumple"`)

	var out EvaluacionConocimientoNormas
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
