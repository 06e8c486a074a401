package models

// ComplianceStatus is the four-valued verdict recorded for every checklist field.
type ComplianceStatus string

const (
	Cumple   ComplianceStatus = "cumple"
	Parcial  ComplianceStatus = "parcial"
	NoCumple ComplianceStatus = "no_cumple"
	NoAplica ComplianceStatus = "no_aplica"
)

func (c ComplianceStatus) IsValid() bool {
	switch c {
	case Cumple, Parcial, NoCumple, NoAplica:
		return true
	}
	return false
}

// Section keys, used in validation details and reports.
const (
	SectionRevisionDocumentacion        = "revision_documentacion"
	SectionEvaluacionMitigacion         = "evaluacion_mitigacion"
	SectionEvaluacionPoscosecha         = "evaluacion_poscosecha"
	SectionEvaluacionConocimientoNormas = "evaluacion_conocimiento_normas"
)

// Tally counts field verdicts across one section.
type Tally struct {
	Cumple   int `json:"cumple"`
	Parcial  int `json:"parcial"`
	NoCumple int `json:"no_cumple"`
	NoAplica int `json:"no_aplica"`
}

func tally(values ...ComplianceStatus) Tally {
	var t Tally
	for _, v := range values {
		switch v {
		case Cumple:
			t.Cumple++
		case Parcial:
			t.Parcial++
		case NoCumple:
			t.NoCumple++
		case NoAplica:
			t.NoAplica++
		}
	}
	return t
}

// Add sums two tallies.
func (t Tally) Add(other Tally) Tally {
	return Tally{
		Cumple:   t.Cumple + other.Cumple,
		Parcial:  t.Parcial + other.Parcial,
		NoCumple: t.NoCumple + other.NoCumple,
		NoAplica: t.NoAplica + other.NoAplica,
	}
}

type RevisionDocumentacion struct {
	SolicitudIngreso   ComplianceStatus `json:"solicitud_ingreso" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	NormasReglamentos  ComplianceStatus `json:"normas_reglamentos" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	ContratoProduccion ComplianceStatus `json:"contrato_produccion" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	CroquisUbicacion   ComplianceStatus `json:"croquis_ubicacion" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	DiarioCampo        ComplianceStatus `json:"diario_campo" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	RegistroCosecha    ComplianceStatus `json:"registro_cosecha" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	ReciboPago         ComplianceStatus `json:"recibo_pago" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	Observaciones      string           `json:"observaciones,omitempty" validate:"max=1000"`
}

func (r RevisionDocumentacion) Tally() Tally {
	return tally(r.SolicitudIngreso, r.NormasReglamentos, r.ContratoProduccion,
		r.CroquisUbicacion, r.DiarioCampo, r.RegistroCosecha, r.ReciboPago)
}

// Complete holds when nothing is no_cumple and at least 5 of 7 fields are cumple or parcial.
func (r RevisionDocumentacion) Complete() bool {
	t := r.Tally()
	return t.NoCumple == 0 && t.Cumple+t.Parcial >= 5
}

type EvaluacionMitigacion struct {
	PracticaMitigacionRiesgos ComplianceStatus `json:"practica_mitigacion_riesgos" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	MitigacionContaminacion   ComplianceStatus `json:"mitigacion_contaminacion" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	DepositoHerramientas      ComplianceStatus `json:"deposito_herramientas" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	DepositoInsumosOrganicos  ComplianceStatus `json:"deposito_insumos_organicos" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	EvitaQuemaResiduos        ComplianceStatus `json:"evita_quema_residuos" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	Observaciones             string           `json:"observaciones,omitempty" validate:"max=1000"`
}

func (e EvaluacionMitigacion) Tally() Tally {
	return tally(e.PracticaMitigacionRiesgos, e.MitigacionContaminacion, e.DepositoHerramientas,
		e.DepositoInsumosOrganicos, e.EvitaQuemaResiduos)
}

// Adequate holds when at least 4 of 5 fields are cumple or parcial.
func (e EvaluacionMitigacion) Adequate() bool {
	t := e.Tally()
	return t.Cumple+t.Parcial >= 4
}

type EvaluacionPoscosecha struct {
	SecadoTendal              ComplianceStatus `json:"secado_tendal" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	EnvasesLimpios            ComplianceStatus `json:"envases_limpios" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	AlmacenProtegido          ComplianceStatus `json:"almacen_protegido" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	EvidenciaComercializacion ComplianceStatus `json:"evidencia_comercializacion" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	Observaciones             string           `json:"observaciones,omitempty" validate:"max=1000"`
}

func (e EvaluacionPoscosecha) Tally() Tally {
	return tally(e.SecadoTendal, e.EnvasesLimpios, e.AlmacenProtegido, e.EvidenciaComercializacion)
}

// Adequate holds with at least 3 of 4 cumple, or all 4 cumple or parcial.
func (e EvaluacionPoscosecha) Adequate() bool {
	t := e.Tally()
	return t.Cumple >= 3 || t.Cumple+t.Parcial >= 4
}

type EvaluacionConocimientoNormas struct {
	ConoceNormasOrganicas ComplianceStatus `json:"conoce_normas_organicas" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	ConoceProhibiciones   ComplianceStatus `json:"conoce_prohibiciones" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	RecibioCapacitacion   ComplianceStatus `json:"recibio_capacitacion" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	ConoceSanciones       ComplianceStatus `json:"conoce_sanciones" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	AplicaRegistros       ComplianceStatus `json:"aplica_registros" validate:"required,oneof=cumple parcial no_cumple no_aplica"`
	Observaciones         string           `json:"observaciones,omitempty" validate:"max=1000"`
}

func (e EvaluacionConocimientoNormas) Tally() Tally {
	return tally(e.ConoceNormasOrganicas, e.ConoceProhibiciones, e.RecibioCapacitacion,
		e.ConoceSanciones, e.AplicaRegistros)
}
