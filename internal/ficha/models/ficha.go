package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

// Estado is the workflow state of a ficha.
type Estado string

const (
	EstadoBorrador  Estado = "borrador"
	EstadoRevision  Estado = "revision"
	EstadoAprobado  Estado = "aprobado"
	EstadoRechazado Estado = "rechazado"
)

// Resultado is the certification outcome stamped by a decision.
type Resultado string

const (
	ResultadoPendiente Resultado = "pendiente"
	ResultadoAprobado  Resultado = "aprobado"
	ResultadoRechazado Resultado = "rechazado"
)

func (r Resultado) IsDecision() bool {
	return r == ResultadoAprobado || r == ResultadoRechazado
}

// Secciones groups everything a ficha owns by composition. Compliance
// sections appear at most once; array sections are replaced wholesale.
type Secciones struct {
	RevisionDocumentacion        *RevisionDocumentacion        `json:"revision_documentacion,omitempty"`
	EvaluacionMitigacion         *EvaluacionMitigacion         `json:"evaluacion_mitigacion,omitempty"`
	EvaluacionPoscosecha         *EvaluacionPoscosecha         `json:"evaluacion_poscosecha,omitempty"`
	EvaluacionConocimientoNormas *EvaluacionConocimientoNormas `json:"evaluacion_conocimiento_normas,omitempty"`

	AccionesCorrectivas  []AccionCorrectiva      `json:"acciones_correctivas"`
	ActividadesPecuarias []ActividadPecuaria     `json:"actividades_pecuarias"`
	DetallesCultivo      []DetalleCultivoParcela `json:"detalles_cultivo"`
	CosechaVentas        []CosechaVentas         `json:"cosecha_ventas"`
	PlanificacionSiembra []PlanificacionSiembra  `json:"planificacion_siembra"`
}

// Ficha is the inspection-record aggregate root.
//
// Invariants:
//   - Content (header and sections) changes only in borrador
//   - borrador → revision requires every compliance section at its threshold
//   - revision → aprobado|rechazado stamps the outcome; both are terminal
//   - One ficha per productor per gestion
type Ficha struct {
	ID                  id.FichaID     `json:"id"`
	ProductorID         id.ProductorID `json:"productor_id"`
	ProductorCodigo     string         `json:"productor_codigo"`
	ComunidadID         id.ComunidadID `json:"comunidad_id"`
	GestionID           id.GestionID   `json:"gestion_id"`
	FechaInspeccion     id.Date        `json:"fecha_inspeccion"`
	Inspector           string         `json:"inspector"`
	Estado              Estado         `json:"estado"`
	Resultado           Resultado      `json:"resultado_certificacion"`
	ComentariosDecision string         `json:"comentarios_decision,omitempty"`
	DecididoPor         *id.UserID     `json:"decidido_por,omitempty"`
	FechaDecision       *time.Time     `json:"fecha_decision,omitempty"`
	CreatedBy           id.UserID      `json:"created_by"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`

	Secciones
	Archivos []ArchivoFicha `json:"archivos"`
}

// CanEdit allows content changes only while the ficha is a draft.
func (f *Ficha) CanEdit() error {
	if f.Estado != EstadoBorrador {
		return dErrors.New(dErrors.CodeInvalidState, "ficha can only be modified in borrador, current state is "+string(f.Estado))
	}
	return nil
}

// ReadinessErrors lists every compliance section that is missing or below
// its threshold. Empty means the ficha may be submitted.
func (f *Ficha) ReadinessErrors() []string {
	c := dErrors.NewCollector("")
	switch {
	case f.RevisionDocumentacion == nil:
		c.Add(SectionRevisionDocumentacion + ": section is required")
	case !f.RevisionDocumentacion.Complete():
		c.Add(SectionRevisionDocumentacion + ": incomplete, requires no no_cumple and at least 5 of 7 fields cumple or parcial")
	}
	switch {
	case f.EvaluacionMitigacion == nil:
		c.Add(SectionEvaluacionMitigacion + ": section is required")
	case !f.EvaluacionMitigacion.Adequate():
		c.Add(SectionEvaluacionMitigacion + ": inadequate, requires at least 4 of 5 fields cumple or parcial")
	}
	switch {
	case f.EvaluacionPoscosecha == nil:
		c.Add(SectionEvaluacionPoscosecha + ": section is required")
	case !f.EvaluacionPoscosecha.Adequate():
		c.Add(SectionEvaluacionPoscosecha + ": inadequate, requires at least 3 of 4 fields cumple or all 4 cumple or parcial")
	}
	if f.EvaluacionConocimientoNormas == nil {
		c.Add(SectionEvaluacionConocimientoNormas + ": section is required")
	}
	return c.Details()
}

// CanSubmit checks the borrador → revision transition.
func (f *Ficha) CanSubmit() error {
	if f.Estado != EstadoBorrador {
		return dErrors.New(dErrors.CodeInvalidState, "only borrador fichas can be submitted, current state is "+string(f.Estado))
	}
	if details := f.ReadinessErrors(); len(details) > 0 {
		return dErrors.Validation("ficha is not ready for review", details)
	}
	return nil
}

func (f *Ficha) ApplySubmit(now time.Time) {
	f.Estado = EstadoRevision
	f.UpdatedAt = now
}

// CanDecide checks the revision → aprobado|rechazado transition.
func (f *Ficha) CanDecide(resultado Resultado, comentarios string) error {
	if f.Estado != EstadoRevision {
		return dErrors.New(dErrors.CodeInvalidState, "only fichas in revision can be decided, current state is "+string(f.Estado))
	}
	c := dErrors.NewCollector("")
	if !resultado.IsDecision() {
		c.Add("resultado must be one of aprobado rechazado")
	}
	if len([]rune(comentarios)) > maxComentariosLength {
		c.Add("comentarios must be at most " + strconv.Itoa(maxComentariosLength) + " characters")
	}
	return c.Err("invalid decision")
}

func (f *Ficha) ApplyDecision(resultado Resultado, comentarios string, decider id.UserID, now time.Time) {
	if resultado == ResultadoAprobado {
		f.Estado = EstadoAprobado
	} else {
		f.Estado = EstadoRechazado
	}
	f.Resultado = resultado
	f.ComentariosDecision = comentarios
	f.DecididoPor = &decider
	decidedAt := now
	f.FechaDecision = &decidedAt
	f.UpdatedAt = now
}

// CanDelete allows removing drafts only.
func (f *Ficha) CanDelete() error {
	if f.Estado != EstadoBorrador {
		return dErrors.New(dErrors.CodeInvalidState, "only borrador fichas can be deleted")
	}
	return nil
}

const maxComentariosLength = 1000

// planningTolerance is the share of parcel area a sowing plan may reach before a warning.
var planningTolerance = decimal.RequireFromString("1.10")

// PlanningWarnings flags sowing plans whose crop areas exceed the planned
// parcel area by more than 10%. Advisory only: never blocks a write.
func PlanningWarnings(plans []PlanificacionSiembra) []string {
	var warnings []string
	for i, p := range plans {
		total := decimal.Zero
		for _, c := range p.Cultivos {
			total = total.Add(c.SuperficieHa)
		}
		if total.GreaterThan(p.SuperficieParcelaHa.Mul(planningTolerance)) {
			warnings = append(warnings, "planificacion_siembra["+strconv.Itoa(i)+"]: planned crop area "+
				total.String()+" ha exceeds parcel area "+p.SuperficieParcelaHa.String()+" ha by more than 10%")
		}
	}
	return warnings
}

// View is the projection returned to callers: the ficha plus advisory warnings.
type View struct {
	*Ficha
	Advertencias []string `json:"advertencias,omitempty"`
}

func NewView(f *Ficha) *View {
	return &View{Ficha: f, Advertencias: PlanningWarnings(f.PlanificacionSiembra)}
}
