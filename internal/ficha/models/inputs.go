package models

import (
	"strconv"
	"strings"

	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/validation"
)

const maxInspectorLength = 150

// CreateInput is the body of POST /fichas. The gestion defaults to the active one.
type CreateInput struct {
	ProductorCodigo string        `json:"productor_codigo"`
	GestionID       *id.GestionID `json:"gestion_id,omitempty"`
	FechaInspeccion id.Date       `json:"fecha_inspeccion"`
	Inspector       string        `json:"inspector"`
	Secciones
}

// Validate checks the header and every provided section, collecting all
// failures rather than stopping at the first.
func (in *CreateInput) Validate() *dErrors.Collector {
	c := dErrors.NewCollector("")
	if strings.TrimSpace(in.ProductorCodigo) == "" {
		c.Add("productor_codigo: is required")
	}
	if in.FechaInspeccion.IsZero() {
		c.Add("fecha_inspeccion: is required")
	}
	validateInspector(c, in.Inspector)
	in.Secciones.normalize()
	in.Secciones.validate(c)
	return c
}

// UpdateInput is the body of PATCH /fichas/{id}.
//
// Array sections follow a replace contract: an absent (null) array leaves the
// stored rows untouched, any present array, including an empty one, replaces
// all stored rows. Compliance sections are replaced when present.
type UpdateInput struct {
	FechaInspeccion *id.Date `json:"fecha_inspeccion,omitempty"`
	Inspector       *string  `json:"inspector,omitempty"`
	Secciones
}

func (in *UpdateInput) Validate() *dErrors.Collector {
	c := dErrors.NewCollector("")
	if in.FechaInspeccion != nil && in.FechaInspeccion.IsZero() {
		c.Add("fecha_inspeccion: is required")
	}
	if in.Inspector != nil {
		validateInspector(c, *in.Inspector)
	}
	in.Secciones.normalize()
	in.Secciones.validate(c)
	return c
}

// Replaced reports which array sections an update rewrites.
type Replaced struct {
	AccionesCorrectivas  bool
	ActividadesPecuarias bool
	DetallesCultivo      bool
	CosechaVentas        bool
	PlanificacionSiembra bool
}

func (r Replaced) Any() bool {
	return r.AccionesCorrectivas || r.ActividadesPecuarias || r.DetallesCultivo || r.CosechaVentas || r.PlanificacionSiembra
}

// Apply copies the provided parts of the update onto f.
func (in *UpdateInput) Apply(f *Ficha) Replaced {
	if in.FechaInspeccion != nil {
		f.FechaInspeccion = *in.FechaInspeccion
	}
	if in.Inspector != nil {
		f.Inspector = strings.TrimSpace(*in.Inspector)
	}
	if in.RevisionDocumentacion != nil {
		f.RevisionDocumentacion = in.RevisionDocumentacion
	}
	if in.EvaluacionMitigacion != nil {
		f.EvaluacionMitigacion = in.EvaluacionMitigacion
	}
	if in.EvaluacionPoscosecha != nil {
		f.EvaluacionPoscosecha = in.EvaluacionPoscosecha
	}
	if in.EvaluacionConocimientoNormas != nil {
		f.EvaluacionConocimientoNormas = in.EvaluacionConocimientoNormas
	}

	var r Replaced
	if in.AccionesCorrectivas != nil {
		f.AccionesCorrectivas, r.AccionesCorrectivas = in.AccionesCorrectivas, true
	}
	if in.ActividadesPecuarias != nil {
		f.ActividadesPecuarias, r.ActividadesPecuarias = in.ActividadesPecuarias, true
	}
	if in.DetallesCultivo != nil {
		f.DetallesCultivo, r.DetallesCultivo = in.DetallesCultivo, true
	}
	if in.CosechaVentas != nil {
		f.CosechaVentas, r.CosechaVentas = in.CosechaVentas, true
	}
	if in.PlanificacionSiembra != nil {
		f.PlanificacionSiembra, r.PlanificacionSiembra = in.PlanificacionSiembra, true
	}
	return r
}

func validateInspector(c *dErrors.Collector, inspector string) {
	n := len([]rune(strings.TrimSpace(inspector)))
	if n == 0 {
		c.Add("inspector: is required")
	} else if n > maxInspectorLength {
		c.Add("inspector: must be at most " + strconv.Itoa(maxInspectorLength) + " characters")
	}
}

func (s *Secciones) normalize() {
	for i := range s.AccionesCorrectivas {
		if s.AccionesCorrectivas[i].Estado == "" {
			s.AccionesCorrectivas[i].Estado = AccionPendiente
		}
	}
}

func (s *Secciones) validate(c *dErrors.Collector) {
	if s.RevisionDocumentacion != nil {
		validation.Check(c, SectionRevisionDocumentacion, s.RevisionDocumentacion)
	}
	if s.EvaluacionMitigacion != nil {
		validation.Check(c, SectionEvaluacionMitigacion, s.EvaluacionMitigacion)
	}
	if s.EvaluacionPoscosecha != nil {
		validation.Check(c, SectionEvaluacionPoscosecha, s.EvaluacionPoscosecha)
	}
	if s.EvaluacionConocimientoNormas != nil {
		validation.Check(c, SectionEvaluacionConocimientoNormas, s.EvaluacionConocimientoNormas)
	}

	seen := make(map[int]bool, len(s.AccionesCorrectivas))
	for i, a := range s.AccionesCorrectivas {
		prefix := indexed("acciones_correctivas", i)
		validation.Check(c, prefix, a)
		if seen[a.Numero] {
			c.Add(prefix + ".numero: duplicate numero " + strconv.Itoa(a.Numero))
		}
		seen[a.Numero] = true
	}
	for i, a := range s.ActividadesPecuarias {
		validation.Check(c, indexed("actividades_pecuarias", i), a)
	}
	for i, d := range s.DetallesCultivo {
		validation.Check(c, indexed("detalles_cultivo", i), d)
	}
	for i, cv := range s.CosechaVentas {
		validation.Check(c, indexed("cosecha_ventas", i), cv)
	}
	for i, p := range s.PlanificacionSiembra {
		validation.Check(c, indexed("planificacion_siembra", i), p)
	}
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// DecideRequest is the body of POST /fichas/{id}/decision.
type DecideRequest struct {
	Resultado   Resultado `json:"resultado"`
	Comentarios string    `json:"comentarios,omitempty"`
}

// ConfirmUploadRequest reports the outcome of an out-of-band upload.
type ConfirmUploadRequest struct {
	OK   bool   `json:"ok"`
	Hash string `json:"hash,omitempty"`
}

// ListFilter narrows GET /fichas. Comunidades nil means unrestricted.
type ListFilter struct {
	GestionID       *id.GestionID
	Estado          Estado
	ProductorCodigo string
	Comunidades     []id.ComunidadID
}

// ValidateArchivo checks attachment metadata.
func ValidateArchivo(in ArchivoInput) error {
	c := dErrors.NewCollector("")
	validation.Check(c, "archivo", in)
	return c.Err("invalid archivo")
}
