// Package models holds the nonconformity follow-up records. A NoConformidad
// is a child of a ficha and inherits its community scoping.
package models

import (
	"strings"
	"time"

	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/validation"
)

// FollowUpState carries no forward-only guard: moving back from corregido
// is a reopen, not an error.
type FollowUpState string

const (
	FollowUpPendiente   FollowUpState = "pendiente"
	FollowUpSeguimiento FollowUpState = "seguimiento"
	FollowUpCorregido   FollowUpState = "corregido"
)

var followUpRank = map[FollowUpState]int{
	FollowUpPendiente:   0,
	FollowUpSeguimiento: 1,
	FollowUpCorregido:   2,
}

func (s FollowUpState) IsValid() bool {
	_, ok := followUpRank[s]
	return ok
}

// Regresses reports whether moving from s to next goes backwards.
func (s FollowUpState) Regresses(next FollowUpState) bool {
	return followUpRank[next] < followUpRank[s]
}

type NoConformidad struct {
	ID                        id.NoConformidadID `json:"id"`
	FichaID                   id.FichaID         `json:"ficha_id"`
	Descripcion               string             `json:"descripcion"`
	AccionCorrectivaPropuesta string             `json:"accion_correctiva_propuesta,omitempty"`
	FechaLimite               *id.Date           `json:"fecha_limite,omitempty"`
	EstadoSeguimiento         FollowUpState      `json:"estado_seguimiento"`
	ComentarioSeguimiento     string             `json:"comentario_seguimiento,omitempty"`
	FechaSeguimiento          *id.Date           `json:"fecha_seguimiento,omitempty"`
	ActualizadoPor            *id.UserID         `json:"actualizado_por,omitempty"`
	CreatedBy                 id.UserID          `json:"created_by"`
	CreatedAt                 time.Time          `json:"created_at"`
	UpdatedAt                 time.Time          `json:"updated_at"`

	Evidencias []ArchivoNoConformidad `json:"evidencias,omitempty"`
}

// ApplyFollowUp records a follow-up step. fecha is stored as given.
func (nc *NoConformidad) ApplyFollowUp(state FollowUpState, comment string, fecha id.Date, actor id.UserID, now time.Time) {
	nc.EstadoSeguimiento = state
	nc.ComentarioSeguimiento = comment
	nc.FechaSeguimiento = &fecha
	nc.ActualizadoPor = &actor
	nc.UpdatedAt = now
}

// Categoria classifies follow-up evidence.
type Categoria string

const (
	CategoriaEvidenciaCorreccion Categoria = "evidencia_correccion"
	CategoriaDocumentoSoporte    Categoria = "documento_soporte"
	CategoriaFotoAntes           Categoria = "foto_antes"
	CategoriaFotoDespues         Categoria = "foto_despues"
)

type ArchivoNoConformidad struct {
	ID              id.ArchivoID        `json:"id"`
	NoConformidadID id.NoConformidadID  `json:"no_conformidad_id"`
	Categoria       Categoria           `json:"categoria"`
	Nombre          string              `json:"nombre"`
	Mime            string              `json:"mime"`
	Tamano          int64               `json:"tamano"`
	Hash            string              `json:"hash,omitempty"`
	Ruta            string              `json:"ruta"`
	EstadoSubida    storage.UploadState `json:"estado_subida"`
	SubidoPor       id.UserID           `json:"subido_por"`
	CreatedAt       time.Time           `json:"created_at"`
}

type CreateRequest struct {
	Descripcion               string   `json:"descripcion" validate:"min=5,max=500"`
	AccionCorrectivaPropuesta string   `json:"accion_correctiva_propuesta,omitempty" validate:"max=500"`
	FechaLimite               *id.Date `json:"fecha_limite,omitempty"`
}

func (r *CreateRequest) Validate() error {
	r.Descripcion = strings.TrimSpace(r.Descripcion)
	r.AccionCorrectivaPropuesta = strings.TrimSpace(r.AccionCorrectivaPropuesta)
	c := dErrors.NewCollector("")
	validation.Check(c, "", r)
	return c.Err("invalid no conformidad")
}

// UpdateFollowUpRequest omits fecha_seguimiento to mean today.
type UpdateFollowUpRequest struct {
	Estado           FollowUpState `json:"estado" validate:"required,oneof=pendiente seguimiento corregido"`
	Comentario       string        `json:"comentario,omitempty" validate:"max=1000"`
	FechaSeguimiento *id.Date      `json:"fecha_seguimiento,omitempty"`
}

func (r *UpdateFollowUpRequest) Validate() error {
	r.Comentario = strings.TrimSpace(r.Comentario)
	c := dErrors.NewCollector("")
	validation.Check(c, "", r)
	return c.Err("invalid follow-up")
}

type EvidenceInput struct {
	Categoria Categoria `json:"categoria" validate:"required,oneof=evidencia_correccion documento_soporte foto_antes foto_despues"`
	Nombre    string    `json:"nombre" validate:"min=1,max=255"`
	Mime      string    `json:"mime" validate:"required,max=100"`
	Tamano    int64     `json:"tamano" validate:"gt=0,lte=52428800"`
}

func (in *EvidenceInput) Validate() error {
	in.Nombre = strings.TrimSpace(in.Nombre)
	c := dErrors.NewCollector("")
	validation.Check(c, "", in)
	return c.Err("invalid evidencia")
}

type ConfirmUploadRequest struct {
	OK   bool   `json:"ok"`
	Hash string `json:"hash,omitempty" validate:"max=128"`
}
