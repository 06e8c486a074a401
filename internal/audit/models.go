package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	Subject   string            `json:"subject"`
	ActorID   string            `json:"actor_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

type Action string

const (
	ActionGestionCreated     Action = "gestion_created"
	ActionGestionActivated   Action = "gestion_activated"
	ActionGestionDeactivated Action = "gestion_deactivated"
	ActionGestionFinished    Action = "gestion_finished"

	ActionFichaCreated   Action = "ficha_created"
	ActionFichaUpdated   Action = "ficha_updated"
	ActionFichaSubmitted Action = "ficha_submitted"
	ActionFichaDecided   Action = "ficha_decided"
	ActionFichaDeleted   Action = "ficha_deleted"
	ActionArchivoAdded   Action = "archivo_added"
	ActionArchivoStored  Action = "archivo_stored"

	ActionNoConformidadCreated Action = "no_conformidad_created"
	ActionFollowUpUpdated      Action = "follow_up_updated"
	ActionFollowUpReopened     Action = "follow_up_reopened"
	ActionEvidenceAttached     Action = "evidence_attached"
	ActionEvidenceConfirmed    Action = "evidence_confirmed"
	ActionEvidenceDeleted      Action = "evidence_deleted"
	ActionUsuarioCreated       Action = "usuario_created"
	ActionUsuarioUpdated       Action = "usuario_updated"
	ActionUsuarioDeactivated   Action = "usuario_deactivated"
	ActionAccessDenied         Action = "access_denied"
)
