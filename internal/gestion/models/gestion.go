package models

import (
	"strconv"
	"time"

	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

const (
	MinYear              = 2000
	MaxYear              = 2100
	maxDescriptionLength = 255
)

// State is the bookkeeping state of a gestion. It is independent of the
// system-active flag: a planificada gestion can be promoted directly.
type State string

const (
	StatePlanificada State = "planificada"
	StateActiva      State = "activa"
	StateFinalizada  State = "finalizada"
)

// Gestion is an annual certification cycle.
//
// Invariants:
//   - Year is within [MinYear, MaxYear] and unique across gestiones
//   - At most one gestion has IsSystemActive set; the store enforces this
//   - A soft-deactivated gestion (IsSoftActive=false) never becomes system-active
//   - The system-active gestion cannot be soft-deactivated or finished
type Gestion struct {
	ID             id.GestionID `json:"id"`
	Year           int          `json:"year"`
	Description    string       `json:"description,omitempty"`
	State          State        `json:"state"`
	IsSoftActive   bool         `json:"is_soft_active"`
	IsSystemActive bool         `json:"is_system_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewGestion validates the input and returns a planned, soft-active gestion.
func NewGestion(gestionID id.GestionID, year int, description string, now time.Time) (*Gestion, error) {
	c := dErrors.NewCollector("")
	if year < MinYear || year > MaxYear {
		c.Add("year must be between " + strconv.Itoa(MinYear) + " and " + strconv.Itoa(MaxYear))
	}
	if len(description) > maxDescriptionLength {
		c.Add("description must be 255 characters or less")
	}
	if err := c.Err("invalid gestion"); err != nil {
		return nil, err
	}
	return &Gestion{
		ID:           gestionID,
		Year:         year,
		Description:  description,
		State:        StatePlanificada,
		IsSoftActive: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanActivate checks whether the gestion may become the system-active one.
func (g *Gestion) CanActivate() error {
	if !g.IsSoftActive {
		return dErrors.New(dErrors.CodeInvalidState, "gestion is deactivated and cannot be activated")
	}
	if g.State == StateFinalizada {
		return dErrors.New(dErrors.CodeInvalidState, "gestion is finished and cannot be activated")
	}
	return nil
}

// ApplyActivation marks the gestion system-active. The caller clears every
// other gestion in the same transaction.
func (g *Gestion) ApplyActivation(now time.Time) {
	g.IsSystemActive = true
	g.State = StateActiva
	g.UpdatedAt = now
}

// CanDeactivate rejects soft-deactivating the system-active gestion.
func (g *Gestion) CanDeactivate() error {
	if g.IsSystemActive {
		return dErrors.New(dErrors.CodeInvalidState, "gestion is system-active; activate another gestion first")
	}
	return nil
}

func (g *Gestion) ApplyDeactivation(now time.Time) {
	g.IsSoftActive = false
	g.UpdatedAt = now
}

// CanFinish allows closing any gestion that is not the system-active one.
func (g *Gestion) CanFinish() error {
	if g.IsSystemActive {
		return dErrors.New(dErrors.CodeInvalidState, "gestion is system-active; activate another gestion first")
	}
	if g.State == StateFinalizada {
		return dErrors.New(dErrors.CodeInvalidState, "gestion is already finished")
	}
	return nil
}

func (g *Gestion) ApplyFinish(now time.Time) {
	g.State = StateFinalizada
	g.UpdatedAt = now
}

// CreateRequest is the body of POST /gestiones.
type CreateRequest struct {
	Year        int    `json:"year"`
	Description string `json:"description,omitempty"`
}
