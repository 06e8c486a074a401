package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"agrocert/internal/audit"
	"agrocert/internal/gestion/metrics"
	"agrocert/internal/gestion/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tracing"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/requestcontext"
)

// Store is the persistence port for gestiones.
type Store interface {
	Create(ctx context.Context, g *models.Gestion) error
	FindByID(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error)
	FindActive(ctx context.Context) (*models.Gestion, error)
	List(ctx context.Context) ([]*models.Gestion, error)
	Update(ctx context.Context, g *models.Gestion) error
	SetSystemActive(ctx context.Context, gestionID id.GestionID, now time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the single-active-gestion invariant.
type Service struct {
	store          Store
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

var tracer = tracing.Tracer("agrocert/gestion")

func New(store Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{store: store, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a planned gestion for year.
func (s *Service) Create(ctx context.Context, year int, description string) (*models.Gestion, error) {
	g, err := models.NewGestion(id.GestionID(uuid.New()), year, strings.TrimSpace(description), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, g); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a gestion for year "+strconv.Itoa(year)+" already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create gestion")
	}

	s.logAudit(ctx, audit.ActionGestionCreated, g.ID.String(), "year", strconv.Itoa(g.Year))
	if s.metrics != nil {
		s.metrics.GestionCreated.Inc()
	}
	return g, nil
}

// Activate makes gestionID the single system-active gestion. Clearing the
// previous one and setting the target happen in the same transaction.
func (s *Service) Activate(ctx context.Context, gestionID id.GestionID, actorID id.UserID) (_ *models.Gestion, err error) {
	ctx, span := tracing.Start(ctx, tracer, "gestion.Activate", attribute.String("gestion_id", gestionID.String()))
	defer func() { tracing.End(span, err) }()
	start := time.Now()

	var (
		activated *models.Gestion
		previous  *models.Gestion
		changed   bool
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		target, err := s.findByID(ctx, gestionID)
		if err != nil {
			return err
		}
		if target.IsSystemActive {
			activated = target
			return nil
		}
		if err := target.CanActivate(); err != nil {
			return err
		}

		prev, err := s.store.FindActive(ctx)
		switch {
		case err == nil:
			previous = prev
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active gestion")
		}

		now := requestcontext.Now(ctx)
		if err := s.store.SetSystemActive(ctx, target.ID, now); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "another activation is in progress")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate gestion")
		}
		target.ApplyActivation(now)
		activated = target
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return activated, nil
	}

	previousYear := ""
	if previous != nil {
		previousYear = strconv.Itoa(previous.Year)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "active gestion changed",
			"previous_year", previousYear,
			"new_year", activated.Year,
			"actor_id", actorID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.emit(ctx, audit.Event{
		Action:  audit.ActionGestionActivated,
		Subject: activated.ID.String(),
		ActorID: actorID.String(),
		Details: map[string]string{
			"previous_year": previousYear,
			"new_year":      strconv.Itoa(activated.Year),
		},
	})
	if s.metrics != nil {
		s.metrics.ObserveActivation(activated.Year, start)
	}
	return activated, nil
}

// Deactivate soft-deactivates a gestion that is not system-active.
func (s *Service) Deactivate(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error) {
	var out *models.Gestion
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		g, err := s.findByID(ctx, gestionID)
		if err != nil {
			return err
		}
		if err := g.CanDeactivate(); err != nil {
			return err
		}
		g.ApplyDeactivation(requestcontext.Now(ctx))
		if err := s.store.Update(ctx, g); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate gestion")
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionGestionDeactivated, out.ID.String(), "year", strconv.Itoa(out.Year))
	return out, nil
}

// Finish closes a gestion that is no longer system-active.
func (s *Service) Finish(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error) {
	var out *models.Gestion
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		g, err := s.findByID(ctx, gestionID)
		if err != nil {
			return err
		}
		if err := g.CanFinish(); err != nil {
			return err
		}
		g.ApplyFinish(requestcontext.Now(ctx))
		if err := s.store.Update(ctx, g); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to finish gestion")
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionGestionFinished, out.ID.String(), "year", strconv.Itoa(out.Year))
	return out, nil
}

// GetActive returns the system-active gestion. NotFound means the system
// has not been configured yet.
func (s *Service) GetActive(ctx context.Context) (*models.Gestion, error) {
	g, err := s.store.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active gestion configured")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active gestion")
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error) {
	return s.findByID(ctx, gestionID)
}

func (s *Service) List(ctx context.Context) ([]*models.Gestion, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list gestiones")
	}
	return list, nil
}

func (s *Service) findByID(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error) {
	g, err := s.store.FindByID(ctx, gestionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "gestion not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load gestion")
	}
	return g, nil
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, subject string, details ...string) {
	event := audit.Event{
		Action:  action,
		Subject: subject,
		Details: make(map[string]string, len(details)/2),
	}
	if actor := requestcontext.UserID(ctx); !actor.IsNil() {
		event.ActorID = actor.String()
	}
	for i := 0; i+1 < len(details); i += 2 {
		event.Details[details[i]] = details[i+1]
	}
	s.emit(ctx, event)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"error", err,
		)
	}
}
