package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"agrocert/internal/access"
	"agrocert/internal/audit"
	"agrocert/internal/followup/metrics"
	"agrocert/internal/followup/models"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tracing"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/requestcontext"
)

// Store is the persistence port for nonconformities and their evidence.
type Store interface {
	Create(ctx context.Context, nc *models.NoConformidad) error
	FindByID(ctx context.Context, ncID id.NoConformidadID) (*models.NoConformidad, error)
	ListByFicha(ctx context.Context, fichaID id.FichaID) ([]*models.NoConformidad, error)
	UpdateFollowUp(ctx context.Context, nc *models.NoConformidad) error
	AddEvidence(ctx context.Context, e *models.ArchivoNoConformidad) error
	FindEvidence(ctx context.Context, evidenceID id.ArchivoID) (*models.ArchivoNoConformidad, error)
	ListEvidence(ctx context.Context, ncID id.NoConformidadID) ([]models.ArchivoNoConformidad, error)
	UpdateEvidence(ctx context.Context, e *models.ArchivoNoConformidad) error
	DeleteEvidence(ctx context.Context, evidenceID id.ArchivoID) error
}

// Fichas resolves the community of the parent ficha; nonconformities inherit its scoping.
type Fichas interface {
	ComunidadOf(ctx context.Context, fichaID id.FichaID) (id.ComunidadID, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	tx             tx.Runner
	fichas         Fichas
	files          storage.FileStorage
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

func WithFileStorage(files storage.FileStorage) Option {
	return func(s *Service) {
		s.files = files
	}
}

var tracer = tracing.Tracer("agrocert/followup")

func New(store Store, runner tx.Runner, fichas Fichas, opts ...Option) *Service {
	s := &Service{store: store, tx: runner, fichas: fichas}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a nonconformity against a ficha. It starts pendiente.
func (s *Service) Create(ctx context.Context, fichaID id.FichaID, req models.CreateRequest) (*models.NoConformidad, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadWrite); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.scope(ctx, ident, fichaID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	nc := &models.NoConformidad{
		ID:                        id.NoConformidadID(uuid.New()),
		FichaID:                   fichaID,
		Descripcion:               req.Descripcion,
		AccionCorrectivaPropuesta: req.AccionCorrectivaPropuesta,
		FechaLimite:               req.FechaLimite,
		EstadoSeguimiento:         models.FollowUpPendiente,
		CreatedBy:                 ident.UserID,
		CreatedAt:                 now,
		UpdatedAt:                 now,
		Evidencias:                []models.ArchivoNoConformidad{},
	}
	if err := s.store.Create(ctx, nc); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ficha not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create no conformidad")
	}

	s.logAudit(ctx, audit.ActionNoConformidadCreated, nc.ID.String(), "ficha_id", fichaID.String())
	if s.metrics != nil {
		s.metrics.Created.Inc()
	}
	return nc, nil
}

// UpdateFollowUp sets the follow-up state, comment and date. The date
// defaults to today and is stored exactly as supplied otherwise, so past
// cycles can be entered after the fact. Moving backwards is allowed and
// reported as a reopen.
func (s *Service) UpdateFollowUp(ctx context.Context, ncID id.NoConformidadID, req models.UpdateFollowUpRequest) (_ *models.NoConformidad, err error) {
	ctx, span := tracing.Start(ctx, tracer, "followup.UpdateFollowUp",
		attribute.String("no_conformidad_id", ncID.String()),
		attribute.String("estado", string(req.Estado)),
	)
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadWrite); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		out      *models.NoConformidad
		previous models.FollowUpState
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		nc, err := s.load(ctx, ident, ncID)
		if err != nil {
			return err
		}
		previous = nc.EstadoSeguimiento
		now := requestcontext.Now(ctx)
		fecha := id.DateOf(now)
		if req.FechaSeguimiento != nil && !req.FechaSeguimiento.IsZero() {
			fecha = *req.FechaSeguimiento
		}
		nc.ApplyFollowUp(req.Estado, req.Comentario, fecha, ident.UserID, now)
		if err := s.store.UpdateFollowUp(ctx, nc); err != nil {
			return translate(err, "no conformidad not found", "failed to update follow-up")
		}
		out = nc
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous.Regresses(out.EstadoSeguimiento) {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "no conformidad reopened",
				"no_conformidad_id", out.ID.String(),
				"previous_state", string(previous),
				"new_state", string(out.EstadoSeguimiento),
				"actor_id", ident.UserID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		s.logAudit(ctx, audit.ActionFollowUpReopened, out.ID.String(),
			"previous_state", string(previous),
			"new_state", string(out.EstadoSeguimiento),
		)
		if s.metrics != nil {
			s.metrics.Reopened.Inc()
		}
	} else {
		s.logAudit(ctx, audit.ActionFollowUpUpdated, out.ID.String(),
			"previous_state", string(previous),
			"new_state", string(out.EstadoSeguimiento),
			"fecha_seguimiento", out.FechaSeguimiento.String(),
		)
	}
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(out.EstadoSeguimiento)).Inc()
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, ncID id.NoConformidadID) (*models.NoConformidad, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadRead); err != nil {
		return nil, err
	}
	return s.load(ctx, ident, ncID)
}

func (s *Service) ListByFicha(ctx context.Context, fichaID id.FichaID) ([]*models.NoConformidad, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadRead); err != nil {
		return nil, err
	}
	if err := s.scope(ctx, ident, fichaID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByFicha(ctx, fichaID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list no conformidades")
	}
	return list, nil
}

func (s *Service) ListEvidence(ctx context.Context, ncID id.NoConformidadID) ([]models.ArchivoNoConformidad, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadRead); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, ident, ncID); err != nil {
		return nil, err
	}
	list, err := s.store.ListEvidence(ctx, ncID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list evidencias")
	}
	return list, nil
}

// AttachEvidence registers evidence metadata in the pendiente upload state.
func (s *Service) AttachEvidence(ctx context.Context, ncID id.NoConformidadID, in models.EvidenceInput) (*models.ArchivoNoConformidad, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadWrite); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	nc, err := s.load(ctx, ident, ncID)
	if err != nil {
		return nil, err
	}

	evidenceID := id.ArchivoID(uuid.New())
	e := &models.ArchivoNoConformidad{
		ID:              evidenceID,
		NoConformidadID: nc.ID,
		Categoria:       in.Categoria,
		Nombre:          in.Nombre,
		Mime:            in.Mime,
		Tamano:          in.Tamano,
		Ruta:            storage.ObjectKey("evidencias", nc.ID.String(), evidenceID.String(), in.Nombre),
		EstadoSubida:    storage.UploadPendiente,
		SubidoPor:       ident.UserID,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.AddEvidence(ctx, e); err != nil {
		return nil, translate(err, "no conformidad not found", "failed to attach evidencia")
	}
	s.logAudit(ctx, audit.ActionEvidenceAttached, e.ID.String(),
		"no_conformidad_id", nc.ID.String(),
		"categoria", string(e.Categoria),
	)
	return e, nil
}

// UploadEvidence streams evidence bytes to file storage and records the outcome.
func (s *Service) UploadEvidence(ctx context.Context, evidenceID id.ArchivoID, r io.Reader, size int64) (_ *models.ArchivoNoConformidad, err error) {
	ctx, span := tracing.Start(ctx, tracer, "followup.UploadEvidence", attribute.String("evidencia_id", evidenceID.String()))
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadWrite); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "file storage is not configured")
	}
	e, err := s.loadEvidence(ctx, ident, evidenceID)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > storage.MaxFileSize {
		return nil, dErrors.Validation("invalid upload", []string{"tamano: must be between 1 byte and 50MB"})
	}

	obj, putErr := s.files.Put(ctx, e.Ruta, r, size, e.Mime)
	if putErr != nil {
		e.EstadoSubida = storage.UploadError
	} else {
		e.EstadoSubida = storage.UploadSubido
		e.Hash = obj.Hash
		e.Tamano = obj.Size
	}
	if err := s.store.UpdateEvidence(ctx, e); err != nil {
		return nil, translate(err, "evidencia not found", "failed to record upload")
	}
	s.countEvidence(e.EstadoSubida)
	if putErr != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "evidencia upload failed", "evidencia_id", e.ID.String(), "error", putErr)
		}
		return nil, dErrors.Wrap(putErr, dErrors.CodeInternal, "failed to store evidencia")
	}
	s.logAudit(ctx, audit.ActionEvidenceConfirmed, e.ID.String(), "estado_subida", string(e.EstadoSubida), "hash", e.Hash)
	return e, nil
}

// ConfirmEvidence moves evidence to subido or error after an external upload.
func (s *Service) ConfirmEvidence(ctx context.Context, evidenceID id.ArchivoID, req models.ConfirmUploadRequest) (*models.ArchivoNoConformidad, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadWrite); err != nil {
		return nil, err
	}
	e, err := s.loadEvidence(ctx, ident, evidenceID)
	if err != nil {
		return nil, err
	}
	e.EstadoSubida = storage.Confirmed(req.OK)
	if req.Hash != "" {
		e.Hash = req.Hash
	}
	if err := s.store.UpdateEvidence(ctx, e); err != nil {
		return nil, translate(err, "evidencia not found", "failed to confirm evidencia")
	}
	s.countEvidence(e.EstadoSubida)
	s.logAudit(ctx, audit.ActionEvidenceConfirmed, e.ID.String(), "estado_subida", string(e.EstadoSubida))
	return e, nil
}

// DeleteEvidence hard-deletes the evidence row and its stored bytes. Only the
// uploader or an administrador may do it.
func (s *Service) DeleteEvidence(ctx context.Context, evidenceID id.ArchivoID) error {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermNoConformidadWrite); err != nil {
		return err
	}
	e, err := s.loadEvidence(ctx, ident, evidenceID)
	if err != nil {
		return err
	}
	if err := access.RequireOwnership(ident, e.SubidoPor); err != nil {
		return err
	}
	if err := s.store.DeleteEvidence(ctx, e.ID); err != nil {
		return translate(err, "evidencia not found", "failed to delete evidencia")
	}
	if s.files != nil {
		if err := s.files.Delete(ctx, e.Ruta); err != nil && !errors.Is(err, storage.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to remove stored evidencia", "ruta", e.Ruta, "error", err)
		}
	}
	s.logAudit(ctx, audit.ActionEvidenceDeleted, e.ID.String(), "no_conformidad_id", e.NoConformidadID.String())
	return nil
}

// ComunidadOf resolves the community of a nonconformity through its ficha.
func (s *Service) ComunidadOf(ctx context.Context, ncID id.NoConformidadID) (id.ComunidadID, error) {
	nc, err := s.store.FindByID(ctx, ncID)
	if err != nil {
		return id.ComunidadID{}, translate(err, "no conformidad not found", "failed to load no conformidad")
	}
	return s.fichas.ComunidadOf(ctx, nc.FichaID)
}

// EvidenceOwner resolves the user who uploaded the evidence.
func (s *Service) EvidenceOwner(ctx context.Context, evidenceID id.ArchivoID) (id.UserID, error) {
	e, err := s.store.FindEvidence(ctx, evidenceID)
	if err != nil {
		return id.UserID{}, translate(err, "evidencia not found", "failed to load evidencia")
	}
	return e.SubidoPor, nil
}

func (s *Service) scope(ctx context.Context, ident *access.Identity, fichaID id.FichaID) error {
	comunidad, err := s.fichas.ComunidadOf(ctx, fichaID)
	if err != nil {
		return err
	}
	return access.RequireComunidadAccess(ident, comunidad)
}

func (s *Service) load(ctx context.Context, ident *access.Identity, ncID id.NoConformidadID) (*models.NoConformidad, error) {
	nc, err := s.store.FindByID(ctx, ncID)
	if err != nil {
		return nil, translate(err, "no conformidad not found", "failed to load no conformidad")
	}
	if err := s.scope(ctx, ident, nc.FichaID); err != nil {
		return nil, err
	}
	return nc, nil
}

func (s *Service) loadEvidence(ctx context.Context, ident *access.Identity, evidenceID id.ArchivoID) (*models.ArchivoNoConformidad, error) {
	e, err := s.store.FindEvidence(ctx, evidenceID)
	if err != nil {
		return nil, translate(err, "evidencia not found", "failed to load evidencia")
	}
	if _, err := s.load(ctx, ident, e.NoConformidadID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) countEvidence(state storage.UploadState) {
	if s.metrics != nil {
		s.metrics.EvidenceByState.WithLabelValues(string(state)).Inc()
	}
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, subject string, details ...string) {
	event := audit.Event{
		Action:  action,
		Subject: subject,
		Details: make(map[string]string, len(details)/2),
	}
	if ident := access.IdentityFrom(ctx); ident != nil {
		event.ActorID = ident.UserID.String()
	}
	for i := 0; i+1 < len(details); i += 2 {
		event.Details[details[i]] = details[i+1]
	}
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
