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
	"agrocert/internal/ficha/metrics"
	"agrocert/internal/ficha/models"
	gmodels "agrocert/internal/gestion/models"
	rmodels "agrocert/internal/reference/models"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tracing"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/requestcontext"
)

// Store is the persistence port for the ficha aggregate. Writes replace whole
// sections; Update only rewrites the array sections flagged in replaced.
type Store interface {
	Create(ctx context.Context, f *models.Ficha) error
	FindByID(ctx context.Context, fichaID id.FichaID) (*models.Ficha, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Ficha, error)
	Update(ctx context.Context, f *models.Ficha, replaced models.Replaced) error
	UpdateState(ctx context.Context, f *models.Ficha, from models.Estado) error
	Delete(ctx context.Context, fichaID id.FichaID) error
	AddArchivo(ctx context.Context, a *models.ArchivoFicha) error
	FindArchivo(ctx context.Context, archivoID id.ArchivoID) (*models.ArchivoFicha, error)
	UpdateArchivo(ctx context.Context, a *models.ArchivoFicha) error
}

// Gestiones resolves the fiscal year a ficha belongs to.
type Gestiones interface {
	GetActive(ctx context.Context) (*gmodels.Gestion, error)
	Get(ctx context.Context, gestionID id.GestionID) (*gmodels.Gestion, error)
}

// References resolves producer, parcel and crop keys.
type References interface {
	Productor(ctx context.Context, codigo string) (*rmodels.Productor, error)
	Parcela(ctx context.Context, parcelaID id.ParcelaID) (*rmodels.Parcela, error)
	TipoCultivo(ctx context.Context, tipoID id.TipoCultivoID) (*rmodels.TipoCultivo, error)
	IsPrincipalCultivo(ctx context.Context, tipoID id.TipoCultivoID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the ficha workflow: borrador → revision → aprobado|rechazado.
type Service struct {
	store          Store
	tx             tx.Runner
	gestiones      Gestiones
	references     References
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

// WithFileStorage enables byte uploads for attachments. Without it only
// metadata registration and confirmation are available.
func WithFileStorage(files storage.FileStorage) Option {
	return func(s *Service) {
		s.files = files
	}
}

var tracer = tracing.Tracer("agrocert/ficha")

func New(store Store, runner tx.Runner, gestiones Gestiones, references References, opts ...Option) *Service {
	s := &Service{store: store, tx: runner, gestiones: gestiones, references: references}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates every provided section, resolves the producer and the
// gestion, and persists the aggregate in one transaction.
func (s *Service) Create(ctx context.Context, in models.CreateInput) (_ *models.View, err error) {
	ctx, span := tracing.Start(ctx, tracer, "ficha.Create", attribute.String("productor_codigo", in.ProductorCodigo))
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaWrite); err != nil {
		return nil, err
	}

	c := in.Validate()
	var productor *rmodels.Productor
	if in.ProductorCodigo != "" {
		productor, err = s.references.Productor(ctx, in.ProductorCodigo)
		switch {
		case err == nil:
			if err := access.RequireComunidadAccess(ident, productor.ComunidadID); err != nil {
				return nil, err
			}
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			c.Add("productor_codigo: productor " + in.ProductorCodigo + " not found")
		default:
			return nil, err
		}
	}

	gestion, err := s.resolveGestion(ctx, in.GestionID)
	if err != nil {
		return nil, err
	}

	var owner id.ProductorID
	if productor != nil {
		owner = productor.ID
	}
	if err := s.checkReferences(ctx, c, owner, &in.Secciones); err != nil {
		return nil, err
	}
	if err := c.Err("ficha validation failed"); err != nil {
		s.countValidation("create")
		return nil, err
	}

	now := requestcontext.Now(ctx)
	f := &models.Ficha{
		ID:              id.FichaID(uuid.New()),
		ProductorID:     productor.ID,
		ProductorCodigo: productor.Codigo,
		ComunidadID:     productor.ComunidadID,
		GestionID:       gestion.ID,
		FechaInspeccion: in.FechaInspeccion,
		Inspector:       trimmed(in.Inspector),
		Estado:          models.EstadoBorrador,
		Resultado:       models.ResultadoPendiente,
		CreatedBy:       ident.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Secciones:       in.Secciones,
		Archivos:        []models.ArchivoFicha{},
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, f); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "productor "+f.ProductorCodigo+" already has a ficha for this gestion")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ficha")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionFichaCreated, f.ID.String(),
		"productor_codigo", f.ProductorCodigo,
		"gestion_id", f.GestionID.String(),
	)
	if s.metrics != nil {
		s.metrics.FichasCreated.Inc()
	}
	return s.view(f), nil
}

// Update applies a partial change to a borrador ficha. Array sections present
// in the input replace the stored rows in the same transaction as the header.
func (s *Service) Update(ctx context.Context, fichaID id.FichaID, in models.UpdateInput) (_ *models.View, err error) {
	ctx, span := tracing.Start(ctx, tracer, "ficha.Update", attribute.String("ficha_id", fichaID.String()))
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaWrite); err != nil {
		return nil, err
	}

	var (
		out      *models.Ficha
		replaced models.Replaced
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.load(ctx, ident, fichaID)
		if err != nil {
			return err
		}
		if err := f.CanEdit(); err != nil {
			return err
		}
		c := in.Validate()
		if err := s.checkReferences(ctx, c, f.ProductorID, &in.Secciones); err != nil {
			return err
		}
		if err := c.Err("ficha validation failed"); err != nil {
			s.countValidation("update")
			return err
		}
		replaced = in.Apply(f)
		f.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, f, replaced); err != nil {
			return translate(err, "failed to update ficha")
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionFichaUpdated, out.ID.String(), replacedDetails(replaced)...)
	return s.view(out), nil
}

// Submit moves a complete borrador ficha to revision.
func (s *Service) Submit(ctx context.Context, fichaID id.FichaID) (_ *models.View, err error) {
	ctx, span := tracing.Start(ctx, tracer, "ficha.Submit", attribute.String("ficha_id", fichaID.String()))
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaSubmit); err != nil {
		return nil, err
	}

	var out *models.Ficha
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.load(ctx, ident, fichaID)
		if err != nil {
			return err
		}
		if err := f.CanSubmit(); err != nil {
			if dErrors.HasCode(err, dErrors.CodeValidation) {
				s.countValidation("submit")
			}
			return err
		}
		f.ApplySubmit(requestcontext.Now(ctx))
		if err := s.store.UpdateState(ctx, f, models.EstadoBorrador); err != nil {
			return translate(err, "failed to submit ficha")
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.ActionFichaSubmitted, out.ID.String(), "productor_codigo", out.ProductorCodigo)
	if s.metrics != nil {
		s.metrics.FichasSubmitted.Inc()
	}
	return s.view(out), nil
}

// Decide records the certification outcome of a ficha under review. Only
// gerentes and administradores may decide; both outcomes are terminal.
func (s *Service) Decide(ctx context.Context, fichaID id.FichaID, req models.DecideRequest) (_ *models.View, err error) {
	ctx, span := tracing.Start(ctx, tracer, "ficha.Decide",
		attribute.String("ficha_id", fichaID.String()),
		attribute.String("resultado", string(req.Resultado)),
	)
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequireRole(ident, access.RoleGerente, access.RoleAdministrador); err != nil {
		return nil, err
	}
	if err := access.RequirePermission(ident, access.PermFichaApprove); err != nil {
		return nil, err
	}

	var out *models.Ficha
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.load(ctx, ident, fichaID)
		if err != nil {
			return err
		}
		comentarios := trimmed(req.Comentarios)
		if err := f.CanDecide(req.Resultado, comentarios); err != nil {
			return err
		}
		f.ApplyDecision(req.Resultado, comentarios, ident.UserID, requestcontext.Now(ctx))
		if err := s.store.UpdateState(ctx, f, models.EstadoRevision); err != nil {
			return translate(err, "failed to record decision")
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "ficha decided",
			"ficha_id", out.ID.String(),
			"resultado", string(out.Resultado),
			"decided_by", ident.UserID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.logAudit(ctx, audit.ActionFichaDecided, out.ID.String(), "resultado", string(out.Resultado))
	if s.metrics != nil {
		s.metrics.Decisions.WithLabelValues(string(out.Resultado)).Inc()
	}
	return s.view(out), nil
}

// Get returns the ficha with its advisory planning warnings.
func (s *Service) Get(ctx context.Context, fichaID id.FichaID) (*models.View, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaRead); err != nil {
		return nil, err
	}
	f, err := s.load(ctx, ident, fichaID)
	if err != nil {
		return nil, err
	}
	return models.NewView(f), nil
}

// List returns fichas of the requested gestion, the active one by default.
// Tecnicos only see their assigned communities.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.View, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaRead); err != nil {
		return nil, err
	}
	switch {
	case ident.Role.IsSupervisor():
		filter.Comunidades = nil
	case ident.Role == access.RoleTecnico:
		filter.Comunidades = append([]id.ComunidadID{}, ident.Comunidades...)
	default:
		return nil, dErrors.Forbidden(access.ReasonCommunity, "role "+ident.Role.String()+" has no community access")
	}
	if filter.GestionID == nil {
		g, err := s.gestiones.GetActive(ctx)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return []*models.View{}, nil
			}
			return nil, err
		}
		filter.GestionID = &g.ID
	}

	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fichas")
	}
	out := make([]*models.View, len(list))
	for i, f := range list {
		out[i] = models.NewView(f)
	}
	return out, nil
}

// Delete removes a borrador ficha. Only its creator or an administrador may do it.
func (s *Service) Delete(ctx context.Context, fichaID id.FichaID) (err error) {
	ctx, span := tracing.Start(ctx, tracer, "ficha.Delete", attribute.String("ficha_id", fichaID.String()))
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaDelete); err != nil {
		return err
	}

	var archivos []models.ArchivoFicha
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.load(ctx, ident, fichaID)
		if err != nil {
			return err
		}
		if err := access.RequireOwnership(ident, f.CreatedBy); err != nil {
			return err
		}
		if err := f.CanDelete(); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, f.ID); err != nil {
			return translate(err, "failed to delete ficha")
		}
		archivos = f.Archivos
		return nil
	})
	if err != nil {
		return err
	}

	for _, a := range archivos {
		s.removeObject(ctx, a.Ruta)
	}
	s.logAudit(ctx, audit.ActionFichaDeleted, fichaID.String())
	return nil
}

// AddArchivo registers attachment metadata on a borrador ficha. The returned
// record is pendiente until its bytes are uploaded or confirmed.
func (s *Service) AddArchivo(ctx context.Context, fichaID id.FichaID, in models.ArchivoInput) (*models.ArchivoFicha, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaWrite); err != nil {
		return nil, err
	}
	if err := models.ValidateArchivo(in); err != nil {
		return nil, err
	}

	var out *models.ArchivoFicha
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.load(ctx, ident, fichaID)
		if err != nil {
			return err
		}
		if err := f.CanEdit(); err != nil {
			return err
		}
		archivoID := id.ArchivoID(uuid.New())
		a := &models.ArchivoFicha{
			ID:           archivoID,
			FichaID:      f.ID,
			Tipo:         in.Tipo,
			Nombre:       trimmed(in.Nombre),
			Mime:         in.Mime,
			Tamano:       in.Tamano,
			Ruta:         storage.ObjectKey("fichas", f.ID.String(), archivoID.String(), in.Nombre),
			EstadoSubida: storage.UploadPendiente,
			CreatedAt:    requestcontext.Now(ctx),
		}
		if err := s.store.AddArchivo(ctx, a); err != nil {
			return translate(err, "failed to register archivo")
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionArchivoAdded, out.ID.String(), "ficha_id", fichaID.String(), "tipo", string(out.Tipo))
	return out, nil
}

// UploadArchivo streams the attachment bytes to file storage. A storage
// failure leaves the record in the error state instead of pendiente.
func (s *Service) UploadArchivo(ctx context.Context, archivoID id.ArchivoID, r io.Reader, size int64) (_ *models.ArchivoFicha, err error) {
	ctx, span := tracing.Start(ctx, tracer, "ficha.UploadArchivo", attribute.String("archivo_id", archivoID.String()))
	defer func() { tracing.End(span, err) }()

	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaWrite); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "file storage is not configured")
	}
	a, err := s.loadArchivo(ctx, ident, archivoID)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > storage.MaxFileSize {
		return nil, dErrors.Validation("invalid upload", []string{"tamano: must be between 1 byte and 50MB"})
	}

	obj, putErr := s.files.Put(ctx, a.Ruta, r, size, a.Mime)
	if putErr != nil {
		a.EstadoSubida = storage.UploadError
	} else {
		a.EstadoSubida = storage.UploadSubido
		a.Hash = obj.Hash
		a.Tamano = obj.Size
	}
	if err := s.store.UpdateArchivo(ctx, a); err != nil {
		return nil, translate(err, "failed to record upload")
	}
	s.countUpload(a.EstadoSubida)
	if putErr != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "archivo upload failed", "archivo_id", a.ID.String(), "error", putErr)
		}
		return nil, dErrors.Wrap(putErr, dErrors.CodeInternal, "failed to store archivo")
	}
	s.logAudit(ctx, audit.ActionArchivoStored, a.ID.String(), "estado_subida", string(a.EstadoSubida), "hash", a.Hash)
	return a, nil
}

// ConfirmArchivo records the outcome of an upload performed outside the service.
func (s *Service) ConfirmArchivo(ctx context.Context, archivoID id.ArchivoID, req models.ConfirmUploadRequest) (*models.ArchivoFicha, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermFichaWrite); err != nil {
		return nil, err
	}
	a, err := s.loadArchivo(ctx, ident, archivoID)
	if err != nil {
		return nil, err
	}
	a.EstadoSubida = storage.Confirmed(req.OK)
	if req.Hash != "" {
		a.Hash = req.Hash
	}
	if err := s.store.UpdateArchivo(ctx, a); err != nil {
		return nil, translate(err, "failed to confirm archivo")
	}
	s.countUpload(a.EstadoSubida)
	s.logAudit(ctx, audit.ActionArchivoStored, a.ID.String(), "estado_subida", string(a.EstadoSubida))
	return a, nil
}

// ComunidadOf resolves the community owning a ficha, for route-level scoping.
func (s *Service) ComunidadOf(ctx context.Context, fichaID id.FichaID) (id.ComunidadID, error) {
	f, err := s.store.FindByID(ctx, fichaID)
	if err != nil {
		return id.ComunidadID{}, translate(err, "failed to load ficha")
	}
	return f.ComunidadID, nil
}

// OwnerOf resolves the user who recorded the ficha.
func (s *Service) OwnerOf(ctx context.Context, fichaID id.FichaID) (id.UserID, error) {
	f, err := s.store.FindByID(ctx, fichaID)
	if err != nil {
		return id.UserID{}, translate(err, "failed to load ficha")
	}
	return f.CreatedBy, nil
}

func (s *Service) resolveGestion(ctx context.Context, gestionID *id.GestionID) (*gmodels.Gestion, error) {
	if gestionID == nil {
		g, err := s.gestiones.GetActive(ctx)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeInvalidState, "no active gestion configured; activate one first")
			}
			return nil, err
		}
		return g, nil
	}
	g, err := s.gestiones.Get(ctx, *gestionID)
	if err != nil {
		return nil, err
	}
	if g.State == gmodels.StateFinalizada {
		return nil, dErrors.New(dErrors.CodeInvalidState, "gestion is finished and accepts no new fichas")
	}
	return g, nil
}

// load fetches a ficha and enforces community scoping for the caller.
func (s *Service) load(ctx context.Context, ident *access.Identity, fichaID id.FichaID) (*models.Ficha, error) {
	f, err := s.store.FindByID(ctx, fichaID)
	if err != nil {
		return nil, translate(err, "failed to load ficha")
	}
	if err := access.RequireComunidadAccess(ident, f.ComunidadID); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) loadArchivo(ctx context.Context, ident *access.Identity, archivoID id.ArchivoID) (*models.ArchivoFicha, error) {
	a, err := s.store.FindArchivo(ctx, archivoID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "archivo not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load archivo")
	}
	if _, err := s.load(ctx, ident, a.FichaID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) view(f *models.Ficha) *models.View {
	v := models.NewView(f)
	if s.metrics != nil && len(v.Advertencias) > 0 {
		s.metrics.PlanningWarnings.Add(float64(len(v.Advertencias)))
	}
	return v
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if s.files == nil || key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to remove stored archivo", "ruta", key, "error", err)
	}
}

func (s *Service) countValidation(operation string) {
	if s.metrics != nil {
		s.metrics.ValidationFailed.WithLabelValues(operation).Inc()
	}
}

func (s *Service) countUpload(state storage.UploadState) {
	if s.metrics != nil {
		s.metrics.Uploads.WithLabelValues(string(state)).Inc()
	}
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "ficha not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, "ficha was changed concurrently; reload and retry")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func replacedDetails(r models.Replaced) []string {
	var details []string
	flag := func(name string, set bool) {
		if set {
			details = append(details, name, "replaced")
		}
	}
	flag("acciones_correctivas", r.AccionesCorrectivas)
	flag("actividades_pecuarias", r.ActividadesPecuarias)
	flag("detalles_cultivo", r.DetallesCultivo)
	flag("cosecha_ventas", r.CosechaVentas)
	flag("planificacion_siembra", r.PlanificacionSiembra)
	return details
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, subject string, details ...string) {
	event := audit.Event{
		Action:  action,
		Subject: subject,
		Details: make(map[string]string, len(details)/2),
	}
	if actor := requestcontext.UserID(ctx); !actor.IsNil() {
		event.ActorID = actor.String()
	} else if ident := access.IdentityFrom(ctx); ident != nil {
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
