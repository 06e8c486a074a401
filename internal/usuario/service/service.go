package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"agrocert/internal/access"
	"agrocert/internal/audit"
	"agrocert/internal/usuario/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, u *models.Usuario) error
	FindByID(ctx context.Context, userID id.UserID) (*models.Usuario, error)
	List(ctx context.Context) ([]*models.Usuario, error)
	Update(ctx context.Context, u *models.Usuario) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages user records under the role hierarchy. Nobody may update
// or deactivate their own record, whatever their role.
type Service struct {
	store          Store
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

func New(store Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{store: store, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Usuario, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequirePermission(ident, access.PermUsuarioManage); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := access.RequireManageUser(ident, req.Rol); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	u := &models.Usuario{
		ID:          id.UserID(uuid.New()),
		Email:       req.Email,
		Nombre:      req.Nombre,
		Rol:         req.Rol,
		Comunidades: req.Comunidades,
		Activo:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if u.Rol != access.RoleTecnico || u.Comunidades == nil {
		u.Comunidades = []id.ComunidadID{}
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a usuario with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create usuario")
	}
	s.logAudit(ctx, audit.ActionUsuarioCreated, u.ID.String(), "rol", string(u.Rol))
	return u, nil
}

// Get lets any user read their own record; other records need PermUsuarioManage.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.Usuario, error) {
	ident := access.IdentityFrom(ctx)
	if err := access.RequireAuthenticated(ident); err != nil {
		return nil, err
	}
	if ident.UserID != userID {
		if err := access.RequirePermission(ident, access.PermUsuarioManage); err != nil {
			return nil, err
		}
	}
	return s.find(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]*models.Usuario, error) {
	if err := access.RequirePermission(access.IdentityFrom(ctx), access.PermUsuarioManage); err != nil {
		return nil, err
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list usuarios")
	}
	return list, nil
}

// Update applies req to a user the actor outranks. A role change must also
// land below the actor.
func (s *Service) Update(ctx context.Context, userID id.UserID, req models.UpdateRequest) (*models.Usuario, error) {
	ident := access.IdentityFrom(ctx)
	if err := s.guard(ident, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *models.Usuario
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.find(ctx, userID)
		if err != nil {
			return err
		}
		if err := access.RequireManageUser(ident, u.Rol); err != nil {
			return err
		}
		if req.Rol != nil {
			if err := access.RequireManageUser(ident, *req.Rol); err != nil {
				return err
			}
		}
		if err := u.Apply(req, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.store.Update(ctx, u); err != nil {
			return translate(err, "failed to update usuario")
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionUsuarioUpdated, out.ID.String(), "rol", string(out.Rol))
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, userID id.UserID) (*models.Usuario, error) {
	ident := access.IdentityFrom(ctx)
	if err := s.guard(ident, userID); err != nil {
		return nil, err
	}

	var out *models.Usuario
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.find(ctx, userID)
		if err != nil {
			return err
		}
		if err := access.RequireManageUser(ident, u.Rol); err != nil {
			return err
		}
		if !u.Activo {
			return dErrors.New(dErrors.CodeInvalidState, "usuario is already inactive")
		}
		u.Activo = false
		u.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, u); err != nil {
			return translate(err, "failed to deactivate usuario")
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionUsuarioDeactivated, out.ID.String(), "rol", string(out.Rol))
	return out, nil
}

// guard runs the checks shared by every mutation of an existing record.
func (s *Service) guard(ident *access.Identity, target id.UserID) error {
	if err := access.RequireAuthenticated(ident); err != nil {
		return err
	}
	if ident.UserID == target {
		return dErrors.Forbidden(access.ReasonSelfModification,
			"you cannot modify your own usuario; ask another administrador")
	}
	return access.RequirePermission(ident, access.PermUsuarioManage)
}

func (s *Service) find(ctx context.Context, userID id.UserID) (*models.Usuario, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "failed to load usuario")
	}
	return u, nil
}

func translate(err error, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "usuario not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, subject string, details ...string) {
	if s.auditPublisher == nil {
		return
	}
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
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", string(action), "error", err)
	}
}
