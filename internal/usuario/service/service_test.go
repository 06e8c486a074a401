package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agrocert/internal/access"
	"agrocert/internal/audit"
	"agrocert/internal/platform/logger"
	"agrocert/internal/usuario/models"
	"agrocert/internal/usuario/service/mocks"
	"agrocert/internal/usuario/store"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/requestcontext"
)

type UsuarioServiceSuite struct {
	suite.Suite
	base    context.Context
	events  *audit.InMemoryStore
	service *Service

	admin   *access.Identity
	gerente *access.Identity
	tecnico *access.Identity
}

func TestUsuarioServiceSuite(t *testing.T) {
	suite.Run(t, new(UsuarioServiceSuite))
}

func (s *UsuarioServiceSuite) SetupTest() {
	s.base = requestcontext.WithTime(context.Background(), time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC))
	s.events = audit.NewInMemoryStore()
	s.service = New(store.NewInMemory(), tx.NewLockRunner(),
		WithLogger(logger.Discard()),
		WithAuditPublisher(audit.NewPublisher(logger.Discard(), s.events)),
	)
	s.admin = s.identity(access.RoleAdministrador)
	s.gerente = s.identity(access.RoleGerente)
	s.tecnico = s.identity(access.RoleTecnico)
}

func (s *UsuarioServiceSuite) identity(role access.Role) *access.Identity {
	return &access.Identity{
		UserID:      id.UserID(uuid.New()),
		Role:        role,
		Permissions: access.DefaultPermissions(role),
		Comunidades: []id.ComunidadID{id.ComunidadID(uuid.New())},
	}
}

func (s *UsuarioServiceSuite) as(ident *access.Identity) context.Context {
	return access.WithIdentity(s.base, ident)
}

func (s *UsuarioServiceSuite) create(actor *access.Identity, email string, rol access.Role) *models.Usuario {
	req := models.CreateRequest{Email: email, Nombre: "Usuario " + email, Rol: rol}
	if rol == access.RoleTecnico {
		req.Comunidades = []id.ComunidadID{id.ComunidadID(uuid.New())}
	}
	u, err := s.service.Create(s.as(actor), req)
	s.Require().NoError(err)
	return u
}

func (s *UsuarioServiceSuite) TestCreate() {
	s.Run("gerente creates a tecnico", func() {
		u := s.create(s.gerente, "tec@coop.bo", access.RoleTecnico)
		s.True(u.Activo)
		s.Len(u.Comunidades, 1)
		s.Len(s.events.ByAction(audit.ActionUsuarioCreated), 1)
	})

	s.Run("gerente cannot create a peer", func() {
		_, err := s.service.Create(s.as(s.gerente), models.CreateRequest{Email: "g2@coop.bo", Nombre: "G", Rol: access.RoleGerente})
		s.Equal(access.ReasonHierarchy, dErrors.ReasonOf(err))
	})

	s.Run("tecnico lacks the permission", func() {
		_, err := s.service.Create(s.as(s.tecnico), models.CreateRequest{Email: "i@coop.bo", Nombre: "I", Rol: access.RoleInvitado})
		s.Equal(access.ReasonPermission, dErrors.ReasonOf(err))
	})

	s.Run("duplicate email is a conflict", func() {
		_, err := s.service.Create(s.as(s.admin), models.CreateRequest{Email: "TEC@coop.bo", Nombre: "Otro", Rol: access.RoleInvitado})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("communities are dropped for non-tecnicos", func() {
		u, err := s.service.Create(s.as(s.admin), models.CreateRequest{
			Email: "ger@coop.bo", Nombre: "Gerente", Rol: access.RoleGerente,
			Comunidades: []id.ComunidadID{id.ComunidadID(uuid.New())},
		})
		s.Require().NoError(err)
		s.Empty(u.Comunidades)
	})
}

func (s *UsuarioServiceSuite) TestSelfModificationIsAlwaysForbidden() {
	for _, actor := range []*access.Identity{s.admin, s.gerente, s.tecnico, s.identity(access.RoleInvitado)} {
		nombre := "Nuevo"
		_, err := s.service.Update(s.as(actor), actor.UserID, models.UpdateRequest{Nombre: &nombre})
		s.Equal(access.ReasonSelfModification, dErrors.ReasonOf(err), actor.Role)

		_, err = s.service.Deactivate(s.as(actor), actor.UserID)
		s.Equal(access.ReasonSelfModification, dErrors.ReasonOf(err), actor.Role)
	}
}

func (s *UsuarioServiceSuite) TestUpdate() {
	target := s.create(s.admin, "tec@coop.bo", access.RoleTecnico)

	s.Run("gerente renames a tecnico", func() {
		nombre := "  Pedro Mamani "
		u, err := s.service.Update(s.as(s.gerente), target.ID, models.UpdateRequest{Nombre: &nombre})
		s.Require().NoError(err)
		s.Equal("Pedro Mamani", u.Nombre)
	})

	s.Run("gerente cannot promote to gerente", func() {
		rol := access.RoleGerente
		_, err := s.service.Update(s.as(s.gerente), target.ID, models.UpdateRequest{Rol: &rol})
		s.Equal(access.ReasonHierarchy, dErrors.ReasonOf(err))
	})

	s.Run("gerente cannot touch another gerente", func() {
		peer := s.create(s.admin, "peer@coop.bo", access.RoleGerente)
		nombre := "x"
		_, err := s.service.Update(s.as(s.gerente), peer.ID, models.UpdateRequest{Nombre: &nombre})
		s.Equal(access.ReasonHierarchy, dErrors.ReasonOf(err))
	})

	s.Run("emptying a tecnico's communities is invalid", func() {
		_, err := s.service.Update(s.as(s.admin), target.ID, models.UpdateRequest{Comunidades: []id.ComunidadID{}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown user", func() {
		nombre := "x"
		_, err := s.service.Update(s.as(s.admin), id.UserID(uuid.New()), models.UpdateRequest{Nombre: &nombre})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UsuarioServiceSuite) TestDeactivate() {
	target := s.create(s.admin, "inv@coop.bo", access.RoleInvitado)

	u, err := s.service.Deactivate(s.as(s.gerente), target.ID)
	s.Require().NoError(err)
	s.False(u.Activo)
	s.Len(s.events.ByAction(audit.ActionUsuarioDeactivated), 1)

	_, err = s.service.Deactivate(s.as(s.gerente), target.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *UsuarioServiceSuite) TestGet() {
	target := s.create(s.admin, "tec@coop.bo", access.RoleTecnico)
	self := &access.Identity{UserID: target.ID, Role: access.RoleTecnico, Permissions: access.DefaultPermissions(access.RoleTecnico)}

	_, err := s.service.Get(s.as(self), target.ID)
	s.NoError(err)

	_, err = s.service.Get(s.as(s.tecnico), target.ID)
	s.Equal(access.ReasonPermission, dErrors.ReasonOf(err))
}

func TestStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := New(mockStore, tx.NewLockRunner())
	admin := &access.Identity{UserID: id.UserID(uuid.New()), Role: access.RoleAdministrador, Permissions: access.DefaultPermissions(access.RoleAdministrador)}
	ctx := access.WithIdentity(context.Background(), admin)

	mockStore.EXPECT().List(gomock.Any()).Return(nil, errors.New("connection refused"))
	_, err := svc.List(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	target := &models.Usuario{ID: id.UserID(uuid.New()), Rol: access.RoleInvitado, Activo: true}
	mockStore.EXPECT().FindByID(gomock.Any(), target.ID).Return(target, nil)
	mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))
	_, err = svc.Deactivate(ctx, target.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *UsuarioServiceSuite) TestTecnicoWithManagePermissionManagesNoOne() {
	granted := s.identity(access.RoleTecnico)
	granted.Permissions = access.NewPermissionSet(access.PermUsuarioManage)

	_, err := s.service.Create(s.as(granted), models.CreateRequest{
		Email:  "invitado@coop.bo",
		Nombre: "Invitado",
		Rol:    access.RoleInvitado,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(access.ReasonHierarchy, dErrors.ReasonOf(err))

	invitado := s.create(s.gerente, "visita@coop.bo", access.RoleInvitado)
	_, err = s.service.Deactivate(s.as(granted), invitado.ID)
	s.Require().Error(err)
	s.Equal(access.ReasonHierarchy, dErrors.ReasonOf(err))
	s.Empty(s.events.ByAction(audit.ActionUsuarioDeactivated))
}
