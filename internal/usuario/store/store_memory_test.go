package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agrocert/internal/access"
	"agrocert/internal/usuario/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

type UsuarioStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestUsuarioStoreSuite(t *testing.T) {
	suite.Run(t, new(UsuarioStoreSuite))
}

func (s *UsuarioStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *UsuarioStoreSuite) TestEmailIsUnique() {
	u := &models.Usuario{ID: id.UserID(uuid.New()), Email: "rosa@coop.bo", Rol: access.RoleGerente}
	s.Require().NoError(s.store.Create(s.ctx, u))

	dup := &models.Usuario{ID: id.UserID(uuid.New()), Email: "rosa@coop.bo", Rol: access.RoleInvitado}
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
}

func (s *UsuarioStoreSuite) TestReturnedRecordsAreCopies() {
	comunidad := id.ComunidadID(uuid.New())
	u := &models.Usuario{ID: id.UserID(uuid.New()), Email: "t@coop.bo", Rol: access.RoleTecnico, Comunidades: []id.ComunidadID{comunidad}}
	s.Require().NoError(s.store.Create(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	found.Comunidades[0] = id.ComunidadID(uuid.New())

	again, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(comunidad, again.Comunidades[0])
}

func (s *UsuarioStoreSuite) TestUpdateUnknown() {
	err := s.store.Update(s.ctx, &models.Usuario{ID: id.UserID(uuid.New())})
	s.ErrorIs(err, sentinel.ErrNotFound)
}
