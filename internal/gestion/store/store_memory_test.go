package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agrocert/internal/gestion/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

type GestionStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *GestionStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestGestionStoreSuite(t *testing.T) {
	suite.Run(t, new(GestionStoreSuite))
}

func (s *GestionStoreSuite) newGestion(year int) *models.Gestion {
	g, err := models.NewGestion(id.GestionID(uuid.New()), year, "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, g))
	return g
}

func (s *GestionStoreSuite) TestCreate() {
	s.Run("rejects duplicate year", func() {
		s.newGestion(2030)
		dup, err := models.NewGestion(id.GestionID(uuid.New()), 2030, "", time.Now())
		s.Require().NoError(err)
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.GestionID(uuid.New()))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *GestionStoreSuite) TestSetSystemActive() {
	a := s.newGestion(2025)
	b := s.newGestion(2026)

	_, err := s.store.FindActive(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.SetSystemActive(s.ctx, a.ID, time.Now()))
	s.Require().NoError(s.store.SetSystemActive(s.ctx, b.ID, time.Now()))

	active, err := s.store.FindActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(b.ID, active.ID)

	prev, err := s.store.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.False(prev.IsSystemActive)
	s.True(prev.IsSoftActive)

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	count := 0
	for _, g := range all {
		if g.IsSystemActive {
			count++
		}
	}
	s.Equal(1, count)
	s.Equal(2026, all[0].Year)
}
