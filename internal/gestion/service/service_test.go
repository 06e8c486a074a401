package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agrocert/internal/audit"
	"agrocert/internal/gestion/metrics"
	"agrocert/internal/gestion/models"
	"agrocert/internal/gestion/service/mocks"
	"agrocert/internal/gestion/store"
	"agrocert/internal/platform/logger"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/requestcontext"
)

type GestionServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	events  *audit.InMemoryStore
	service *Service
	actor   id.UserID
}

func TestGestionServiceSuite(t *testing.T) {
	suite.Run(t, new(GestionServiceSuite))
}

func (s *GestionServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	s.events = audit.NewInMemoryStore()
	s.actor = id.UserID(uuid.New())
	s.service = New(s.store, tx.NewLockRunner(),
		WithLogger(logger.Discard()),
		WithAuditPublisher(audit.NewPublisher(logger.Discard(), s.events)),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
}

func (s *GestionServiceSuite) create(year int) *models.Gestion {
	g, err := s.service.Create(s.ctx, year, "")
	s.Require().NoError(err)
	return g
}

func (s *GestionServiceSuite) TestCreate() {
	s.Run("new gestion is planned and soft-active", func() {
		g := s.create(2025)
		s.Equal(models.StatePlanificada, g.State)
		s.True(g.IsSoftActive)
		s.False(g.IsSystemActive)
	})

	s.Run("duplicate year is a conflict", func() {
		_, err := s.service.Create(s.ctx, 2025, "again")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("year out of range is a validation error", func() {
		_, err := s.service.Create(s.ctx, 1999, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *GestionServiceSuite) TestActivateSwitchesActiveYear() {
	g2025 := s.create(2025)
	_, err := s.service.Activate(s.ctx, g2025.ID, s.actor)
	s.Require().NoError(err)

	g2026 := s.create(2026)
	activated, err := s.service.Activate(s.ctx, g2026.ID, s.actor)
	s.Require().NoError(err)
	s.Equal(models.StateActiva, activated.State)

	active, err := s.service.GetActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(2026, active.Year)

	prev, err := s.service.Get(s.ctx, g2025.ID)
	s.Require().NoError(err)
	s.False(prev.IsSystemActive)
	s.True(prev.IsSoftActive)

	events := s.events.ByAction(audit.ActionGestionActivated)
	s.Require().Len(events, 2)
	s.Equal("2025", events[1].Details["previous_year"])
	s.Equal("2026", events[1].Details["new_year"])
	s.Equal(s.actor.String(), events[1].ActorID)
}

func (s *GestionServiceSuite) TestActivateIsIdempotent() {
	g := s.create(2025)
	_, err := s.service.Activate(s.ctx, g.ID, s.actor)
	s.Require().NoError(err)
	_, err = s.service.Activate(s.ctx, g.ID, s.actor)
	s.Require().NoError(err)
	s.Len(s.events.ByAction(audit.ActionGestionActivated), 1)
}

func (s *GestionServiceSuite) TestActivateErrors() {
	s.Run("unknown gestion", func() {
		_, err := s.service.Activate(s.ctx, id.GestionID(uuid.New()), s.actor)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("soft-deactivated gestion", func() {
		g := s.create(2030)
		_, err := s.service.Deactivate(s.ctx, g.ID)
		s.Require().NoError(err)
		_, err = s.service.Activate(s.ctx, g.ID, s.actor)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *GestionServiceSuite) TestDeactivateRejectsSystemActive() {
	g := s.create(2025)
	_, err := s.service.Activate(s.ctx, g.ID, s.actor)
	s.Require().NoError(err)

	_, err = s.service.Deactivate(s.ctx, g.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.service.Finish(s.ctx, g.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *GestionServiceSuite) TestGetActiveWithoutConfiguration() {
	_, err := s.service.GetActive(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GestionServiceSuite) TestFinishAndList() {
	a := s.create(2024)
	s.create(2025)

	finished, err := s.service.Finish(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(models.StateFinalizada, finished.State)

	list, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(2025, list[0].Year)
}

func TestActivateStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	mockAudit := mocks.NewMockAuditPublisher(ctrl)
	svc := New(mockStore, tx.NewLockRunner(), WithAuditPublisher(mockAudit))
	ctx := context.Background()

	target, err := models.NewGestion(id.GestionID(uuid.New()), 2025, "", time.Now())
	require.NoError(t, err)

	t.Run("set active failure is internal and emits nothing", func(t *testing.T) {
		mockStore.EXPECT().FindByID(gomock.Any(), target.ID).Return(target, nil)
		mockStore.EXPECT().FindActive(gomock.Any()).Return(nil, sentinel.ErrNotFound)
		mockStore.EXPECT().SetSystemActive(gomock.Any(), target.ID, gomock.Any()).Return(errors.New("db down"))

		_, err := svc.Activate(ctx, target.ID, id.UserID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("store conflict surfaces as conflict", func(t *testing.T) {
		mockStore.EXPECT().FindByID(gomock.Any(), target.ID).Return(target, nil)
		mockStore.EXPECT().FindActive(gomock.Any()).Return(nil, sentinel.ErrNotFound)
		mockStore.EXPECT().SetSystemActive(gomock.Any(), target.ID, gomock.Any()).Return(sentinel.ErrConflict)

		_, err := svc.Activate(ctx, target.ID, id.UserID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("successful activation emits one audit event", func(t *testing.T) {
		fresh := *target
		mockStore.EXPECT().FindByID(gomock.Any(), target.ID).Return(&fresh, nil)
		mockStore.EXPECT().FindActive(gomock.Any()).Return(nil, sentinel.ErrNotFound)
		mockStore.EXPECT().SetSystemActive(gomock.Any(), target.ID, gomock.Any()).Return(nil)
		mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			assert.Equal(t, audit.ActionGestionActivated, e.Action)
			assert.Equal(t, "", e.Details["previous_year"])
			return nil
		})

		g, err := svc.Activate(ctx, target.ID, id.UserID(uuid.New()))
		require.NoError(t, err)
		assert.True(t, g.IsSystemActive)
	})
}
