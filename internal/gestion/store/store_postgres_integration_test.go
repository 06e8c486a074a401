//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agrocert/internal/gestion/models"
	"agrocert/internal/gestion/store"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "gestiones")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) create(year int) *models.Gestion {
	g, err := models.NewGestion(id.GestionID(uuid.New()), year, "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), g))
	return g
}

func (s *PostgresStoreSuite) TestDuplicateYear() {
	s.create(2031)
	dup, err := models.NewGestion(id.GestionID(uuid.New()), 2031, "", time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(context.Background(), dup), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestSetSystemActiveSwitches() {
	ctx := context.Background()
	first := s.create(2030)
	second := s.create(2031)

	s.Require().NoError(s.store.SetSystemActive(ctx, first.ID, time.Now()))
	s.Require().NoError(s.store.SetSystemActive(ctx, second.ID, time.Now()))

	active, err := s.store.FindActive(ctx)
	s.Require().NoError(err)
	s.Equal(second.ID, active.ID)

	prev, err := s.store.FindByID(ctx, first.ID)
	s.Require().NoError(err)
	s.False(prev.IsSystemActive)
	s.Equal(models.StateActiva, prev.State, "bookkeeping state is kept when another gestion takes over")
}

func (s *PostgresStoreSuite) TestSetSystemActiveUnknown() {
	err := s.store.SetSystemActive(context.Background(), id.GestionID(uuid.New()), time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentActivation checks that racing activations never leave two
// gestiones system-active.
func (s *PostgresStoreSuite) TestConcurrentActivation() {
	ctx := context.Background()
	const goroutines = 20

	ids := make([]id.GestionID, goroutines)
	for i := range ids {
		ids[i] = s.create(2040 + i).ID
	}

	runner := tx.NewSQLRunner(s.postgres.DB)
	var wg sync.WaitGroup
	var unexpected atomic.Int32
	for _, gestionID := range ids {
		gestionID := gestionID
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.RunInTx(ctx, func(ctx context.Context) error {
				return s.store.SetSystemActive(ctx, gestionID, time.Now())
			})
			if err != nil && !errors.Is(err, sentinel.ErrConflict) {
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(0), unexpected.Load(), "losers only see a conflict")

	var active int
	err := s.postgres.DB.QueryRowContext(ctx, `SELECT count(*) FROM gestiones WHERE is_system_active`).Scan(&active)
	s.Require().NoError(err)
	s.Equal(1, active)
}
