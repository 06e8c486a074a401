//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agrocert/internal/ficha/models"
	"agrocert/internal/ficha/store"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
	"agrocert/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
	fixture  *containers.Fixture
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "fichas", "gestiones", "productores", "comunidades"))
	fixture, err := s.postgres.SeedFixture(s.ctx, 2025)
	s.Require().NoError(err)
	s.fixture = fixture
}

func (s *PostgresStoreSuite) newFicha() *models.Ficha {
	now := time.Now().UTC().Truncate(time.Microsecond)
	limite := id.NewDate(2025, time.September, 30)
	return &models.Ficha{
		ID:              id.FichaID(uuid.New()),
		ProductorID:     id.ProductorID(s.fixture.ProductorID),
		ProductorCodigo: s.fixture.Codigo,
		ComunidadID:     id.ComunidadID(s.fixture.ComunidadID),
		GestionID:       id.GestionID(s.fixture.GestionID),
		FechaInspeccion: id.NewDate(2025, time.July, 14),
		Inspector:       "Ing. Mamani",
		Estado:          models.EstadoBorrador,
		Resultado:       models.ResultadoPendiente,
		CreatedBy:       id.UserID(uuid.New()),
		CreatedAt:       now,
		UpdatedAt:       now,
		Secciones: models.Secciones{
			RevisionDocumentacion: &models.RevisionDocumentacion{
				SolicitudIngreso:   models.Cumple,
				NormasReglamentos:  models.Cumple,
				ContratoProduccion: models.Cumple,
				CroquisUbicacion:   models.Parcial,
				DiarioCampo:        models.Cumple,
				RegistroCosecha:    models.NoAplica,
				ReciboPago:         models.Cumple,
			},
			ActividadesPecuarias: []models.ActividadPecuaria{{TipoGanado: "ovino", Cantidad: 4}},
			AccionesCorrectivas: []models.AccionCorrectiva{
				{Numero: 1, Descripcion: "cercar parcela", FechaLimite: &limite, Estado: models.AccionPendiente},
			},
		},
	}
}

func (s *PostgresStoreSuite) TestCreateAndLoad() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))

	got, err := s.store.FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(f.Inspector, got.Inspector)
	s.Equal("2025-07-14", got.FechaInspeccion.String())
	s.Require().NotNil(got.RevisionDocumentacion)
	s.Equal(models.Parcial, got.RevisionDocumentacion.CroquisUbicacion)
	s.Nil(got.EvaluacionMitigacion)
	s.Require().Len(got.AccionesCorrectivas, 1)
	s.Equal("2025-09-30", got.AccionesCorrectivas[0].FechaLimite.String())
	s.Len(got.ActividadesPecuarias, 1)
}

func (s *PostgresStoreSuite) TestOneFichaPerProductorPerGestion() {
	s.Require().NoError(s.store.Create(s.ctx, s.newFicha()))
	s.ErrorIs(s.store.Create(s.ctx, s.newFicha()), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestUpdateReplacesOnlyProvidedArrays() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))

	f.Inspector = "Ing. Choque"
	f.ActividadesPecuarias = nil
	f.AccionesCorrectivas = []models.AccionCorrectiva{}
	f.UpdatedAt = time.Now()
	s.Require().NoError(s.store.Update(s.ctx, f, models.Replaced{AccionesCorrectivas: true}))

	got, err := s.store.FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal("Ing. Choque", got.Inspector)
	s.Len(got.ActividadesPecuarias, 1)
	s.Empty(got.AccionesCorrectivas)
}

func (s *PostgresStoreSuite) TestUpdateStateIsGuarded() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))

	f.Estado = models.EstadoRevision
	s.Require().NoError(s.store.UpdateState(s.ctx, f, models.EstadoBorrador))

	f.Estado = models.EstadoAprobado
	s.ErrorIs(s.store.UpdateState(s.ctx, f, models.EstadoBorrador), sentinel.ErrInvalidState)

	missing := *f
	missing.ID = id.FichaID(uuid.New())
	s.ErrorIs(s.store.UpdateState(s.ctx, &missing, models.EstadoRevision), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateRejectsFichaThatLeftBorrador() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))
	stale, err := s.store.FindByID(s.ctx, f.ID)
	s.Require().NoError(err)

	f.Estado = models.EstadoRevision
	s.Require().NoError(s.store.UpdateState(s.ctx, f, models.EstadoBorrador))

	stale.Inspector = "Ing. Choque"
	stale.AccionesCorrectivas = []models.AccionCorrectiva{}
	stale.UpdatedAt = time.Now()
	s.ErrorIs(s.store.Update(s.ctx, stale, models.Replaced{AccionesCorrectivas: true}), sentinel.ErrInvalidState)

	got, err := s.store.FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(models.EstadoRevision, got.Estado)
	s.Equal("Ing. Mamani", got.Inspector)
	s.Len(got.AccionesCorrectivas, 1)

	missing := *stale
	missing.ID = id.FichaID(uuid.New())
	s.ErrorIs(s.store.Update(s.ctx, &missing, models.Replaced{}), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindByIDLocksRowInsideTransaction() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))
	runner := tx.NewSQLRunner(s.postgres.DB)

	err := runner.RunInTx(s.ctx, func(ctx context.Context) error {
		if _, err := s.store.FindByID(ctx, f.ID); err != nil {
			return err
		}
		blocked, cancel := context.WithTimeout(s.ctx, 300*time.Millisecond)
		defer cancel()
		submitted := *f
		submitted.Estado = models.EstadoRevision
		s.Error(s.store.UpdateState(blocked, &submitted, models.EstadoBorrador),
			"a concurrent transition waits for the lock holder")
		return nil
	})
	s.Require().NoError(err)

	got, err := s.store.FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(models.EstadoBorrador, got.Estado)
}

func (s *PostgresStoreSuite) TestListFilters() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))

	all, err := s.store.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 1)

	none, err := s.store.List(s.ctx, models.ListFilter{Comunidades: []id.ComunidadID{}})
	s.Require().NoError(err)
	s.Empty(none)

	scoped, err := s.store.List(s.ctx, models.ListFilter{Comunidades: []id.ComunidadID{f.ComunidadID}, Estado: models.EstadoBorrador})
	s.Require().NoError(err)
	s.Require().Len(scoped, 1)
	s.NotNil(scoped[0].RevisionDocumentacion, "compliance sections load with the list")

	other := id.GestionID(uuid.New())
	byGestion, err := s.store.List(s.ctx, models.ListFilter{GestionID: &other})
	s.Require().NoError(err)
	s.Empty(byGestion)
}

func (s *PostgresStoreSuite) TestDeleteCascades() {
	f := s.newFicha()
	s.Require().NoError(s.store.Create(s.ctx, f))
	s.Require().NoError(s.store.Delete(s.ctx, f.ID))

	var children int
	err := s.postgres.DB.QueryRowContext(s.ctx, `SELECT count(*) FROM acciones_correctivas WHERE ficha_id = $1`, uuid.UUID(f.ID)).Scan(&children)
	s.Require().NoError(err)
	s.Zero(children)
	s.ErrorIs(s.store.Delete(s.ctx, f.ID), sentinel.ErrNotFound)
}
