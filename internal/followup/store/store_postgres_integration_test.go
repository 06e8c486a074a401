//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agrocert/internal/followup/models"
	"agrocert/internal/followup/store"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
	fichaID  id.FichaID
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
	fichaID, err := s.postgres.SeedFicha(s.ctx, fixture)
	s.Require().NoError(err)
	s.fichaID = id.FichaID(fichaID)
}

func (s *PostgresStoreSuite) newNoConformidad() *models.NoConformidad {
	now := time.Now().UTC().Truncate(time.Microsecond)
	nc := &models.NoConformidad{
		ID:                id.NoConformidadID(uuid.New()),
		FichaID:           s.fichaID,
		Descripcion:       "Quema de rastrojos",
		EstadoSeguimiento: models.FollowUpPendiente,
		CreatedBy:         id.UserID(uuid.New()),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.Require().NoError(s.store.Create(s.ctx, nc))
	return nc
}

func (s *PostgresStoreSuite) TestCreateRequiresFicha() {
	nc := &models.NoConformidad{
		ID:                id.NoConformidadID(uuid.New()),
		FichaID:           id.FichaID(uuid.New()),
		Descripcion:       "Sin ficha",
		EstadoSeguimiento: models.FollowUpPendiente,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	s.ErrorIs(s.store.Create(s.ctx, nc), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFollowUpDateIsStoredVerbatim() {
	nc := s.newNoConformidad()
	nc.ApplyFollowUp(models.FollowUpCorregido, "listo", id.NewDate(2023, time.January, 1), id.UserID(uuid.New()), time.Now())
	s.Require().NoError(s.store.UpdateFollowUp(s.ctx, nc))

	list, err := s.store.ListByFicha(s.ctx, s.fichaID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(models.FollowUpCorregido, list[0].EstadoSeguimiento)
	s.Equal("2023-01-01", list[0].FechaSeguimiento.String())
	s.NotNil(list[0].ActualizadoPor)
}

func (s *PostgresStoreSuite) TestEvidenceLifecycle() {
	nc := s.newNoConformidad()
	e := &models.ArchivoNoConformidad{
		ID:              id.ArchivoID(uuid.New()),
		NoConformidadID: nc.ID,
		Categoria:       models.CategoriaFotoAntes,
		Nombre:          "antes.jpg",
		Mime:            "image/jpeg",
		Tamano:          1024,
		Ruta:            storage.ObjectKey("evidencias", nc.ID.String(), "antes.jpg"),
		EstadoSubida:    storage.UploadPendiente,
		SubidoPor:       id.UserID(uuid.New()),
		CreatedAt:       time.Now(),
	}
	s.Require().NoError(s.store.AddEvidence(s.ctx, e))

	e.EstadoSubida = storage.UploadSubido
	e.Hash = "abc123"
	s.Require().NoError(s.store.UpdateEvidence(s.ctx, e))

	got, err := s.store.FindByID(s.ctx, nc.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Evidencias, 1)
	s.Equal(storage.UploadSubido, got.Evidencias[0].EstadoSubida)
	s.Equal("abc123", got.Evidencias[0].Hash)

	s.Require().NoError(s.store.DeleteEvidence(s.ctx, e.ID))
	_, err = s.store.FindEvidence(s.ctx, e.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.DeleteEvidence(s.ctx, e.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFichaDeleteCascades() {
	nc := s.newNoConformidad()
	_, err := s.postgres.DB.ExecContext(s.ctx, `DELETE FROM fichas WHERE id = $1`, uuid.UUID(s.fichaID))
	s.Require().NoError(err)

	_, err = s.store.FindByID(s.ctx, nc.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
