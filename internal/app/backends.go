package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	fichaservice "agrocert/internal/ficha/service"
	fichastore "agrocert/internal/ficha/store"
	followupservice "agrocert/internal/followup/service"
	followupstore "agrocert/internal/followup/store"
	gestionservice "agrocert/internal/gestion/service"
	gestionstore "agrocert/internal/gestion/store"
	"agrocert/internal/platform/config"
	"agrocert/internal/platform/postgres"
	referenceservice "agrocert/internal/reference/service"
	referencestore "agrocert/internal/reference/store"
	"agrocert/internal/storage"
	usuarioservice "agrocert/internal/usuario/service"
	usuariostore "agrocert/internal/usuario/store"
	"agrocert/pkg/platform/tx"
)

// backends bundles one storage choice for every module: Postgres when a
// DATABASE_URL is configured, in-memory stores otherwise.
type backends struct {
	runner     tx.Runner
	gestiones  gestionservice.Store
	references referenceservice.Store
	fichas     fichaservice.Store
	followups  followupservice.Store
	usuarios   usuarioservice.Store
	db         *sql.DB
	demo       *referencestore.Demo
}

func openBackends(ctx context.Context, cfg config.Server, logger *slog.Logger) (*backends, error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory stores with demo reference data")
		references := referencestore.NewInMemory()
		demo := referencestore.SeedDemo(references, cfg.PrincipalCultivo)
		return &backends{
			runner:     tx.NewLockRunner(),
			gestiones:  gestionstore.NewInMemory(),
			references: references,
			fichas:     fichastore.NewInMemory(),
			followups:  followupstore.NewInMemory(),
			usuarios:   usuariostore.NewInMemory(),
			demo:       &demo,
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &backends{
		runner:     tx.NewSQLRunner(db),
		gestiones:  gestionstore.NewPostgres(db),
		references: referencestore.NewPostgres(db),
		fichas:     fichastore.NewPostgres(db),
		followups:  followupstore.NewPostgres(db),
		usuarios:   usuariostore.NewPostgres(db),
		db:         db,
	}, nil
}

func (b *backends) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func openFileStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.FileStorage, error) {
	if cfg.Endpoint == "" {
		logger.Warn("MINIO_ENDPOINT not set; evidence bytes are kept in memory")
		return storage.NewInMemory(), nil
	}
	files, err := storage.NewMinioStorage(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	if err := files.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return files, nil
}
