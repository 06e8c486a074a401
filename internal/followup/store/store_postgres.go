package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"agrocert/internal/followup/models"
	"agrocert/internal/platform/postgres"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
)

// PostgresStore persists no_conformidades and their evidence rows.
// fecha_seguimiento is a DATE column so a supplied day is returned unchanged.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ncColumns = `id, ficha_id, descripcion, accion_correctiva_propuesta, fecha_limite, estado_seguimiento,
	comentario_seguimiento, fecha_seguimiento, actualizado_por, created_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, nc *models.NoConformidad) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO no_conformidades (`+ncColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, uuid.UUID(nc.ID), uuid.UUID(nc.FichaID), nc.Descripcion, nc.AccionCorrectivaPropuesta, nc.FechaLimite,
		string(nc.EstadoSeguimiento), nc.ComentarioSeguimiento, nc.FechaSeguimiento, nullUser(nc.ActualizadoPor),
		uuid.UUID(nc.CreatedBy), nc.CreatedAt, nc.UpdatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return sentinel.ErrAlreadyUsed
		case postgres.IsForeignKeyViolation(err):
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert no conformidad: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, ncID id.NoConformidadID) (*models.NoConformidad, error) {
	exec := tx.Exec(ctx, s.db)
	nc, err := scanNoConformidad(exec.QueryRowContext(ctx, `SELECT `+ncColumns+` FROM no_conformidades WHERE id = $1`, uuid.UUID(ncID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find no conformidad: %w", err)
	}
	nc.Evidencias, err = s.ListEvidence(ctx, nc.ID)
	if err != nil {
		return nil, err
	}
	return nc, nil
}

func (s *PostgresStore) ListByFicha(ctx context.Context, fichaID id.FichaID) ([]*models.NoConformidad, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+ncColumns+` FROM no_conformidades WHERE ficha_id = $1 ORDER BY created_at`, uuid.UUID(fichaID))
	if err != nil {
		return nil, fmt.Errorf("list no conformidades: %w", err)
	}
	out := make([]*models.NoConformidad, 0)
	for rows.Next() {
		nc, err := scanNoConformidad(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan no conformidad: %w", err)
		}
		out = append(out, nc)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("list no conformidades: %w", err)
	}
	for _, nc := range out {
		if nc.Evidencias, err = s.ListEvidence(ctx, nc.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) UpdateFollowUp(ctx context.Context, nc *models.NoConformidad) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE no_conformidades
		SET estado_seguimiento = $2, comentario_seguimiento = $3, fecha_seguimiento = $4,
			actualizado_por = $5, updated_at = $6
		WHERE id = $1
	`, uuid.UUID(nc.ID), string(nc.EstadoSeguimiento), nc.ComentarioSeguimiento, nc.FechaSeguimiento,
		nullUser(nc.ActualizadoPor), nc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update follow-up: %w", err)
	}
	return requireRow(res)
}

const evidenceColumns = `id, no_conformidad_id, categoria, nombre, mime, tamano, hash, ruta, estado_subida, subido_por, created_at`

func (s *PostgresStore) AddEvidence(ctx context.Context, e *models.ArchivoNoConformidad) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO archivos_no_conformidad (`+evidenceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, uuid.UUID(e.ID), uuid.UUID(e.NoConformidadID), string(e.Categoria), e.Nombre, e.Mime, e.Tamano,
		e.Hash, e.Ruta, string(e.EstadoSubida), uuid.UUID(e.SubidoPor), e.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert evidencia: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindEvidence(ctx context.Context, evidenceID id.ArchivoID) (*models.ArchivoNoConformidad, error) {
	e, err := scanEvidence(tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+evidenceColumns+` FROM archivos_no_conformidad WHERE id = $1`, uuid.UUID(evidenceID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find evidencia: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListEvidence(ctx context.Context, ncID id.NoConformidadID) ([]models.ArchivoNoConformidad, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+evidenceColumns+` FROM archivos_no_conformidad WHERE no_conformidad_id = $1 ORDER BY created_at`,
		uuid.UUID(ncID))
	if err != nil {
		return nil, fmt.Errorf("list evidencias: %w", err)
	}
	defer rows.Close()
	out := make([]models.ArchivoNoConformidad, 0)
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidencia: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateEvidence(ctx context.Context, e *models.ArchivoNoConformidad) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE archivos_no_conformidad SET hash = $2, tamano = $3, estado_subida = $4 WHERE id = $1
	`, uuid.UUID(e.ID), e.Hash, e.Tamano, string(e.EstadoSubida))
	if err != nil {
		return fmt.Errorf("update evidencia: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteEvidence(ctx context.Context, evidenceID id.ArchivoID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM archivos_no_conformidad WHERE id = $1`, uuid.UUID(evidenceID))
	if err != nil {
		return fmt.Errorf("delete evidencia: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNoConformidad(row rowScanner) (*models.NoConformidad, error) {
	var (
		nc                        models.NoConformidad
		rawID, fichaID, createdBy uuid.UUID
		limite, seguimiento       id.Date
		estado                    string
		actor                     uuid.NullUUID
	)
	err := row.Scan(&rawID, &fichaID, &nc.Descripcion, &nc.AccionCorrectivaPropuesta, &limite, &estado,
		&nc.ComentarioSeguimiento, &seguimiento, &actor, &createdBy, &nc.CreatedAt, &nc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	nc.ID = id.NoConformidadID(rawID)
	nc.FichaID = id.FichaID(fichaID)
	nc.CreatedBy = id.UserID(createdBy)
	nc.EstadoSeguimiento = models.FollowUpState(estado)
	if !limite.IsZero() {
		nc.FechaLimite = &limite
	}
	if !seguimiento.IsZero() {
		nc.FechaSeguimiento = &seguimiento
	}
	if actor.Valid {
		u := id.UserID(actor.UUID)
		nc.ActualizadoPor = &u
	}
	return &nc, nil
}

func scanEvidence(row rowScanner) (*models.ArchivoNoConformidad, error) {
	var (
		e                      models.ArchivoNoConformidad
		rawID, ncID, subidoPor uuid.UUID
		categoria, estado      string
	)
	err := row.Scan(&rawID, &ncID, &categoria, &e.Nombre, &e.Mime, &e.Tamano, &e.Hash, &e.Ruta, &estado, &subidoPor, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.ID = id.ArchivoID(rawID)
	e.NoConformidadID = id.NoConformidadID(ncID)
	e.Categoria = models.Categoria(categoria)
	e.EstadoSubida = storage.UploadState(estado)
	e.SubidoPor = id.UserID(subidoPor)
	return &e, nil
}

func nullUser(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
