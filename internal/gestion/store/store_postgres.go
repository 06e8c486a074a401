package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agrocert/internal/gestion/models"
	"agrocert/internal/platform/postgres"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
)

// PostgresStore persists gestiones in PostgreSQL. The single-active invariant
// is backed by the partial unique index gestiones_single_active.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const gestionColumns = `id, year, description, state, is_soft_active, is_system_active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, g *models.Gestion) error {
	query := `
		INSERT INTO gestiones (` + gestionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(g.ID), g.Year, g.Description, string(g.State),
		g.IsSoftActive, g.IsSystemActive, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create gestion: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error) {
	query := `SELECT ` + gestionColumns + ` FROM gestiones WHERE id = $1`
	g, err := scanGestion(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(gestionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find gestion by id: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) FindActive(ctx context.Context) (*models.Gestion, error) {
	query := `SELECT ` + gestionColumns + ` FROM gestiones WHERE is_system_active`
	g, err := scanGestion(tx.Exec(ctx, s.db).QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active gestion: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Gestion, error) {
	query := `SELECT ` + gestionColumns + ` FROM gestiones ORDER BY year DESC`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list gestiones: %w", err)
	}
	defer rows.Close()

	var out []*models.Gestion
	for rows.Next() {
		g, err := scanGestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gestion: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list gestiones: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, g *models.Gestion) error {
	query := `
		UPDATE gestiones
		SET description = $2, state = $3, is_soft_active = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(g.ID), g.Description, string(g.State), g.IsSoftActive, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update gestion: %w", err)
	}
	return requireRow(res)
}

// SetSystemActive flips the active flag for every affected row in a single
// statement: the target becomes active, everything else inactive.
func (s *PostgresStore) SetSystemActive(ctx context.Context, gestionID id.GestionID, now time.Time) error {
	query := `
		UPDATE gestiones
		SET is_system_active = (id = $1),
			state = CASE WHEN id = $1 THEN 'activa' ELSE state END,
			updated_at = $2
		WHERE is_system_active OR id = $1
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, uuid.UUID(gestionID), now)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("set system active gestion: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGestion(row rowScanner) (*models.Gestion, error) {
	var (
		g       models.Gestion
		rawID   uuid.UUID
		state   string
		descrip sql.NullString
	)
	if err := row.Scan(&rawID, &g.Year, &descrip, &state, &g.IsSoftActive, &g.IsSystemActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.ID = id.GestionID(rawID)
	g.State = models.State(state)
	g.Description = descrip.String
	return &g, nil
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
