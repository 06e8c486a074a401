package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agrocert/internal/access"
	"agrocert/internal/platform/postgres"
	"agrocert/internal/usuario/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
)

// PostgresStore keeps community assignments inline as a uuid[] column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const usuarioColumns = `id, email, nombre, rol, comunidades, activo, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u *models.Usuario) error {
	query := `INSERT INTO usuarios (` + usuarioColumns + `) VALUES ($1, $2, $3, $4, $5::uuid[], $6, $7, $8)`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Email, u.Nombre, string(u.Rol), comunidadArray(u.Comunidades),
		u.Activo, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create usuario: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	u, err := scanUsuario(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find usuario: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios ORDER BY email`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Usuario, 0)
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, u *models.Usuario) error {
	query := `
		UPDATE usuarios
		SET nombre = $2, rol = $3, comunidades = $4::uuid[], activo = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Nombre, string(u.Rol), comunidadArray(u.Comunidades), u.Activo, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUsuario(row rowScanner) (*models.Usuario, error) {
	var (
		u           models.Usuario
		rawID       uuid.UUID
		rol         string
		comunidades pq.StringArray
	)
	if err := row.Scan(&rawID, &u.Email, &u.Nombre, &rol, &comunidades, &u.Activo, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(rawID)
	u.Rol = access.Role(rol)
	u.Comunidades = make([]id.ComunidadID, 0, len(comunidades))
	for _, raw := range comunidades {
		c, err := id.ParseComunidadID(raw)
		if err != nil {
			return nil, err
		}
		u.Comunidades = append(u.Comunidades, c)
	}
	return &u, nil
}

func comunidadArray(ids []id.ComunidadID) any {
	out := make([]string, len(ids))
	for i, c := range ids {
		out[i] = c.String()
	}
	return pq.Array(out)
}
