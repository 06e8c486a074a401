package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agrocert/internal/reference/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
)

// PostgresStore reads lookup tables. It never writes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindComunidad(ctx context.Context, comunidadID id.ComunidadID) (*models.Comunidad, error) {
	var (
		c     models.Comunidad
		rawID uuid.UUID
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, nombre FROM comunidades WHERE id = $1`, uuid.UUID(comunidadID),
	).Scan(&rawID, &c.Nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find comunidad: %w", err)
	}
	c.ID = id.ComunidadID(rawID)
	return &c, nil
}

func (s *PostgresStore) ListComunidades(ctx context.Context) ([]models.Comunidad, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `SELECT id, nombre FROM comunidades ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list comunidades: %w", err)
	}
	defer rows.Close()

	var out []models.Comunidad
	for rows.Next() {
		var (
			c     models.Comunidad
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &c.Nombre); err != nil {
			return nil, fmt.Errorf("scan comunidad: %w", err)
		}
		c.ID = id.ComunidadID(rawID)
		out = append(out, c)
	}
	return out, rows.Err()
}

const productorColumns = `id, codigo, nombre, comunidad_id`

func (s *PostgresStore) FindProductorByCodigo(ctx context.Context, codigo string) (*models.Productor, error) {
	p, err := scanProductor(tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+productorColumns+` FROM productores WHERE codigo = $1`, codigo,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find productor by codigo: %w", err)
	}
	return p, nil
}

// ListProductores filters by community with a single array parameter; nil means all.
func (s *PostgresStore) ListProductores(ctx context.Context, comunidades []id.ComunidadID) ([]models.Productor, error) {
	query := `SELECT ` + productorColumns + ` FROM productores`
	var args []any
	if comunidades != nil {
		ids := make([]string, len(comunidades))
		for i, c := range comunidades {
			ids[i] = c.String()
		}
		query += ` WHERE comunidad_id = ANY($1::uuid[])`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY codigo`

	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list productores: %w", err)
	}
	defer rows.Close()

	out := make([]models.Productor, 0)
	for rows.Next() {
		p, err := scanProductor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan productor: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindParcela(ctx context.Context, parcelaID id.ParcelaID) (*models.Parcela, error) {
	var (
		p            models.Parcela
		rawID, owner uuid.UUID
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, productor_id, nombre, superficie_ha FROM parcelas WHERE id = $1`, uuid.UUID(parcelaID),
	).Scan(&rawID, &owner, &p.Nombre, &p.SuperficieHa)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find parcela: %w", err)
	}
	p.ID = id.ParcelaID(rawID)
	p.ProductorID = id.ProductorID(owner)
	return &p, nil
}

func (s *PostgresStore) FindTipoCultivo(ctx context.Context, tipoID id.TipoCultivoID) (*models.TipoCultivo, error) {
	var (
		t     models.TipoCultivo
		rawID uuid.UUID
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, nombre FROM tipos_cultivo WHERE id = $1`, uuid.UUID(tipoID),
	).Scan(&rawID, &t.Nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tipo cultivo: %w", err)
	}
	t.ID = id.TipoCultivoID(rawID)
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProductor(row rowScanner) (*models.Productor, error) {
	var (
		p                models.Productor
		rawID, comunidad uuid.UUID
	)
	if err := row.Scan(&rawID, &p.Codigo, &p.Nombre, &comunidad); err != nil {
		return nil, err
	}
	p.ID = id.ProductorID(rawID)
	p.ComunidadID = id.ComunidadID(comunidad)
	return &p, nil
}
