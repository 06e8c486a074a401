//go:build integration

package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fixture holds the reference rows a ficha needs for its foreign keys.
type Fixture struct {
	ComunidadID uuid.UUID
	ProductorID uuid.UUID
	Codigo      string
	GestionID   uuid.UUID
}

// SeedFixture inserts a comunidad, a productor in it and a planned gestion
// for the given year.
func (p *PostgresContainer) SeedFixture(ctx context.Context, year int) (*Fixture, error) {
	f := &Fixture{
		ComunidadID: uuid.New(),
		ProductorID: uuid.New(),
		GestionID:   uuid.New(),
	}
	f.Codigo = "P-" + f.ProductorID.String()[:8]
	now := time.Now()

	if _, err := p.DB.ExecContext(ctx, `INSERT INTO comunidades (id, nombre) VALUES ($1, $2)`, f.ComunidadID, "Comunidad "+f.Codigo); err != nil {
		return nil, fmt.Errorf("seed comunidad: %w", err)
	}
	if _, err := p.DB.ExecContext(ctx, `INSERT INTO productores (id, codigo, nombre, comunidad_id) VALUES ($1, $2, $3, $4)`,
		f.ProductorID, f.Codigo, "Productor "+f.Codigo, f.ComunidadID); err != nil {
		return nil, fmt.Errorf("seed productor: %w", err)
	}
	if _, err := p.DB.ExecContext(ctx, `
		INSERT INTO gestiones (id, year, state, is_soft_active, is_system_active, created_at, updated_at)
		VALUES ($1, $2, 'planificada', TRUE, FALSE, $3, $3)
		ON CONFLICT (year) DO NOTHING`, f.GestionID, year, now); err != nil {
		return nil, fmt.Errorf("seed gestion: %w", err)
	}
	if err := p.DB.QueryRowContext(ctx, `SELECT id FROM gestiones WHERE year = $1`, year).Scan(&f.GestionID); err != nil {
		return nil, fmt.Errorf("load gestion: %w", err)
	}
	return f, nil
}

// SeedFicha inserts a borrador ficha for the fixture and returns its id.
func (p *PostgresContainer) SeedFicha(ctx context.Context, f *Fixture) (uuid.UUID, error) {
	fichaID := uuid.New()
	now := time.Now()
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO fichas (id, productor_id, productor_codigo, comunidad_id, gestion_id, fecha_inspeccion,
			inspector, estado, resultado, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'Ing. Mamani', 'borrador', 'pendiente', $7, $8, $8)`,
		fichaID, f.ProductorID, f.Codigo, f.ComunidadID, f.GestionID, now.Format(time.DateOnly), uuid.New(), now)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed ficha: %w", err)
	}
	return fichaID, nil
}
