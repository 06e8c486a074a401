package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agrocert/internal/ficha/models"
	"agrocert/internal/platform/postgres"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
	"agrocert/pkg/platform/tx"
)

// PostgresStore persists the ficha aggregate across the fichas table, the
// JSONB compliance sections and one table per array section. Multi-table
// writes expect to run inside tx.Runner.RunInTx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const fichaColumns = `id, productor_id, productor_codigo, comunidad_id, gestion_id, fecha_inspeccion,
	inspector, estado, resultado, comentarios_decision, decidido_por, fecha_decision,
	created_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, f *models.Ficha) error {
	exec := tx.Exec(ctx, s.db)
	query := `
		INSERT INTO fichas (` + fichaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := exec.ExecContext(ctx, query,
		uuid.UUID(f.ID), uuid.UUID(f.ProductorID), f.ProductorCodigo, uuid.UUID(f.ComunidadID),
		uuid.UUID(f.GestionID), f.FechaInspeccion, f.Inspector, string(f.Estado), string(f.Resultado),
		f.ComentariosDecision, nullUser(f.DecididoPor), f.FechaDecision,
		uuid.UUID(f.CreatedBy), f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert ficha: %w", err)
	}
	if err := s.upsertSections(ctx, exec, f); err != nil {
		return err
	}
	all := models.Replaced{
		AccionesCorrectivas:  true,
		ActividadesPecuarias: true,
		DetallesCultivo:      true,
		CosechaVentas:        true,
		PlanificacionSiembra: true,
	}
	return s.insertChildren(ctx, exec, f, all)
}

// FindByID loads the full aggregate. Inside a transaction the header row is
// locked until commit, so workflow writes on the same ficha serialize.
func (s *PostgresStore) FindByID(ctx context.Context, fichaID id.FichaID) (*models.Ficha, error) {
	exec := tx.Exec(ctx, s.db)
	query := `SELECT ` + fichaColumns + ` FROM fichas WHERE id = $1`
	if _, inTx := tx.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	f, err := scanFicha(exec.QueryRowContext(ctx, query, uuid.UUID(fichaID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ficha: %w", err)
	}
	if err := s.loadSections(ctx, exec, map[id.FichaID]*models.Ficha{f.ID: f}); err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, exec, f); err != nil {
		return nil, err
	}
	archivos, err := s.listArchivos(ctx, exec, f.ID)
	if err != nil {
		return nil, err
	}
	f.Archivos = archivos
	return f, nil
}

// List loads headers and compliance sections. Array sections are only loaded by FindByID.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Ficha, error) {
	exec := tx.Exec(ctx, s.db)
	var gestion any
	if filter.GestionID != nil {
		gestion = uuid.UUID(*filter.GestionID)
	}
	var comunidades []string
	if filter.Comunidades != nil {
		comunidades = make([]string, len(filter.Comunidades))
		for i, c := range filter.Comunidades {
			comunidades[i] = c.String()
		}
	}
	query := `
		SELECT ` + fichaColumns + ` FROM fichas
		WHERE ($1::uuid IS NULL OR gestion_id = $1)
		  AND ($2 = '' OR estado = $2)
		  AND ($3 = '' OR productor_codigo = $3)
		  AND ($4::uuid[] IS NULL OR comunidad_id = ANY($4::uuid[]))
		ORDER BY created_at DESC
	`
	rows, err := exec.QueryContext(ctx, query, gestion, string(filter.Estado), filter.ProductorCodigo, pq.Array(comunidades))
	if err != nil {
		return nil, fmt.Errorf("list fichas: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Ficha, 0)
	byID := make(map[id.FichaID]*models.Ficha)
	for rows.Next() {
		f, err := scanFicha(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ficha: %w", err)
		}
		out = append(out, f)
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fichas: %w", err)
	}
	if len(byID) == 0 {
		return out, nil
	}
	if err := s.loadSections(ctx, exec, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the header and sections, then deletes and re-inserts every
// replaced array section. Only a borrador row is written; a ficha that left
// borrador after it was loaded yields ErrInvalidState.
func (s *PostgresStore) Update(ctx context.Context, f *models.Ficha, replaced models.Replaced) error {
	exec := tx.Exec(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE fichas SET fecha_inspeccion = $2, inspector = $3, updated_at = $4
		WHERE id = $1 AND estado = $5
	`, uuid.UUID(f.ID), f.FechaInspeccion, f.Inspector, f.UpdatedAt, string(models.EstadoBorrador))
	if err != nil {
		return fmt.Errorf("update ficha: %w", err)
	}
	if err := s.requireGuardedRow(ctx, res, f.ID); err != nil {
		return err
	}
	if err := s.upsertSections(ctx, exec, f); err != nil {
		return err
	}
	if err := s.deleteChildren(ctx, exec, f.ID, replaced); err != nil {
		return err
	}
	return s.insertChildren(ctx, exec, f, replaced)
}

// UpdateState persists a workflow transition guarded on the current state,
// so two concurrent decisions cannot both succeed.
func (s *PostgresStore) UpdateState(ctx context.Context, f *models.Ficha, from models.Estado) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE fichas
		SET estado = $3, resultado = $4, comentarios_decision = $5, decidido_por = $6,
			fecha_decision = $7, updated_at = $8
		WHERE id = $1 AND estado = $2
	`, uuid.UUID(f.ID), string(from), string(f.Estado), string(f.Resultado), f.ComentariosDecision,
		nullUser(f.DecididoPor), f.FechaDecision, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update ficha state: %w", err)
	}
	return s.requireGuardedRow(ctx, res, f.ID)
}

// requireGuardedRow tells a missing ficha apart from one whose state guard failed.
func (s *PostgresStore) requireGuardedRow(ctx context.Context, res sql.Result, fichaID id.FichaID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	err = tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM fichas WHERE id = $1)`, uuid.UUID(fichaID)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check ficha: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// Delete removes the ficha; child tables cascade.
func (s *PostgresStore) Delete(ctx context.Context, fichaID id.FichaID) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM fichas WHERE id = $1`, uuid.UUID(fichaID))
	if err != nil {
		return fmt.Errorf("delete ficha: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) upsertSections(ctx context.Context, exec tx.Executor, f *models.Ficha) error {
	sections := map[string]any{}
	if f.RevisionDocumentacion != nil {
		sections[models.SectionRevisionDocumentacion] = f.RevisionDocumentacion
	}
	if f.EvaluacionMitigacion != nil {
		sections[models.SectionEvaluacionMitigacion] = f.EvaluacionMitigacion
	}
	if f.EvaluacionPoscosecha != nil {
		sections[models.SectionEvaluacionPoscosecha] = f.EvaluacionPoscosecha
	}
	if f.EvaluacionConocimientoNormas != nil {
		sections[models.SectionEvaluacionConocimientoNormas] = f.EvaluacionConocimientoNormas
	}
	for key, section := range sections {
		payload, err := json.Marshal(section)
		if err != nil {
			return fmt.Errorf("marshal section %s: %w", key, err)
		}
		_, err = exec.ExecContext(ctx, `
			INSERT INTO ficha_secciones (ficha_id, seccion, datos)
			VALUES ($1, $2, $3)
			ON CONFLICT (ficha_id, seccion) DO UPDATE SET datos = EXCLUDED.datos
		`, uuid.UUID(f.ID), key, payload)
		if err != nil {
			return fmt.Errorf("upsert section %s: %w", key, err)
		}
	}
	return nil
}

func (s *PostgresStore) loadSections(ctx context.Context, exec tx.Executor, fichas map[id.FichaID]*models.Ficha) error {
	ids := make([]string, 0, len(fichas))
	for fichaID := range fichas {
		ids = append(ids, fichaID.String())
	}
	rows, err := exec.QueryContext(ctx,
		`SELECT ficha_id, seccion, datos FROM ficha_secciones WHERE ficha_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rawID   uuid.UUID
			seccion string
			datos   []byte
		)
		if err := rows.Scan(&rawID, &seccion, &datos); err != nil {
			return fmt.Errorf("scan section: %w", err)
		}
		f, ok := fichas[id.FichaID(rawID)]
		if !ok {
			continue
		}
		if err := decodeSection(f, seccion, datos); err != nil {
			return err
		}
	}
	return rows.Err()
}

func decodeSection(f *models.Ficha, seccion string, datos []byte) error {
	var target any
	switch seccion {
	case models.SectionRevisionDocumentacion:
		f.RevisionDocumentacion = &models.RevisionDocumentacion{}
		target = f.RevisionDocumentacion
	case models.SectionEvaluacionMitigacion:
		f.EvaluacionMitigacion = &models.EvaluacionMitigacion{}
		target = f.EvaluacionMitigacion
	case models.SectionEvaluacionPoscosecha:
		f.EvaluacionPoscosecha = &models.EvaluacionPoscosecha{}
		target = f.EvaluacionPoscosecha
	case models.SectionEvaluacionConocimientoNormas:
		f.EvaluacionConocimientoNormas = &models.EvaluacionConocimientoNormas{}
		target = f.EvaluacionConocimientoNormas
	default:
		return fmt.Errorf("unknown section %q", seccion)
	}
	if err := json.Unmarshal(datos, target); err != nil {
		return fmt.Errorf("decode section %s: %w", seccion, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFicha(row rowScanner) (*models.Ficha, error) {
	var (
		f                                    models.Ficha
		rawID, productor, comunidad, gestion uuid.UUID
		createdBy                            uuid.UUID
		estado, resultado                    string
		decididoPor                          uuid.NullUUID
		fechaDecision                        sql.NullTime
	)
	err := row.Scan(&rawID, &productor, &f.ProductorCodigo, &comunidad, &gestion, &f.FechaInspeccion,
		&f.Inspector, &estado, &resultado, &f.ComentariosDecision, &decididoPor, &fechaDecision,
		&createdBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.ID = id.FichaID(rawID)
	f.ProductorID = id.ProductorID(productor)
	f.ComunidadID = id.ComunidadID(comunidad)
	f.GestionID = id.GestionID(gestion)
	f.CreatedBy = id.UserID(createdBy)
	f.Estado = models.Estado(estado)
	f.Resultado = models.Resultado(resultado)
	if decididoPor.Valid {
		u := id.UserID(decididoPor.UUID)
		f.DecididoPor = &u
	}
	if fechaDecision.Valid {
		t := fechaDecision.Time
		f.FechaDecision = &t
	}
	return &f, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
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
