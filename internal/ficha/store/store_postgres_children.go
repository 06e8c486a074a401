package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agrocert/internal/ficha/models"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/tx"
)

// Array sections live in one table each, ordered by posicion.

func (s *PostgresStore) deleteChildren(ctx context.Context, exec tx.Executor, fichaID id.FichaID, r models.Replaced) error {
	tables := make([]string, 0, 5)
	if r.AccionesCorrectivas {
		tables = append(tables, "acciones_correctivas")
	}
	if r.ActividadesPecuarias {
		tables = append(tables, "actividades_pecuarias")
	}
	if r.DetallesCultivo {
		// manejo_cultivo_mani cascades from detalles_cultivo
		tables = append(tables, "detalles_cultivo")
	}
	if r.CosechaVentas {
		tables = append(tables, "cosecha_ventas")
	}
	if r.PlanificacionSiembra {
		tables = append(tables, "planificacion_siembra")
	}
	for _, table := range tables {
		if _, err := exec.ExecContext(ctx, `DELETE FROM `+table+` WHERE ficha_id = $1`, uuid.UUID(fichaID)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *PostgresStore) insertChildren(ctx context.Context, exec tx.Executor, f *models.Ficha, r models.Replaced) error {
	fichaID := uuid.UUID(f.ID)
	if r.AccionesCorrectivas {
		for i, a := range f.AccionesCorrectivas {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO acciones_correctivas (ficha_id, posicion, numero, descripcion, implementacion, fecha_limite, estado)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, fichaID, i, a.Numero, a.Descripcion, a.Implementacion, a.FechaLimite, string(a.Estado))
			if err != nil {
				return fmt.Errorf("insert accion correctiva: %w", err)
			}
		}
	}
	if r.ActividadesPecuarias {
		for i, a := range f.ActividadesPecuarias {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO actividades_pecuarias (ficha_id, posicion, tipo_ganado, cantidad, manejo)
				VALUES ($1, $2, $3, $4, $5)
			`, fichaID, i, a.TipoGanado, a.Cantidad, a.Manejo)
			if err != nil {
				return fmt.Errorf("insert actividad pecuaria: %w", err)
			}
		}
	}
	if r.DetallesCultivo {
		for i, d := range f.DetallesCultivo {
			var detalleID int64
			err := exec.QueryRowContext(ctx, `
				INSERT INTO detalles_cultivo (ficha_id, posicion, parcela_id, tipo_cultivo_id, superficie_ha, variedad)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`, fichaID, i, uuid.UUID(d.ParcelaID), uuid.UUID(d.TipoCultivoID), d.SuperficieHa, d.Variedad).Scan(&detalleID)
			if err != nil {
				return fmt.Errorf("insert detalle cultivo: %w", err)
			}
			if m := d.ManejoCultivoMani; m != nil {
				_, err := exec.ExecContext(ctx, `
					INSERT INTO manejo_cultivo_mani (detalle_id, tipo_semilla, fecha_siembra, control_malezas,
						control_plagas, abono_organico, rendimiento_estimado_kg)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
				`, detalleID, m.TipoSemilla, m.FechaSiembra, m.ControlMalezas, m.ControlPlagas,
					m.AbonoOrganico, m.RendimientoEstimadoKg)
				if err != nil {
					return fmt.Errorf("insert manejo cultivo mani: %w", err)
				}
			}
		}
	}
	if r.CosechaVentas {
		for i, c := range f.CosechaVentas {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO cosecha_ventas (ficha_id, posicion, tipo_cultivo_id, consumo_kg, semilla_kg, ventas_kg, destino)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, fichaID, i, uuid.UUID(c.TipoCultivoID), c.ConsumoKg, c.SemillaKg, c.VentasKg, c.Destino)
			if err != nil {
				return fmt.Errorf("insert cosecha ventas: %w", err)
			}
		}
	}
	if r.PlanificacionSiembra {
		for i, p := range f.PlanificacionSiembra {
			cultivos, err := json.Marshal(p.Cultivos)
			if err != nil {
				return fmt.Errorf("marshal cultivos planificados: %w", err)
			}
			_, err = exec.ExecContext(ctx, `
				INSERT INTO planificacion_siembra (ficha_id, posicion, parcela_id, superficie_parcela_ha, cultivos)
				VALUES ($1, $2, $3, $4, $5)
			`, fichaID, i, uuid.UUID(p.ParcelaID), p.SuperficieParcelaHa, cultivos)
			if err != nil {
				return fmt.Errorf("insert planificacion siembra: %w", err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) loadChildren(ctx context.Context, exec tx.Executor, f *models.Ficha) error {
	fichaID := uuid.UUID(f.ID)

	rows, err := exec.QueryContext(ctx, `
		SELECT numero, descripcion, implementacion, fecha_limite, estado
		FROM acciones_correctivas WHERE ficha_id = $1 ORDER BY posicion
	`, fichaID)
	if err != nil {
		return fmt.Errorf("load acciones correctivas: %w", err)
	}
	f.AccionesCorrectivas = []models.AccionCorrectiva{}
	for rows.Next() {
		var (
			a      models.AccionCorrectiva
			limite id.Date
			estado string
		)
		if err := rows.Scan(&a.Numero, &a.Descripcion, &a.Implementacion, &limite, &estado); err != nil {
			rows.Close()
			return fmt.Errorf("scan accion correctiva: %w", err)
		}
		a.FechaLimite = optionalDate(limite)
		a.Estado = models.EstadoAccion(estado)
		f.AccionesCorrectivas = append(f.AccionesCorrectivas, a)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT tipo_ganado, cantidad, manejo
		FROM actividades_pecuarias WHERE ficha_id = $1 ORDER BY posicion
	`, fichaID)
	if err != nil {
		return fmt.Errorf("load actividades pecuarias: %w", err)
	}
	f.ActividadesPecuarias = []models.ActividadPecuaria{}
	for rows.Next() {
		var a models.ActividadPecuaria
		if err := rows.Scan(&a.TipoGanado, &a.Cantidad, &a.Manejo); err != nil {
			rows.Close()
			return fmt.Errorf("scan actividad pecuaria: %w", err)
		}
		f.ActividadesPecuarias = append(f.ActividadesPecuarias, a)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT d.parcela_id, d.tipo_cultivo_id, d.superficie_ha, d.variedad,
			m.detalle_id IS NOT NULL, COALESCE(m.tipo_semilla, ''), m.fecha_siembra,
			COALESCE(m.control_malezas, ''), COALESCE(m.control_plagas, ''),
			COALESCE(m.abono_organico, ''), COALESCE(m.rendimiento_estimado_kg, 0)
		FROM detalles_cultivo d
		LEFT JOIN manejo_cultivo_mani m ON m.detalle_id = d.id
		WHERE d.ficha_id = $1 ORDER BY d.posicion
	`, fichaID)
	if err != nil {
		return fmt.Errorf("load detalles cultivo: %w", err)
	}
	f.DetallesCultivo = []models.DetalleCultivoParcela{}
	for rows.Next() {
		var (
			d                models.DetalleCultivoParcela
			parcela, cultivo uuid.UUID
			hasManejo        bool
			m                models.ManejoCultivoMani
			siembra          id.Date
			rendimiento      decimal.Decimal
		)
		err := rows.Scan(&parcela, &cultivo, &d.SuperficieHa, &d.Variedad,
			&hasManejo, &m.TipoSemilla, &siembra, &m.ControlMalezas, &m.ControlPlagas,
			&m.AbonoOrganico, &rendimiento)
		if err != nil {
			rows.Close()
			return fmt.Errorf("scan detalle cultivo: %w", err)
		}
		d.ParcelaID = id.ParcelaID(parcela)
		d.TipoCultivoID = id.TipoCultivoID(cultivo)
		if hasManejo {
			m.FechaSiembra = optionalDate(siembra)
			m.RendimientoEstimadoKg = rendimiento
			d.ManejoCultivoMani = &m
		}
		f.DetallesCultivo = append(f.DetallesCultivo, d)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT tipo_cultivo_id, consumo_kg, semilla_kg, ventas_kg, destino
		FROM cosecha_ventas WHERE ficha_id = $1 ORDER BY posicion
	`, fichaID)
	if err != nil {
		return fmt.Errorf("load cosecha ventas: %w", err)
	}
	f.CosechaVentas = []models.CosechaVentas{}
	for rows.Next() {
		var (
			c       models.CosechaVentas
			cultivo uuid.UUID
		)
		if err := rows.Scan(&cultivo, &c.ConsumoKg, &c.SemillaKg, &c.VentasKg, &c.Destino); err != nil {
			rows.Close()
			return fmt.Errorf("scan cosecha ventas: %w", err)
		}
		c.TipoCultivoID = id.TipoCultivoID(cultivo)
		f.CosechaVentas = append(f.CosechaVentas, c)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT parcela_id, superficie_parcela_ha, cultivos
		FROM planificacion_siembra WHERE ficha_id = $1 ORDER BY posicion
	`, fichaID)
	if err != nil {
		return fmt.Errorf("load planificacion siembra: %w", err)
	}
	f.PlanificacionSiembra = []models.PlanificacionSiembra{}
	for rows.Next() {
		var (
			p        models.PlanificacionSiembra
			parcela  uuid.UUID
			cultivos []byte
		)
		if err := rows.Scan(&parcela, &p.SuperficieParcelaHa, &cultivos); err != nil {
			rows.Close()
			return fmt.Errorf("scan planificacion siembra: %w", err)
		}
		p.ParcelaID = id.ParcelaID(parcela)
		if err := json.Unmarshal(cultivos, &p.Cultivos); err != nil {
			rows.Close()
			return fmt.Errorf("decode cultivos planificados: %w", err)
		}
		f.PlanificacionSiembra = append(f.PlanificacionSiembra, p)
	}
	return closeRows(rows)
}

const archivoColumns = `id, ficha_id, tipo, nombre, mime, tamano, hash, ruta, estado_subida, created_at`

func (s *PostgresStore) AddArchivo(ctx context.Context, a *models.ArchivoFicha) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO archivos_ficha (`+archivoColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE EXISTS (SELECT 1 FROM fichas WHERE id = $2)
	`, uuid.UUID(a.ID), uuid.UUID(a.FichaID), string(a.Tipo), a.Nombre, a.Mime, a.Tamano,
		a.Hash, a.Ruta, string(a.EstadoSubida), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert archivo: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) FindArchivo(ctx context.Context, archivoID id.ArchivoID) (*models.ArchivoFicha, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+archivoColumns+` FROM archivos_ficha WHERE id = $1`, uuid.UUID(archivoID))
	a, err := scanArchivo(row)
	if err != nil {
		return nil, notFound(err, "find archivo")
	}
	return a, nil
}

func (s *PostgresStore) UpdateArchivo(ctx context.Context, a *models.ArchivoFicha) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE archivos_ficha SET hash = $2, ruta = $3, estado_subida = $4, tamano = $5
		WHERE id = $1
	`, uuid.UUID(a.ID), a.Hash, a.Ruta, string(a.EstadoSubida), a.Tamano)
	if err != nil {
		return fmt.Errorf("update archivo: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) listArchivos(ctx context.Context, exec tx.Executor, fichaID id.FichaID) ([]models.ArchivoFicha, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT `+archivoColumns+` FROM archivos_ficha WHERE ficha_id = $1 ORDER BY created_at`, uuid.UUID(fichaID))
	if err != nil {
		return nil, fmt.Errorf("list archivos: %w", err)
	}
	defer rows.Close()
	out := make([]models.ArchivoFicha, 0)
	for rows.Next() {
		a, err := scanArchivo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archivo: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanArchivo(row rowScanner) (*models.ArchivoFicha, error) {
	var (
		a              models.ArchivoFicha
		rawID, fichaID uuid.UUID
		tipo, estado   string
	)
	err := row.Scan(&rawID, &fichaID, &tipo, &a.Nombre, &a.Mime, &a.Tamano, &a.Hash, &a.Ruta, &estado, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.ID = id.ArchivoID(rawID)
	a.FichaID = id.FichaID(fichaID)
	a.Tipo = models.TipoArchivo(tipo)
	a.EstadoSubida = storage.UploadState(estado)
	return &a, nil
}

func optionalDate(d id.Date) *id.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

func closeRows(rows interface {
	Err() error
	Close() error
}) error {
	err := rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}
