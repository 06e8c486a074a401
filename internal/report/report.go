// Package report builds compliance tallies over the fichas of a gestion and
// exports them as a spreadsheet.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"agrocert/internal/access"
	fmodels "agrocert/internal/ficha/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

// Fichas lists the fichas visible to the caller. Community scoping and the
// active-gestion default are applied by the implementation.
type Fichas interface {
	List(ctx context.Context, filter fmodels.ListFilter) ([]*fmodels.View, error)
}

// Row is one ficha's tally per compliance section.
type Row struct {
	FichaID         id.FichaID               `json:"ficha_id"`
	ProductorCodigo string                   `json:"productor_codigo"`
	Estado          fmodels.Estado           `json:"estado"`
	Resultado       fmodels.Resultado        `json:"resultado_certificacion"`
	Secciones       map[string]fmodels.Tally `json:"secciones"`
	Total           fmodels.Tally            `json:"total"`
}

type Summary struct {
	Fichas    int                      `json:"fichas"`
	Secciones map[string]fmodels.Tally `json:"secciones"`
	Total     fmodels.Tally            `json:"total"`
	Rows      []Row                    `json:"rows"`
}

var sectionOrder = []string{
	fmodels.SectionRevisionDocumentacion,
	fmodels.SectionEvaluacionMitigacion,
	fmodels.SectionEvaluacionPoscosecha,
	fmodels.SectionEvaluacionConocimientoNormas,
}

type Service struct {
	fichas Fichas
	logger *slog.Logger
}

func New(fichas Fichas, logger *slog.Logger) *Service {
	return &Service{fichas: fichas, logger: logger}
}

// Compliance tallies every visible ficha of the gestion, the active one when gestionID is nil.
func (s *Service) Compliance(ctx context.Context, gestionID *id.GestionID) (*Summary, error) {
	if err := access.RequirePermission(access.IdentityFrom(ctx), access.PermReporteExport); err != nil {
		return nil, err
	}
	views, err := s.fichas.List(ctx, fmodels.ListFilter{GestionID: gestionID})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Fichas:    len(views),
		Secciones: make(map[string]fmodels.Tally, len(sectionOrder)),
		Rows:      make([]Row, 0, len(views)),
	}
	for _, v := range views {
		row := Row{
			FichaID:         v.ID,
			ProductorCodigo: v.ProductorCodigo,
			Estado:          v.Estado,
			Resultado:       v.Resultado,
			Secciones:       sectionTallies(v.Secciones),
		}
		for _, name := range sectionOrder {
			t := row.Secciones[name]
			row.Total = row.Total.Add(t)
			summary.Secciones[name] = summary.Secciones[name].Add(t)
		}
		summary.Total = summary.Total.Add(row.Total)
		summary.Rows = append(summary.Rows, row)
	}
	return summary, nil
}

func sectionTallies(sec fmodels.Secciones) map[string]fmodels.Tally {
	out := make(map[string]fmodels.Tally, len(sectionOrder))
	if sec.RevisionDocumentacion != nil {
		out[fmodels.SectionRevisionDocumentacion] = sec.RevisionDocumentacion.Tally()
	}
	if sec.EvaluacionMitigacion != nil {
		out[fmodels.SectionEvaluacionMitigacion] = sec.EvaluacionMitigacion.Tally()
	}
	if sec.EvaluacionPoscosecha != nil {
		out[fmodels.SectionEvaluacionPoscosecha] = sec.EvaluacionPoscosecha.Tally()
	}
	if sec.EvaluacionConocimientoNormas != nil {
		out[fmodels.SectionEvaluacionConocimientoNormas] = sec.EvaluacionConocimientoNormas.Tally()
	}
	return out
}

const (
	sheetFichas  = "Fichas"
	sheetResumen = "Resumen"
)

// Export renders the compliance summary as an xlsx workbook with one row per
// ficha and a per-section totals sheet.
func (s *Service) Export(ctx context.Context, gestionID *id.GestionID) ([]byte, error) {
	summary, err := s.Compliance(ctx, gestionID)
	if err != nil {
		return nil, err
	}
	data, err := render(summary)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render report")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "compliance report exported", "fichas", summary.Fichas, "bytes", len(data))
	}
	return data, nil
}

func render(summary *Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetFichas); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetResumen); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	fichaHeader := []any{"Productor", "Estado", "Resultado"}
	for _, name := range sectionOrder {
		fichaHeader = append(fichaHeader, name+" cumple", name+" parcial", name+" no_cumple", name+" no_aplica")
	}
	fichaHeader = append(fichaHeader, "Total cumple", "Total parcial", "Total no_cumple", "Total no_aplica")
	if err := writeRow(f, sheetFichas, 1, fichaHeader, header); err != nil {
		return nil, err
	}
	for i, row := range summary.Rows {
		values := []any{row.ProductorCodigo, string(row.Estado), string(row.Resultado)}
		for _, name := range sectionOrder {
			values = append(values, tallyCells(row.Secciones[name])...)
		}
		values = append(values, tallyCells(row.Total)...)
		if err := writeRow(f, sheetFichas, i+2, values, 0); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, sheetResumen, 1, []any{"Seccion", "cumple", "parcial", "no_cumple", "no_aplica"}, header); err != nil {
		return nil, err
	}
	for i, name := range sectionOrder {
		values := append([]any{name}, tallyCells(summary.Secciones[name])...)
		if err := writeRow(f, sheetResumen, i+2, values, 0); err != nil {
			return nil, err
		}
	}
	totals := append([]any{"total"}, tallyCells(summary.Total)...)
	if err := writeRow(f, sheetResumen, len(sectionOrder)+2, totals, header); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	if style == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func tallyCells(t fmodels.Tally) []any {
	return []any{t.Cumple, t.Parcial, t.NoCumple, t.NoAplica}
}
