package models

import (
	"time"

	"github.com/shopspring/decimal"

	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
)

// EstadoAccion is the state of a corrective action carried over from a prior cycle.
type EstadoAccion string

const (
	AccionPendiente  EstadoAccion = "pendiente"
	AccionCompletado EstadoAccion = "completado"
)

type AccionCorrectiva struct {
	Numero         int          `json:"numero" validate:"gte=1"`
	Descripcion    string       `json:"descripcion" validate:"min=5,max=500"`
	Implementacion string       `json:"implementacion,omitempty" validate:"max=500"`
	FechaLimite    *id.Date     `json:"fecha_limite,omitempty"`
	Estado         EstadoAccion `json:"estado" validate:"omitempty,oneof=pendiente completado"`
}

type ActividadPecuaria struct {
	TipoGanado string `json:"tipo_ganado" validate:"min=1,max=100"`
	Cantidad   int    `json:"cantidad" validate:"gte=0,lte=10000"`
	Manejo     string `json:"manejo,omitempty" validate:"max=500"`
}

// DetalleCultivoParcela describes one crop on one parcel. ManejoCultivoMani is
// only accepted when the crop is the certifiable principal crop.
type DetalleCultivoParcela struct {
	ParcelaID         id.ParcelaID       `json:"parcela_id" validate:"required"`
	TipoCultivoID     id.TipoCultivoID   `json:"tipo_cultivo_id" validate:"required"`
	SuperficieHa      decimal.Decimal    `json:"superficie_ha" validate:"gte=0"`
	Variedad          string             `json:"variedad,omitempty" validate:"max=100"`
	ManejoCultivoMani *ManejoCultivoMani `json:"manejo_cultivo_mani,omitempty"`
}

type ManejoCultivoMani struct {
	TipoSemilla           string          `json:"tipo_semilla,omitempty" validate:"max=100"`
	FechaSiembra          *id.Date        `json:"fecha_siembra,omitempty"`
	ControlMalezas        string          `json:"control_malezas,omitempty" validate:"max=500"`
	ControlPlagas         string          `json:"control_plagas,omitempty" validate:"max=500"`
	AbonoOrganico         string          `json:"abono_organico,omitempty" validate:"max=500"`
	RendimientoEstimadoKg decimal.Decimal `json:"rendimiento_estimado_kg" validate:"gte=0"`
}

type CosechaVentas struct {
	TipoCultivoID id.TipoCultivoID `json:"tipo_cultivo_id" validate:"required"`
	ConsumoKg     decimal.Decimal  `json:"consumo_kg" validate:"gte=0"`
	SemillaKg     decimal.Decimal  `json:"semilla_kg" validate:"gte=0"`
	VentasKg      decimal.Decimal  `json:"ventas_kg" validate:"gte=0"`
	Destino       string           `json:"destino,omitempty" validate:"max=200"`
}

// TotalKg is the whole harvest accounted for by the breakdown.
func (c CosechaVentas) TotalKg() decimal.Decimal {
	return c.ConsumoKg.Add(c.SemillaKg).Add(c.VentasKg)
}

type PlanificacionSiembra struct {
	ParcelaID           id.ParcelaID         `json:"parcela_id" validate:"required"`
	SuperficieParcelaHa decimal.Decimal      `json:"superficie_parcela_ha" validate:"gt=0"`
	Cultivos            []CultivoPlanificado `json:"cultivos" validate:"dive"`
}

type CultivoPlanificado struct {
	TipoCultivoID id.TipoCultivoID `json:"tipo_cultivo_id" validate:"required"`
	SuperficieHa  decimal.Decimal  `json:"superficie_ha" validate:"gte=0"`
}

// TipoArchivo classifies attachments of a ficha.
type TipoArchivo string

const (
	ArchivoCroquis      TipoArchivo = "croquis"
	ArchivoFotografia   TipoArchivo = "fotografia"
	ArchivoDocumentoPDF TipoArchivo = "documento_pdf"
)

type ArchivoFicha struct {
	ID           id.ArchivoID        `json:"id"`
	FichaID      id.FichaID          `json:"ficha_id"`
	Tipo         TipoArchivo         `json:"tipo"`
	Nombre       string              `json:"nombre"`
	Mime         string              `json:"mime"`
	Tamano       int64               `json:"tamano"`
	Hash         string              `json:"hash,omitempty"`
	Ruta         string              `json:"ruta"`
	EstadoSubida storage.UploadState `json:"estado_subida"`
	CreatedAt    time.Time           `json:"created_at"`
}

// ArchivoInput is the metadata registered before the bytes are uploaded.
type ArchivoInput struct {
	Tipo   TipoArchivo `json:"tipo" validate:"required,oneof=croquis fotografia documento_pdf"`
	Nombre string      `json:"nombre" validate:"min=1,max=255"`
	Mime   string      `json:"mime" validate:"required,max=100"`
	Tamano int64       `json:"tamano" validate:"gt=0,lte=52428800"`
}
