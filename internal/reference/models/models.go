// Package models holds the read-only lookup records the inspection workflow
// resolves against. None of them carries business rules.
package models

import (
	"github.com/shopspring/decimal"

	id "agrocert/pkg/domain"
)

type Comunidad struct {
	ID     id.ComunidadID `json:"id"`
	Nombre string         `json:"nombre"`
}

type Productor struct {
	ID          id.ProductorID `json:"id"`
	Codigo      string         `json:"codigo"`
	Nombre      string         `json:"nombre"`
	ComunidadID id.ComunidadID `json:"comunidad_id"`
}

type Parcela struct {
	ID           id.ParcelaID    `json:"id"`
	ProductorID  id.ProductorID  `json:"productor_id"`
	Nombre       string          `json:"nombre"`
	SuperficieHa decimal.Decimal `json:"superficie_ha"`
}

type TipoCultivo struct {
	ID     id.TipoCultivoID `json:"id"`
	Nombre string           `json:"nombre"`
}
