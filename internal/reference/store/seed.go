package store

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agrocert/internal/reference/models"
	id "agrocert/pkg/domain"
)

// Demo identifies the reference rows SeedDemo inserts.
type Demo struct {
	ComunidadID     id.ComunidadID
	ProductorCodigo string
	ParcelaID       id.ParcelaID
	PrincipalID     id.TipoCultivoID
}

// SeedDemo loads one comunidad with a productor, a parcela and the principal
// crop, so an in-memory deployment can record fichas without a database.
func SeedDemo(s *InMemory, principalCultivo string) Demo {
	comunidad := models.Comunidad{ID: id.ComunidadID(uuid.New()), Nombre: "Comunidad Demo"}
	productor := models.Productor{
		ID:          id.ProductorID(uuid.New()),
		Codigo:      "DEMO-001",
		Nombre:      "Productor Demo",
		ComunidadID: comunidad.ID,
	}
	parcela := models.Parcela{
		ID:           id.ParcelaID(uuid.New()),
		ProductorID:  productor.ID,
		Nombre:       "Parcela 1",
		SuperficieHa: decimal.RequireFromString("1.5"),
	}
	cultivo := models.TipoCultivo{ID: id.TipoCultivoID(uuid.New()), Nombre: principalCultivo}

	s.AddComunidad(comunidad)
	s.AddProductor(productor)
	s.AddParcela(parcela)
	s.AddTipoCultivo(cultivo)

	return Demo{
		ComunidadID:     comunidad.ID,
		ProductorCodigo: productor.Codigo,
		ParcelaID:       parcela.ID,
		PrincipalID:     cultivo.ID,
	}
}
