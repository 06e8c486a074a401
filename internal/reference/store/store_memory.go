package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"agrocert/internal/reference/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

// InMemory serves lookups from maps seeded at startup or by tests.
type InMemory struct {
	mu           sync.RWMutex
	comunidades  map[id.ComunidadID]models.Comunidad
	productores  map[id.ProductorID]models.Productor
	parcelas     map[id.ParcelaID]models.Parcela
	tiposCultivo map[id.TipoCultivoID]models.TipoCultivo
}

func NewInMemory() *InMemory {
	return &InMemory{
		comunidades:  make(map[id.ComunidadID]models.Comunidad),
		productores:  make(map[id.ProductorID]models.Productor),
		parcelas:     make(map[id.ParcelaID]models.Parcela),
		tiposCultivo: make(map[id.TipoCultivoID]models.TipoCultivo),
	}
}

func (s *InMemory) AddComunidad(c models.Comunidad) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comunidades[c.ID] = c
}

func (s *InMemory) AddProductor(p models.Productor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productores[p.ID] = p
}

func (s *InMemory) AddParcela(p models.Parcela) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parcelas[p.ID] = p
}

func (s *InMemory) AddTipoCultivo(t models.TipoCultivo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiposCultivo[t.ID] = t
}

func (s *InMemory) FindComunidad(_ context.Context, comunidadID id.ComunidadID) (*models.Comunidad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comunidades[comunidadID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) ListComunidades(_ context.Context) ([]models.Comunidad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Comunidad, 0, len(s.comunidades))
	for _, c := range s.comunidades {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (s *InMemory) FindProductorByCodigo(_ context.Context, codigo string) (*models.Productor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.productores {
		if p.Codigo == codigo {
			return &p, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListProductores returns producers of the given communities; nil means all.
func (s *InMemory) ListProductores(_ context.Context, comunidades []id.ComunidadID) ([]models.Productor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Productor, 0)
	for _, p := range s.productores {
		if comunidades == nil || slices.Contains(comunidades, p.ComunidadID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func (s *InMemory) FindParcela(_ context.Context, parcelaID id.ParcelaID) (*models.Parcela, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parcelas[parcelaID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindTipoCultivo(_ context.Context, tipoID id.TipoCultivoID) (*models.TipoCultivo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tiposCultivo[tipoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}
