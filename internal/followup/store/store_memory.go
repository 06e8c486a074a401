package store

import (
	"context"
	"sort"
	"sync"

	"agrocert/internal/followup/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	items      map[id.NoConformidadID]*models.NoConformidad
	evidencias map[id.ArchivoID]*models.ArchivoNoConformidad
}

func NewInMemory() *InMemory {
	return &InMemory{
		items:      make(map[id.NoConformidadID]*models.NoConformidad),
		evidencias: make(map[id.ArchivoID]*models.ArchivoNoConformidad),
	}
}

func (s *InMemory) Create(_ context.Context, nc *models.NoConformidad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[nc.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *nc
	cp.Evidencias = nil
	s.items[nc.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, ncID id.NoConformidadID) (*models.NoConformidad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nc, ok := s.items[ncID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *nc
	cp.Evidencias = s.evidenceOf(ncID)
	return &cp, nil
}

func (s *InMemory) ListByFicha(_ context.Context, fichaID id.FichaID) ([]*models.NoConformidad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.NoConformidad, 0)
	for _, nc := range s.items {
		if nc.FichaID == fichaID {
			cp := *nc
			cp.Evidencias = s.evidenceOf(nc.ID)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateFollowUp overwrites the follow-up fields of a stored record.
func (s *InMemory) UpdateFollowUp(_ context.Context, nc *models.NoConformidad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[nc.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.EstadoSeguimiento = nc.EstadoSeguimiento
	existing.ComentarioSeguimiento = nc.ComentarioSeguimiento
	existing.FechaSeguimiento = nc.FechaSeguimiento
	existing.ActualizadoPor = nc.ActualizadoPor
	existing.UpdatedAt = nc.UpdatedAt
	return nil
}

func (s *InMemory) AddEvidence(_ context.Context, e *models.ArchivoNoConformidad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.NoConformidadID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *e
	s.evidencias[e.ID] = &cp
	return nil
}

func (s *InMemory) FindEvidence(_ context.Context, evidenceID id.ArchivoID) (*models.ArchivoNoConformidad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.evidencias[evidenceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemory) ListEvidence(_ context.Context, ncID id.NoConformidadID) ([]models.ArchivoNoConformidad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evidenceOf(ncID), nil
}

func (s *InMemory) UpdateEvidence(_ context.Context, e *models.ArchivoNoConformidad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.evidencias[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *e
	s.evidencias[e.ID] = &cp
	return nil
}

// DeleteEvidence removes the row outright.
func (s *InMemory) DeleteEvidence(_ context.Context, evidenceID id.ArchivoID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.evidencias[evidenceID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.evidencias, evidenceID)
	return nil
}

func (s *InMemory) evidenceOf(ncID id.NoConformidadID) []models.ArchivoNoConformidad {
	out := make([]models.ArchivoNoConformidad, 0)
	for _, e := range s.evidencias {
		if e.NoConformidadID == ncID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
