package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"agrocert/internal/gestion/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

// InMemory is a gestion store for tests and database-less runs.
type InMemory struct {
	mu        sync.RWMutex
	gestiones map[id.GestionID]*models.Gestion
}

func NewInMemory() *InMemory {
	return &InMemory{gestiones: make(map[id.GestionID]*models.Gestion)}
}

// Create inserts g unless its year is already taken.
func (s *InMemory) Create(_ context.Context, g *models.Gestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.gestiones {
		if existing.Year == g.Year {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *g
	s.gestiones[g.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, gestionID id.GestionID) (*models.Gestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gestiones[gestionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *InMemory) FindActive(_ context.Context) (*models.Gestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.gestiones {
		if g.IsSystemActive {
			cp := *g
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns every gestion, newest year first.
func (s *InMemory) List(_ context.Context) ([]*models.Gestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Gestion, 0, len(s.gestiones))
	for _, g := range s.gestiones {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

// Update persists state and the soft-active flag. The system-active flag is
// only changed through SetSystemActive.
func (s *InMemory) Update(_ context.Context, g *models.Gestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.gestiones[g.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.State = g.State
	existing.IsSoftActive = g.IsSoftActive
	existing.Description = g.Description
	existing.UpdatedAt = g.UpdatedAt
	return nil
}

// SetSystemActive clears the flag on every gestion and sets it on the target
// under one lock, so no reader ever observes two active gestiones.
func (s *InMemory) SetSystemActive(_ context.Context, gestionID id.GestionID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.gestiones[gestionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, g := range s.gestiones {
		if g.IsSystemActive && g.ID != gestionID {
			g.IsSystemActive = false
			g.UpdatedAt = now
		}
	}
	target.IsSystemActive = true
	target.State = models.StateActiva
	target.UpdatedAt = now
	return nil
}
