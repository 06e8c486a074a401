package store

import (
	"context"
	"sort"
	"sync"

	"agrocert/internal/usuario/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]models.Usuario
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]models.Usuario)}
}

func (s *InMemory) Create(_ context.Context, u *models.Usuario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.ID == u.ID || existing.Email == u.Email {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.users[u.ID] = clone(*u)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.Usuario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(u)
	return &out, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Usuario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Usuario, 0, len(s.users))
	for _, u := range s.users {
		cp := clone(u)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, u *models.Usuario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.users[u.ID] = clone(*u)
	return nil
}

func clone(u models.Usuario) models.Usuario {
	u.Comunidades = append([]id.ComunidadID{}, u.Comunidades...)
	return u
}
