package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"agrocert/internal/ficha/models"
	id "agrocert/pkg/domain"
	"agrocert/pkg/platform/sentinel"
)

// InMemory keeps whole aggregates. Every write replaces the aggregate under
// one lock, so a failed call leaves no partial rows behind.
type InMemory struct {
	mu       sync.RWMutex
	fichas   map[id.FichaID]*models.Ficha
	archivos map[id.ArchivoID]*models.ArchivoFicha
}

func NewInMemory() *InMemory {
	return &InMemory{
		fichas:   make(map[id.FichaID]*models.Ficha),
		archivos: make(map[id.ArchivoID]*models.ArchivoFicha),
	}
}

func (s *InMemory) Create(_ context.Context, f *models.Ficha) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.fichas {
		if existing.ProductorID == f.ProductorID && existing.GestionID == f.GestionID {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.fichas[f.ID] = clone(f)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, fichaID id.FichaID) (*models.Ficha, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fichas[fichaID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(f)
	out.Archivos = s.archivosOf(fichaID)
	return out, nil
}

func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Ficha, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Ficha, 0)
	for _, f := range s.fichas {
		if filter.GestionID != nil && f.GestionID != *filter.GestionID {
			continue
		}
		if filter.Estado != "" && f.Estado != filter.Estado {
			continue
		}
		if filter.ProductorCodigo != "" && f.ProductorCodigo != filter.ProductorCodigo {
			continue
		}
		if filter.Comunidades != nil && !slices.Contains(filter.Comunidades, f.ComunidadID) {
			continue
		}
		out = append(out, clone(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update stores header, compliance sections and the replaced array sections.
func (s *InMemory) Update(_ context.Context, f *models.Ficha, replaced models.Replaced) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.fichas[f.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Estado != models.EstadoBorrador {
		return sentinel.ErrInvalidState
	}
	next := clone(f)
	if !replaced.AccionesCorrectivas {
		next.AccionesCorrectivas = existing.AccionesCorrectivas
	}
	if !replaced.ActividadesPecuarias {
		next.ActividadesPecuarias = existing.ActividadesPecuarias
	}
	if !replaced.DetallesCultivo {
		next.DetallesCultivo = existing.DetallesCultivo
	}
	if !replaced.CosechaVentas {
		next.CosechaVentas = existing.CosechaVentas
	}
	if !replaced.PlanificacionSiembra {
		next.PlanificacionSiembra = existing.PlanificacionSiembra
	}
	s.fichas[f.ID] = next
	return nil
}

// UpdateState persists a workflow transition if the stored ficha is still in from.
func (s *InMemory) UpdateState(_ context.Context, f *models.Ficha, from models.Estado) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.fichas[f.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Estado != from {
		return sentinel.ErrInvalidState
	}
	existing.Estado = f.Estado
	existing.Resultado = f.Resultado
	existing.ComentariosDecision = f.ComentariosDecision
	existing.DecididoPor = f.DecididoPor
	existing.FechaDecision = f.FechaDecision
	existing.UpdatedAt = f.UpdatedAt
	return nil
}

// Delete removes the ficha together with its attachments.
func (s *InMemory) Delete(_ context.Context, fichaID id.FichaID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fichas[fichaID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.fichas, fichaID)
	for archivoID, a := range s.archivos {
		if a.FichaID == fichaID {
			delete(s.archivos, archivoID)
		}
	}
	return nil
}

func (s *InMemory) AddArchivo(_ context.Context, a *models.ArchivoFicha) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fichas[a.FichaID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *a
	s.archivos[a.ID] = &cp
	return nil
}

func (s *InMemory) FindArchivo(_ context.Context, archivoID id.ArchivoID) (*models.ArchivoFicha, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.archivos[archivoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) UpdateArchivo(_ context.Context, a *models.ArchivoFicha) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.archivos[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *a
	s.archivos[a.ID] = &cp
	return nil
}

func (s *InMemory) archivosOf(fichaID id.FichaID) []models.ArchivoFicha {
	out := make([]models.ArchivoFicha, 0)
	for _, a := range s.archivos {
		if a.FichaID == fichaID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func clone(f *models.Ficha) *models.Ficha {
	cp := *f
	cp.RevisionDocumentacion = clonePtr(f.RevisionDocumentacion)
	cp.EvaluacionMitigacion = clonePtr(f.EvaluacionMitigacion)
	cp.EvaluacionPoscosecha = clonePtr(f.EvaluacionPoscosecha)
	cp.EvaluacionConocimientoNormas = clonePtr(f.EvaluacionConocimientoNormas)
	cp.AccionesCorrectivas = slices.Clone(f.AccionesCorrectivas)
	for i := range cp.AccionesCorrectivas {
		cp.AccionesCorrectivas[i].FechaLimite = clonePtr(cp.AccionesCorrectivas[i].FechaLimite)
	}
	cp.ActividadesPecuarias = slices.Clone(f.ActividadesPecuarias)
	cp.DetallesCultivo = slices.Clone(f.DetallesCultivo)
	for i := range cp.DetallesCultivo {
		if m := clonePtr(cp.DetallesCultivo[i].ManejoCultivoMani); m != nil {
			m.FechaSiembra = clonePtr(m.FechaSiembra)
			cp.DetallesCultivo[i].ManejoCultivoMani = m
		}
	}
	cp.CosechaVentas = slices.Clone(f.CosechaVentas)
	cp.PlanificacionSiembra = slices.Clone(f.PlanificacionSiembra)
	for i := range cp.PlanificacionSiembra {
		cp.PlanificacionSiembra[i].Cultivos = slices.Clone(cp.PlanificacionSiembra[i].Cultivos)
	}
	cp.Archivos = nil
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
