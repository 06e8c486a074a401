package service

import (
	"context"
	"errors"
	"strings"

	"agrocert/internal/access"
	"agrocert/internal/reference/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/sentinel"
)

// Store is the read-only lookup port.
type Store interface {
	FindComunidad(ctx context.Context, comunidadID id.ComunidadID) (*models.Comunidad, error)
	ListComunidades(ctx context.Context) ([]models.Comunidad, error)
	FindProductorByCodigo(ctx context.Context, codigo string) (*models.Productor, error)
	ListProductores(ctx context.Context, comunidades []id.ComunidadID) ([]models.Productor, error)
	FindParcela(ctx context.Context, parcelaID id.ParcelaID) (*models.Parcela, error)
	FindTipoCultivo(ctx context.Context, tipoID id.TipoCultivoID) (*models.TipoCultivo, error)
}

// Service resolves reference keys and translates misses into NotFound.
type Service struct {
	store            Store
	principalCultivo string
}

// New builds the lookup service. principalCultivo names the certifiable crop
// whose parcels carry a cultivation-management record.
func New(store Store, principalCultivo string) *Service {
	return &Service{store: store, principalCultivo: strings.ToLower(strings.TrimSpace(principalCultivo))}
}

func (s *Service) Productor(ctx context.Context, codigo string) (*models.Productor, error) {
	p, err := s.store.FindProductorByCodigo(ctx, strings.TrimSpace(codigo))
	if err != nil {
		return nil, translate(err, "productor not found")
	}
	return p, nil
}

// ProductoresVisibles lists the producers the identity may see: every one
// for supervisors, the assigned communities' producers for tecnicos.
func (s *Service) ProductoresVisibles(ctx context.Context, ident *access.Identity) ([]models.Productor, error) {
	if err := access.RequireAuthenticated(ident); err != nil {
		return nil, err
	}
	var scope []id.ComunidadID
	if !ident.Role.IsSupervisor() {
		if ident.Role != access.RoleTecnico || len(ident.Comunidades) == 0 {
			return nil, dErrors.Forbidden(access.ReasonCommunity, "role "+ident.Role.String()+" has no community access")
		}
		scope = ident.Comunidades
	}
	list, err := s.store.ListProductores(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list productores")
	}
	return list, nil
}

func (s *Service) Comunidades(ctx context.Context) ([]models.Comunidad, error) {
	list, err := s.store.ListComunidades(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list comunidades")
	}
	return list, nil
}

func (s *Service) Parcela(ctx context.Context, parcelaID id.ParcelaID) (*models.Parcela, error) {
	p, err := s.store.FindParcela(ctx, parcelaID)
	if err != nil {
		return nil, translate(err, "parcela not found")
	}
	return p, nil
}

func (s *Service) TipoCultivo(ctx context.Context, tipoID id.TipoCultivoID) (*models.TipoCultivo, error) {
	t, err := s.store.FindTipoCultivo(ctx, tipoID)
	if err != nil {
		return nil, translate(err, "tipo de cultivo not found")
	}
	return t, nil
}

// IsPrincipalCultivo reports whether tipoID is the certifiable principal crop.
func (s *Service) IsPrincipalCultivo(ctx context.Context, tipoID id.TipoCultivoID) (bool, error) {
	t, err := s.TipoCultivo(ctx, tipoID)
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(t.Nombre)) == s.principalCultivo, nil
}

func translate(err error, notFound string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "reference lookup failed")
}
