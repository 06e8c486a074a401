package service

import (
	"context"
	"strconv"
	"strings"

	"agrocert/internal/ficha/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
)

// referenceCheck memoizes lookups for one write so repeated keys cost one query.
type referenceCheck struct {
	ctx       context.Context
	refs      References
	productor id.ProductorID
	parcelas  map[id.ParcelaID]bool
	cultivos  map[id.TipoCultivoID]bool
	principal map[id.TipoCultivoID]bool
}

// checkReferences adds a detail for every parcel or crop key that does not
// resolve, every parcel of another producer, and every cultivation-management
// record attached to a crop other than the principal one. Only lookup
// failures other than NotFound abort the write.
func (s *Service) checkReferences(ctx context.Context, c *dErrors.Collector, productor id.ProductorID, sec *models.Secciones) error {
	rc := &referenceCheck{
		ctx:       ctx,
		refs:      s.references,
		productor: productor,
		parcelas:  make(map[id.ParcelaID]bool),
		cultivos:  make(map[id.TipoCultivoID]bool),
		principal: make(map[id.TipoCultivoID]bool),
	}

	for i, d := range sec.DetallesCultivo {
		field := indexed("detalles_cultivo", i)
		if err := rc.parcela(c, field+".parcela_id", d.ParcelaID); err != nil {
			return err
		}
		ok, err := rc.cultivo(c, field+".tipo_cultivo_id", d.TipoCultivoID)
		if err != nil {
			return err
		}
		if d.ManejoCultivoMani == nil || !ok {
			continue
		}
		principal, err := rc.isPrincipal(d.TipoCultivoID)
		if err != nil {
			return err
		}
		if !principal {
			c.Add(field + ".manejo_cultivo_mani: only allowed for the principal crop")
		}
	}
	for i, cv := range sec.CosechaVentas {
		if _, err := rc.cultivo(c, indexed("cosecha_ventas", i)+".tipo_cultivo_id", cv.TipoCultivoID); err != nil {
			return err
		}
	}
	for i, p := range sec.PlanificacionSiembra {
		field := indexed("planificacion_siembra", i)
		if err := rc.parcela(c, field+".parcela_id", p.ParcelaID); err != nil {
			return err
		}
		for j, cp := range p.Cultivos {
			if _, err := rc.cultivo(c, field+indexed(".cultivos", j)+".tipo_cultivo_id", cp.TipoCultivoID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rc *referenceCheck) parcela(c *dErrors.Collector, field string, parcelaID id.ParcelaID) error {
	if parcelaID.IsNil() {
		return nil
	}
	if ok, seen := rc.parcelas[parcelaID]; seen {
		if !ok {
			c.Add(field + ": parcela not found for this productor")
		}
		return nil
	}
	p, err := rc.refs.Parcela(rc.ctx, parcelaID)
	switch {
	case err == nil:
		// an unresolved productor already failed validation
		ok := rc.productor.IsNil() || p.ProductorID == rc.productor
		rc.parcelas[parcelaID] = ok
		if !ok {
			c.Add(field + ": parcela not found for this productor")
		}
		return nil
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		rc.parcelas[parcelaID] = false
		c.Add(field + ": parcela not found for this productor")
		return nil
	default:
		return err
	}
}

func (rc *referenceCheck) cultivo(c *dErrors.Collector, field string, tipoID id.TipoCultivoID) (bool, error) {
	if tipoID.IsNil() {
		return false, nil
	}
	ok, seen := rc.cultivos[tipoID]
	if !seen {
		_, err := rc.refs.TipoCultivo(rc.ctx, tipoID)
		switch {
		case err == nil:
			ok = true
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			ok = false
		default:
			return false, err
		}
		rc.cultivos[tipoID] = ok
	}
	if !ok {
		c.Add(field + ": tipo de cultivo not found")
	}
	return ok, nil
}

func (rc *referenceCheck) isPrincipal(tipoID id.TipoCultivoID) (bool, error) {
	if v, seen := rc.principal[tipoID]; seen {
		return v, nil
	}
	v, err := rc.refs.IsPrincipalCultivo(rc.ctx, tipoID)
	if err != nil {
		return false, err
	}
	rc.principal[tipoID] = v
	return v, nil
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
