//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

func compliantFicha(codigo string) map[string]any {
	return map[string]any{
		"productor_codigo": codigo,
		"fecha_inspeccion": "2025-07-14",
		"inspector":        "Ing. Mamani",
		"revision_documentacion": map[string]string{
			"solicitud_ingreso": "cumple", "normas_reglamentos": "cumple", "contrato_produccion": "cumple",
			"croquis_ubicacion": "cumple", "diario_campo": "parcial", "registro_cosecha": "cumple", "recibo_pago": "cumple",
		},
		"evaluacion_mitigacion": map[string]string{
			"practica_mitigacion_riesgos": "cumple", "mitigacion_contaminacion": "cumple", "deposito_herramientas": "cumple",
			"deposito_insumos_organicos": "parcial", "evita_quema_residuos": "cumple",
		},
		"evaluacion_poscosecha": map[string]string{
			"secado_tendal": "cumple", "envases_limpios": "cumple", "almacen_protegido": "cumple", "evidencia_comercializacion": "parcial",
		},
		"evaluacion_conocimiento_normas": map[string]string{
			"conoce_normas_organicas": "cumple", "conoce_prohibiciones": "cumple", "recibio_capacitacion": "cumple",
			"conoce_sanciones": "cumple", "aplica_registros": "cumple",
		},
	}
}

// RegisterSteps binds the step vocabulary used by features/.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.stop()
		return ctx, err
	})

	ctx.Step(`^a running agrocert instance$`, tc.start)

	ctx.Step(`^I am authenticated as "([^"]*)"$`, func(role string) error {
		return tc.authenticate(role)
	})
	ctx.Step(`^I am authenticated as a tecnico of the demo comunidad$`, func() error {
		return tc.authenticate("tecnico", uuid.UUID(tc.app.Demo.ComunidadID))
	})
	ctx.Step(`^I am authenticated as a tecnico of another comunidad$`, func() error {
		return tc.authenticate("tecnico", uuid.New())
	})

	ctx.Step(`^I create gestion (\d+)$`, func(year int) error {
		if err := tc.do(http.MethodPost, "/gestiones", map[string]any{"year": year}); err != nil {
			return err
		}
		tc.gestionID = tc.field("id")
		return nil
	})
	ctx.Step(`^I activate the created gestion$`, func() error {
		return tc.do(http.MethodPost, "/gestiones/"+tc.gestionID+"/activar", nil)
	})

	ctx.Step(`^I create a compliant ficha for the demo productor$`, func() error {
		if err := tc.do(http.MethodPost, "/fichas", compliantFicha(tc.app.Demo.ProductorCodigo)); err != nil {
			return err
		}
		if tc.lastStatus == http.StatusCreated {
			tc.fichaID = tc.field("id")
		}
		return nil
	})
	ctx.Step(`^I submit the ficha$`, func() error {
		return tc.do(http.MethodPost, "/fichas/"+tc.fichaID+"/enviar", nil)
	})
	ctx.Step(`^I decide the ficha as "([^"]*)"$`, func(resultado string) error {
		return tc.do(http.MethodPost, "/fichas/"+tc.fichaID+"/decision", map[string]string{
			"resultado":   resultado,
			"comentarios": "Inspeccion conforme",
		})
	})

	ctx.Step(`^I record the nonconformity "([^"]*)"$`, func(descripcion string) error {
		if err := tc.do(http.MethodPost, "/fichas/"+tc.fichaID+"/no-conformidades", map[string]string{
			"descripcion": descripcion,
		}); err != nil {
			return err
		}
		if tc.lastStatus == http.StatusCreated {
			tc.ncID = tc.field("id")
		}
		return nil
	})
	ctx.Step(`^I mark the nonconformity "([^"]*)" on "([^"]*)"$`, func(estado, fecha string) error {
		return tc.do(http.MethodPatch, "/no-conformidades/"+tc.ncID+"/seguimiento", map[string]string{
			"estado":            estado,
			"comentario":        "corregido en visita",
			"fecha_seguimiento": fecha,
		})
	})

	ctx.Step(`^the response status should be (\d+)$`, func(status int) error {
		if tc.lastStatus != status {
			return fmt.Errorf("expected status %d, got %d: %v", status, tc.lastStatus, tc.lastBody)
		}
		return nil
	})
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, func(name, want string) error {
		if got := tc.field(name); got != want {
			return fmt.Errorf("expected %s=%q, got %q", name, want, got)
		}
		return nil
	})
	ctx.Step(`^the error code should be "([^"]*)"$`, func(code string) error {
		if got := tc.field("error"); got != code {
			return fmt.Errorf("expected error code %q, got %q: %v", code, got, tc.lastBody)
		}
		return nil
	})
	ctx.Step(`^the error reason should be "([^"]*)"$`, func(reason string) error {
		if got := tc.field("reason"); got != reason {
			return fmt.Errorf("expected reason %q, got %q: %v", reason, got, tc.lastBody)
		}
		return nil
	})
}
