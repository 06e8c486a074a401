package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agrocert/internal/access"
	"agrocert/internal/report"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

type Service interface {
	Compliance(ctx context.Context, gestionID *id.GestionID) (*report.Summary, error)
	Export(ctx context.Context, gestionID *id.GestionID) ([]byte, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) Register(r chi.Router) {
	r.Route("/reportes", func(r chi.Router) {
		r.Use(access.PermissionMiddleware(access.PermReporteExport))
		r.Get("/cumplimiento", h.handleCompliance)
		r.Get("/cumplimiento.xlsx", h.handleExport)
	})
}

func (h *Handler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gestionID, err := gestionParam(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	summary, err := h.service.Compliance(ctx, gestionID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gestionID, err := gestionParam(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	data, err := h.service.Export(ctx, gestionID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="cumplimiento.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "failed to write report", "error", err)
	}
}

func gestionParam(r *http.Request) (*id.GestionID, error) {
	raw := r.URL.Query().Get("gestion_id")
	if raw == "" {
		return nil, nil
	}
	gestionID, err := id.ParseGestionID(raw)
	if err != nil {
		return nil, err
	}
	return &gestionID, nil
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "report request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
