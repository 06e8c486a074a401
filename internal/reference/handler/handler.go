package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrocert/internal/access"
	"agrocert/internal/reference/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

type Service interface {
	Productor(ctx context.Context, codigo string) (*models.Productor, error)
	ProductoresVisibles(ctx context.Context, ident *access.Identity) ([]models.Productor, error)
	Comunidades(ctx context.Context) ([]models.Comunidad, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/comunidades", h.handleListComunidades)
	r.Get("/productores", h.handleListProductores)
	r.With(access.ComunidadMiddleware(h.productorComunidad)).Get("/productores/{codigo}", h.handleGetProductor)
}

// productorComunidad resolves the community of the producer addressed by the route.
func (h *Handler) productorComunidad(r *http.Request) access.ComunidadResolver {
	codigo := chi.URLParam(r, "codigo")
	return func(ctx context.Context) (id.ComunidadID, error) {
		p, err := h.service.Productor(ctx, codigo)
		if err != nil {
			return id.ComunidadID{}, err
		}
		return p.ComunidadID, nil
	}
}

func (h *Handler) handleListComunidades(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := access.RequireAuthenticated(access.IdentityFrom(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.Comunidades(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"comunidades": list})
}

func (h *Handler) handleListProductores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ProductoresVisibles(ctx, access.IdentityFrom(ctx))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"productores": list})
}

func (h *Handler) handleGetProductor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Productor(ctx, chi.URLParam(r, "codigo"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "reference request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
