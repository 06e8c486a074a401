package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrocert/internal/access"
	"agrocert/internal/gestion/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

// Service defines the gestion operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, year int, description string) (*models.Gestion, error)
	Activate(ctx context.Context, gestionID id.GestionID, actorID id.UserID) (*models.Gestion, error)
	Deactivate(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error)
	Finish(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error)
	GetActive(ctx context.Context) (*models.Gestion, error)
	Get(ctx context.Context, gestionID id.GestionID) (*models.Gestion, error)
	List(ctx context.Context) ([]*models.Gestion, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the gestion routes. Callers apply authentication first.
func (h *Handler) Register(r chi.Router) {
	r.Route("/gestiones", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(access.PermissionMiddleware(access.PermGestionRead))
			r.Get("/", h.handleList)
			r.Get("/activa", h.handleGetActive)
			r.Get("/{gestionID}", h.handleGet)
		})
		r.Group(func(r chi.Router) {
			r.Use(access.RoleMiddleware(access.RoleAdministrador))
			r.Use(access.PermissionMiddleware(access.PermGestionManage))
			r.Post("/", h.handleCreate)
			r.Post("/{gestionID}/activar", h.handleActivate)
			r.Post("/{gestionID}/desactivar", h.handleDeactivate)
			r.Post("/{gestionID}/finalizar", h.handleFinish)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	g, err := h.service.Create(ctx, req.Year, req.Description)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gestionID, err := id.ParseGestionID(chi.URLParam(r, "gestionID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	g, err := h.service.Activate(ctx, gestionID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Deactivate)
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Finish)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.GestionID) (*models.Gestion, error)) {
	ctx := r.Context()
	gestionID, err := id.ParseGestionID(chi.URLParam(r, "gestionID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	g, err := fn(ctx, gestionID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) handleGetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := h.service.GetActive(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Get)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.List(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"gestiones": list})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "gestion request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
