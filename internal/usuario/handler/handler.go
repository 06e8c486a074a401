package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrocert/internal/access"
	"agrocert/internal/usuario/models"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Usuario, error)
	Get(ctx context.Context, userID id.UserID) (*models.Usuario, error)
	List(ctx context.Context) ([]*models.Usuario, error)
	Update(ctx context.Context, userID id.UserID, req models.UpdateRequest) (*models.Usuario, error)
	Deactivate(ctx context.Context, userID id.UserID) (*models.Usuario, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user routes. /usuarios/me is open to any authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/me", h.handleMe)
		r.With(access.PermissionMiddleware(access.PermUsuarioManage)).Get("/", h.handleList)
		r.With(access.PermissionMiddleware(access.PermUsuarioManage)).Post("/", h.handleCreate)
		r.Get("/{userID}", h.handleGet)
		r.Patch("/{userID}", h.handleUpdate)
		r.Post("/{userID}/desactivar", h.handleDeactivate)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident := access.IdentityFrom(ctx)
	if err := access.RequireAuthenticated(ident); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	u, err := h.service.Get(ctx, ident.UserID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.List(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"usuarios": list})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	u, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, func(ctx context.Context, userID id.UserID) (any, error) {
		return h.service.Get(ctx, userID)
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.withUser(w, r, func(ctx context.Context, userID id.UserID) (any, error) {
		return h.service.Update(ctx, userID, req)
	})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, func(ctx context.Context, userID id.UserID) (any, error) {
		return h.service.Deactivate(ctx, userID)
	})
}

func (h *Handler) withUser(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.UserID) (any, error)) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	out, err := fn(ctx, userID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "usuario request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
