package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"agrocert/internal/access"
	"agrocert/internal/ficha/models"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

// Service defines the ficha operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, in models.CreateInput) (*models.View, error)
	Update(ctx context.Context, fichaID id.FichaID, in models.UpdateInput) (*models.View, error)
	Submit(ctx context.Context, fichaID id.FichaID) (*models.View, error)
	Decide(ctx context.Context, fichaID id.FichaID, req models.DecideRequest) (*models.View, error)
	Get(ctx context.Context, fichaID id.FichaID) (*models.View, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.View, error)
	Delete(ctx context.Context, fichaID id.FichaID) error
	AddArchivo(ctx context.Context, fichaID id.FichaID, in models.ArchivoInput) (*models.ArchivoFicha, error)
	UploadArchivo(ctx context.Context, archivoID id.ArchivoID, r io.Reader, size int64) (*models.ArchivoFicha, error)
	ConfirmArchivo(ctx context.Context, archivoID id.ArchivoID, req models.ConfirmUploadRequest) (*models.ArchivoFicha, error)
	ComunidadOf(ctx context.Context, fichaID id.FichaID) (id.ComunidadID, error)
	OwnerOf(ctx context.Context, fichaID id.FichaID) (id.UserID, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the ficha routes. Callers apply authentication first.
// Per-ficha routes are scoped to the ficha's community before the handler runs.
func (h *Handler) Register(r chi.Router) {
	r.Route("/fichas", func(r chi.Router) {
		r.With(access.PermissionMiddleware(access.PermFichaRead)).Get("/", h.handleList)
		r.With(access.PermissionMiddleware(access.PermFichaWrite)).Post("/", h.handleCreate)

		r.Route("/{fichaID}", func(r chi.Router) {
			r.Use(access.ComunidadMiddleware(h.comunidadOf))
			r.With(access.PermissionMiddleware(access.PermFichaRead)).Get("/", h.handleGet)
			r.With(access.PermissionMiddleware(access.PermFichaWrite)).Patch("/", h.handleUpdate)
			r.With(
				access.PermissionMiddleware(access.PermFichaDelete),
				access.OwnershipMiddleware(h.ownerOf),
			).Delete("/", h.handleDelete)
			r.With(access.PermissionMiddleware(access.PermFichaSubmit)).Post("/enviar", h.handleSubmit)
			r.With(
				access.RoleMiddleware(access.RoleGerente, access.RoleAdministrador),
				access.PermissionMiddleware(access.PermFichaApprove),
			).Post("/decision", h.handleDecide)
			r.With(access.PermissionMiddleware(access.PermFichaWrite)).Post("/archivos", h.handleAddArchivo)
		})

		r.Route("/archivos/{archivoID}", func(r chi.Router) {
			r.Use(access.PermissionMiddleware(access.PermFichaWrite))
			r.Put("/contenido", h.handleUpload)
			r.Post("/confirmar", h.handleConfirm)
		})
	})
}

func (h *Handler) ownerOf(r *http.Request) access.OwnerResolver {
	return func(ctx context.Context) (id.UserID, error) {
		fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
		if err != nil {
			return id.UserID{}, err
		}
		return h.service.OwnerOf(ctx, fichaID)
	}
}

func (h *Handler) comunidadOf(r *http.Request) access.ComunidadResolver {
	return func(ctx context.Context) (id.ComunidadID, error) {
		fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
		if err != nil {
			return id.ComunidadID{}, err
		}
		return h.service.ComunidadOf(ctx, fichaID)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	v, err := h.service.Create(ctx, in)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var in models.UpdateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	v, err := h.service.Update(ctx, fichaID, in)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.withFicha(w, r, func(ctx context.Context, fichaID id.FichaID) (any, error) {
		return h.service.Submit(ctx, fichaID)
	})
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req models.DecideRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.withFicha(w, r, func(ctx context.Context, fichaID id.FichaID) (any, error) {
		return h.service.Decide(ctx, fichaID, req)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withFicha(w, r, func(ctx context.Context, fichaID id.FichaID) (any, error) {
		return h.service.Get(ctx, fichaID)
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if err := h.service.Delete(ctx, fichaID); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := listFilter(r)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	list, err := h.service.List(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"fichas": list})
}

func (h *Handler) handleAddArchivo(w http.ResponseWriter, r *http.Request) {
	var in models.ArchivoInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	ctx := r.Context()
	fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	a, err := h.service.AddArchivo(ctx, fichaID, in)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	archivoID, err := id.ParseArchivoID(chi.URLParam(r, "archivoID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if r.ContentLength <= 0 {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "Content-Length is required"))
		return
	}
	body := http.MaxBytesReader(w, r.Body, storage.MaxFileSize)
	a, err := h.service.UploadArchivo(ctx, archivoID, body, r.ContentLength)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	archivoID, err := id.ParseArchivoID(chi.URLParam(r, "archivoID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var req models.ConfirmUploadRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	a, err := h.service.ConfirmArchivo(ctx, archivoID, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) withFicha(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.FichaID) (any, error)) {
	ctx := r.Context()
	fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	out, err := fn(ctx, fichaID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func listFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var filter models.ListFilter
	if raw := q.Get("gestion_id"); raw != "" {
		gestionID, err := id.ParseGestionID(raw)
		if err != nil {
			return filter, err
		}
		filter.GestionID = &gestionID
	}
	if raw := strings.TrimSpace(q.Get("estado")); raw != "" {
		estado := models.Estado(strings.ToLower(raw))
		switch estado {
		case models.EstadoBorrador, models.EstadoRevision, models.EstadoAprobado, models.EstadoRechazado:
			filter.Estado = estado
		default:
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid estado "+raw)
		}
	}
	filter.ProductorCodigo = strings.TrimSpace(q.Get("productor_codigo"))
	return filter, nil
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "ficha request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
