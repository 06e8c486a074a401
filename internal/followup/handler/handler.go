package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrocert/internal/access"
	"agrocert/internal/followup/models"
	"agrocert/internal/storage"
	id "agrocert/pkg/domain"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

// Service defines the follow-up operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, fichaID id.FichaID, req models.CreateRequest) (*models.NoConformidad, error)
	UpdateFollowUp(ctx context.Context, ncID id.NoConformidadID, req models.UpdateFollowUpRequest) (*models.NoConformidad, error)
	Get(ctx context.Context, ncID id.NoConformidadID) (*models.NoConformidad, error)
	ListByFicha(ctx context.Context, fichaID id.FichaID) ([]*models.NoConformidad, error)
	ListEvidence(ctx context.Context, ncID id.NoConformidadID) ([]models.ArchivoNoConformidad, error)
	AttachEvidence(ctx context.Context, ncID id.NoConformidadID, in models.EvidenceInput) (*models.ArchivoNoConformidad, error)
	UploadEvidence(ctx context.Context, evidenceID id.ArchivoID, r io.Reader, size int64) (*models.ArchivoNoConformidad, error)
	ConfirmEvidence(ctx context.Context, evidenceID id.ArchivoID, req models.ConfirmUploadRequest) (*models.ArchivoNoConformidad, error)
	DeleteEvidence(ctx context.Context, evidenceID id.ArchivoID) error
	ComunidadOf(ctx context.Context, ncID id.NoConformidadID) (id.ComunidadID, error)
	EvidenceOwner(ctx context.Context, evidenceID id.ArchivoID) (id.UserID, error)
}

// Fichas resolves the community of a ficha for routes nested under it.
type Fichas interface {
	ComunidadOf(ctx context.Context, fichaID id.FichaID) (id.ComunidadID, error)
}

type Handler struct {
	service Service
	fichas  Fichas
	logger  *slog.Logger
}

func New(service Service, fichas Fichas, logger *slog.Logger) *Handler {
	return &Handler{service: service, fichas: fichas, logger: logger}
}

// Register mounts the follow-up routes. Callers apply authentication first.
func (h *Handler) Register(r chi.Router) {
	r.Route("/fichas/{fichaID}/no-conformidades", func(r chi.Router) {
		r.Use(access.ComunidadMiddleware(h.fichaComunidad))
		r.With(access.PermissionMiddleware(access.PermNoConformidadRead)).Get("/", h.handleList)
		r.With(access.PermissionMiddleware(access.PermNoConformidadWrite)).Post("/", h.handleCreate)
	})

	r.Route("/no-conformidades/{ncID}", func(r chi.Router) {
		r.Use(access.ComunidadMiddleware(h.comunidadOf))
		r.With(access.PermissionMiddleware(access.PermNoConformidadRead)).Get("/", h.handleGet)
		r.With(access.PermissionMiddleware(access.PermNoConformidadWrite)).Patch("/seguimiento", h.handleFollowUp)
		r.With(access.PermissionMiddleware(access.PermNoConformidadRead)).Get("/evidencias", h.handleListEvidence)
		r.With(access.PermissionMiddleware(access.PermNoConformidadWrite)).Post("/evidencias", h.handleAttach)
	})

	r.Route("/evidencias/{evidenciaID}", func(r chi.Router) {
		r.Use(access.PermissionMiddleware(access.PermNoConformidadWrite))
		r.Put("/contenido", h.handleUpload)
		r.Post("/confirmar", h.handleConfirm)
		r.With(access.OwnershipMiddleware(h.evidenceOwner)).Delete("/", h.handleDelete)
	})
}

func (h *Handler) fichaComunidad(r *http.Request) access.ComunidadResolver {
	return func(ctx context.Context) (id.ComunidadID, error) {
		fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
		if err != nil {
			return id.ComunidadID{}, err
		}
		return h.fichas.ComunidadOf(ctx, fichaID)
	}
}

func (h *Handler) evidenceOwner(r *http.Request) access.OwnerResolver {
	return func(ctx context.Context) (id.UserID, error) {
		evidenceID, err := id.ParseArchivoID(chi.URLParam(r, "evidenciaID"))
		if err != nil {
			return id.UserID{}, err
		}
		return h.service.EvidenceOwner(ctx, evidenceID)
	}
}

func (h *Handler) comunidadOf(r *http.Request) access.ComunidadResolver {
	return func(ctx context.Context) (id.ComunidadID, error) {
		ncID, err := id.ParseNoConformidadID(chi.URLParam(r, "ncID"))
		if err != nil {
			return id.ComunidadID{}, err
		}
		return h.service.ComunidadOf(ctx, ncID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	list, err := h.service.ListByFicha(ctx, fichaID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"no_conformidades": list})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fichaID, err := id.ParseFichaID(chi.URLParam(r, "fichaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var req models.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	nc, err := h.service.Create(ctx, fichaID, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, nc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withNoConformidad(w, r, http.StatusOK, func(ctx context.Context, ncID id.NoConformidadID) (any, error) {
		return h.service.Get(ctx, ncID)
	})
}

func (h *Handler) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFollowUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.withNoConformidad(w, r, http.StatusOK, func(ctx context.Context, ncID id.NoConformidadID) (any, error) {
		return h.service.UpdateFollowUp(ctx, ncID, req)
	})
}

func (h *Handler) handleListEvidence(w http.ResponseWriter, r *http.Request) {
	h.withNoConformidad(w, r, http.StatusOK, func(ctx context.Context, ncID id.NoConformidadID) (any, error) {
		list, err := h.service.ListEvidence(ctx, ncID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"evidencias": list}, nil
	})
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	var in models.EvidenceInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	h.withNoConformidad(w, r, http.StatusCreated, func(ctx context.Context, ncID id.NoConformidadID) (any, error) {
		return h.service.AttachEvidence(ctx, ncID, in)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	evidenceID, err := id.ParseArchivoID(chi.URLParam(r, "evidenciaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if r.ContentLength <= 0 {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "Content-Length is required"))
		return
	}
	body := http.MaxBytesReader(w, r.Body, storage.MaxFileSize)
	e, err := h.service.UploadEvidence(ctx, evidenceID, body, r.ContentLength)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	evidenceID, err := id.ParseArchivoID(chi.URLParam(r, "evidenciaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var req models.ConfirmUploadRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	e, err := h.service.ConfirmEvidence(ctx, evidenceID, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	evidenceID, err := id.ParseArchivoID(chi.URLParam(r, "evidenciaID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if err := h.service.DeleteEvidence(ctx, evidenceID); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) withNoConformidad(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, id.NoConformidadID) (any, error)) {
	ctx := r.Context()
	ncID, err := id.ParseNoConformidadID(chi.URLParam(r, "ncID"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	out, err := fn(ctx, ncID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, status, out)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "follow-up request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
