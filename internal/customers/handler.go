package customers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Handler serves the customer API.
type Handler struct {
	svc         *Service
	list        *listing.Action[CustomerRow]
	logger      *slog.Logger
	defaultUser int64
}

// NewHandler builds the handler.
func NewHandler(svc *Service, cache *listing.Cache, logger *slog.Logger, defaultUser int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:         svc,
		list:        listing.NewAction(Schema, svc.List, cache, logger),
		logger:      logger,
		defaultUser: defaultUser,
	}
}

// MountRoutes registers customer endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.list.ServeHTTP)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

// Warmers returns the list actions for cache warmup.
func (h *Handler) Warmers() []listing.Warmer {
	return []listing.Warmer{h.list}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), shared.CurrentUserID(r.Context(), h.defaultUser), input)
	if err != nil {
		httpx.Fail(w, h.logger, "create customer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), shared.CurrentUserID(r.Context(), h.defaultUser), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "update customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), shared.CurrentUserID(r.Context(), h.defaultUser), id); err != nil {
		httpx.Fail(w, h.logger, "delete customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
