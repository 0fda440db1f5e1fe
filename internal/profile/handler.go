package profile

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Handler serves the profile of the current user.
type Handler struct {
	svc         *Service
	logger      *slog.Logger
	defaultUser int64
}

// NewHandler builds the handler.
func NewHandler(svc *Service, logger *slog.Logger, defaultUser int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger, defaultUser: defaultUser}
}

// MountRoutes registers profile endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/profile", h.handleGet)
	r.Put("/api/profile", h.handleUpdate)
	r.Post("/api/profile/password", h.handlePassword)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), h.user(r))
	if err != nil {
		httpx.Fail(w, h.logger, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	u, err := h.svc.Update(r.Context(), h.user(r), input)
	if err != nil {
		httpx.Fail(w, h.logger, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) handlePassword(w http.ResponseWriter, r *http.Request) {
	var input PasswordInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), h.user(r), input); err != nil {
		httpx.Fail(w, h.logger, "change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) user(r *http.Request) int64 {
	return shared.CurrentUserID(r.Context(), h.defaultUser)
}
