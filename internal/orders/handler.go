package orders

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Handler serves the order and payment API.
type Handler struct {
	svc         *Service
	orders      *listing.Action[Order]
	payments    *listing.Action[Payment]
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
		orders:      listing.NewAction(OrderSchema, svc.List, cache, logger),
		payments:    listing.NewAction(PaymentSchema, svc.ListPayments, cache, logger),
		logger:      logger,
		defaultUser: defaultUser,
	}
}

// MountRoutes registers order and payment endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.orders.ServeHTTP)
		r.Post("/", h.handleCreate)
		r.Get("/export.csv", h.handleExport)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/status", h.handleStatus)
		r.Post("/{id}/payments", h.handlePayment)
	})
	r.Get("/api/"+PaymentSchema.Name, h.payments.ServeHTTP)
}

// Warmers returns the list actions for cache warmup.
func (h *Handler) Warmers() []listing.Warmer {
	return []listing.Warmer{h.orders, h.payments}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.svc.Create(r.Context(), h.user(r), input)
	if err != nil {
		httpx.Fail(w, h.logger, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input StatusInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), h.user(r), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "update order status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input PaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, o, err := h.svc.RecordPayment(r.Context(), h.user(r), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": p, "order": o})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters := urlstate.Decode(urlstate.ParseQuery(r.URL.RawQuery), OrderSchema)
	rows, err := h.svc.Export(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.logger, "export orders", err)
		return
	}
	name := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := WriteCSV(w, rows); err != nil {
		h.logger.Error("write orders csv", slog.Any("error", err))
	}
}

func (h *Handler) user(r *http.Request) int64 {
	return shared.CurrentUserID(r.Context(), h.defaultUser)
}
