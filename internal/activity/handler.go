package activity

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockroom/internal/listing"
)

// Handler exposes the activity lists.
type Handler struct {
	logs      *listing.Action[Log]
	inventory *listing.Action[InventoryEntry]
}

// NewHandler builds the list actions over svc.
func NewHandler(svc *Service, cache *listing.Cache, logger *slog.Logger) *Handler {
	return &Handler{
		logs:      listing.NewAction(LogSchema, svc.ListLogs, cache, logger),
		inventory: listing.NewAction(InventorySchema, svc.ListInventory, cache, logger),
	}
}

// MountRoutes registers the list endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/"+LogSchema.Name, h.logs.ServeHTTP)
	r.Get("/api/"+InventorySchema.Name, h.inventory.ServeHTTP)
}

// Warmers returns the list actions for cache warmup.
func (h *Handler) Warmers() []listing.Warmer {
	return []listing.Warmer{h.logs, h.inventory}
}
