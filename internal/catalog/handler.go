package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Handler serves the catalog API.
type Handler struct {
	svc         *Service
	products    *listing.Action[Product]
	categories  *listing.Action[CategoryRow]
	logger      *slog.Logger
	defaultUser int64
}

// NewHandler builds the handler. defaultUser is attributed to changes made
// without a signed-in session.
func NewHandler(svc *Service, cache *listing.Cache, logger *slog.Logger, defaultUser int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:         svc,
		products:    listing.NewAction(ProductSchema, svc.ListProducts, cache, logger),
		categories:  listing.NewAction(CategorySchema, svc.ListCategories, cache, logger),
		logger:      logger,
		defaultUser: defaultUser,
	}
}

// MountRoutes registers catalog endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.products.ServeHTTP)
		r.Post("/", h.handleCreateProduct)
		r.Get("/low-stock", h.handleLowStock)
		r.Get("/{id}", h.handleGetProduct)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Delete("/{id}", h.handleDeleteProduct)
		r.Post("/{id}/stock", h.handleAdjustStock)
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.categories.ServeHTTP)
		r.Post("/", h.handleCreateCategory)
		r.Get("/options", h.handleCategoryOptions)
		r.Put("/{id}", h.handleUpdateCategory)
		r.Delete("/{id}", h.handleDeleteCategory)
	})
}

// Warmers returns the list actions for cache warmup.
func (h *Handler) Warmers() []listing.Warmer {
	return []listing.Warmer{h.products, h.categories}
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), h.user(r), input)
	if err != nil {
		httpx.Fail(w, h.logger, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), h.user(r), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), h.user(r), id); err != nil {
		httpx.Fail(w, h.logger, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var adj StockAdjustment
	if err := httpx.DecodeJSON(r, &adj); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.svc.AdjustStock(r.Context(), h.user(r), id, adj)
	if err != nil {
		httpx.Fail(w, h.logger, "adjust stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.LowStock(r.Context(), 50)
	if err != nil {
		httpx.Fail(w, h.logger, "low stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.CategoryOptions(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "category options", err)
		return
	}
	httpx.JSON(w, http.StatusOK, opts)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), h.user(r), input)
	if err != nil {
		httpx.Fail(w, h.logger, "create category", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input CategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), h.user(r), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "update category", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), h.user(r), id); err != nil {
		httpx.Fail(w, h.logger, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) user(r *http.Request) int64 {
	return shared.CurrentUserID(r.Context(), h.defaultUser)
}
