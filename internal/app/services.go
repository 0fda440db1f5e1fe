package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/catalog"
	"github.com/odyssey-erp/stockroom/internal/customers"
	"github.com/odyssey-erp/stockroom/internal/dashboard"
	"github.com/odyssey-erp/stockroom/internal/expenses"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/orders"
	"github.com/odyssey-erp/stockroom/internal/profile"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Services holds the domain services shared by the server and the worker.
type Services struct {
	Activity  *activity.Service
	Catalog   *catalog.Service
	Customers *customers.Service
	Orders    *orders.Service
	Expenses  *expenses.Service
	Profile   *profile.Service
	Dashboard *dashboard.Service
	Cache     *listing.Cache
}

// Models lists every table in migration order.
func Models() []any {
	var models []any
	models = append(models, profile.Models()...)
	models = append(models, catalog.Models()...)
	models = append(models, customers.Models()...)
	models = append(models, orders.Models()...)
	models = append(models, expenses.Models()...)
	models = append(models, activity.Models()...)
	return models
}

// ListSchemas returns the schema of every list page.
func ListSchemas() []urlstate.Schema {
	return []urlstate.Schema{
		catalog.ProductSchema,
		catalog.CategorySchema,
		customers.Schema,
		orders.OrderSchema,
		orders.PaymentSchema,
		expenses.Schema,
		activity.LogSchema,
		activity.InventorySchema,
	}
}

// NewServices wires the repositories and services. gdb and pool share
// connections; cache may be nil.
func NewServices(gdb *gorm.DB, pool *pgxpool.Pool, cache *listing.Cache, logger *slog.Logger) *Services {
	activitySvc := activity.NewService(activity.NewRepository(gdb), cache, logger)
	activitySvc.InvalidateOnRecord(dashboard.CacheName)

	var dashCache dashboard.Cache
	if cache != nil {
		dashCache = cache
	}
	return &Services{
		Activity:  activitySvc,
		Catalog:   catalog.NewService(catalog.NewRepository(gdb), activitySvc, logger),
		Customers: customers.NewService(customers.NewRepository(gdb), activitySvc, logger),
		Orders:    orders.NewService(orders.NewRepository(gdb), activitySvc, logger),
		Expenses:  expenses.NewService(expenses.NewRepository(gdb), activitySvc, logger),
		Profile:   profile.NewService(profile.NewRepository(gdb), activitySvc, logger),
		Dashboard: dashboard.NewService(dashboard.NewRepository(pool), dashCache),
		Cache:     cache,
	}
}

// Handlers holds the HTTP handlers of every domain.
type Handlers struct {
	Activity  *activity.Handler
	Catalog   *catalog.Handler
	Customers *customers.Handler
	Orders    *orders.Handler
	Expenses  *expenses.Handler
	Profile   *profile.Handler
	Dashboard *dashboard.Handler
}

// NewHandlers builds the handlers; defaultUser is acted as when a request
// carries no signed-in user.
func NewHandlers(s *Services, logger *slog.Logger, defaultUser int64) *Handlers {
	return &Handlers{
		Activity:  activity.NewHandler(s.Activity, s.Cache, logger),
		Catalog:   catalog.NewHandler(s.Catalog, s.Cache, logger, defaultUser),
		Customers: customers.NewHandler(s.Customers, s.Cache, logger, defaultUser),
		Orders:    orders.NewHandler(s.Orders, s.Cache, logger, defaultUser),
		Expenses:  expenses.NewHandler(s.Expenses, s.Cache, logger, defaultUser),
		Profile:   profile.NewHandler(s.Profile, logger, defaultUser),
		Dashboard: dashboard.NewHandler(s.Dashboard, logger),
	}
}

// Modules returns the handlers for router mounting.
func (h *Handlers) Modules() []Module {
	return []Module{h.Dashboard, h.Catalog, h.Customers, h.Orders, h.Expenses, h.Activity, h.Profile}
}

// Warmers returns every list action for cache warmup.
func (h *Handlers) Warmers() []listing.Warmer {
	var out []listing.Warmer
	out = append(out, h.Catalog.Warmers()...)
	out = append(out, h.Customers.Warmers()...)
	out = append(out, h.Orders.Warmers()...)
	out = append(out, h.Expenses.Warmers()...)
	out = append(out, h.Activity.Warmers()...)
	return out
}
