// Package listing serves filtered list pages over HTTP.
//
// An Action decodes the request query with a page's schema, runs the page's
// Lister behind a Redis cache and answers with items and a total. Failures
// come back as an error message in the same payload so list views can show
// them next to the last good rows.
package listing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Page is one page of a list.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Lister loads the rows matching filters.
type Lister[T any] func(ctx context.Context, filters urlstate.FilterSet) (Page[T], error)

// Warmer is implemented by actions that can prefill their default page.
type Warmer interface {
	Name() string
	Warm(ctx context.Context) error
}

type payload[T any] struct {
	Items      []T                `json:"items"`
	Total      int                `json:"total"`
	Key        string             `json:"key"`
	Pagination *shared.Pagination `json:"pagination,omitempty"`
}

type failure struct {
	Error string `json:"error"`
}

// Action is the remote list action of one page.
type Action[T any] struct {
	schema urlstate.Schema
	list   Lister[T]
	cache  *Cache
	logger *slog.Logger
}

// NewAction binds lister to schema. cache may be nil.
func NewAction[T any](schema urlstate.Schema, lister Lister[T], cache *Cache, logger *slog.Logger) *Action[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Action[T]{
		schema: schema,
		list:   lister,
		cache:  cache,
		logger: logger.With(slog.String("list", schema.Name)),
	}
}

// Name returns the list name.
func (a *Action[T]) Name() string {
	return a.schema.Name
}

// Schema returns the filter schema of the list.
func (a *Action[T]) Schema() urlstate.Schema {
	return a.schema
}

// Run loads the page for filters, serving it from the cache when possible.
func (a *Action[T]) Run(ctx context.Context, filters urlstate.FilterSet) (Page[T], error) {
	filters = urlstate.Normalize(filters, a.schema)
	var page Page[T]
	err := a.cache.Fetch(ctx, a.schema.Name, urlstate.Key(filters, a.schema), &page, func(ctx context.Context) (any, error) {
		return a.list(ctx, filters)
	})
	if err != nil {
		return Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// Warm loads the default page into the cache.
func (a *Action[T]) Warm(ctx context.Context) error {
	_, err := a.Run(ctx, a.schema.Defaults())
	return err
}

// ServeHTTP answers GET requests with the page selected by the query string.
func (a *Action[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filters := urlstate.Decode(urlstate.ParseQuery(r.URL.RawQuery), a.schema)
	page, err := a.Run(r.Context(), filters)
	if err != nil {
		status := httpx.StatusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			a.logger.Error("list action failed", slog.Any("error", err))
			msg = "failed to load " + a.schema.Name
		}
		httpx.JSON(w, status, failure{Error: msg})
		return
	}

	out := payload[T]{Items: page.Items, Total: page.Total, Key: urlstate.Key(filters, a.schema)}
	if _, ok := a.schema.Dimension(PageKey); ok {
		p := shared.NewPagination(filters.Int(PageKey), shared.DefaultPageSize, page.Total)
		out.Pagination = &p
	}
	httpx.JSON(w, http.StatusOK, out)
}
