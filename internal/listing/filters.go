package listing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Registry maps list names to their schemas.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]urlstate.Schema
}

// NewRegistry registers schemas.
func NewRegistry(schemas ...urlstate.Schema) *Registry {
	r := &Registry{schemas: make(map[string]urlstate.Schema, len(schemas))}
	for _, s := range schemas {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a schema.
func (r *Registry) Register(schema urlstate.Schema) {
	r.mu.Lock()
	r.schemas[schema.Name] = schema
	r.mu.Unlock()
}

// Lookup returns the schema of list.
func (r *Registry) Lookup(list string) (urlstate.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[list]
	return s, ok
}

// Names returns the registered list names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterRequest changes one filter of a list URL.
type FilterRequest struct {
	List  string `json:"list" validate:"required"`
	Href  string `json:"href" validate:"required"`
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
	Clear bool   `json:"clear"`
}

// FilterResponse is the URL to navigate to.
type FilterResponse struct {
	Href    string `json:"href"`
	Scroll  bool   `json:"scroll"`
	Replace bool   `json:"replace"`
}

// ApplyFilter computes the next href of a list page after one filter
// control changed. Changing any filter other than the page resets paging.
func (r *Registry) ApplyFilter(req FilterRequest) (FilterResponse, error) {
	if err := shared.Validate(req); err != nil {
		return FilterResponse{}, err
	}
	schema, ok := r.Lookup(req.List)
	if !ok {
		return FilterResponse{}, fmt.Errorf("%w: unknown list %q", httpx.ErrNotFound, req.List)
	}
	dim, ok := schema.Dimension(req.Key)
	if !ok {
		return FilterResponse{}, fmt.Errorf("%w: %s has no filter %q", httpx.ErrValidation, req.List, req.Key)
	}
	nav, err := urlstate.NewURLNavigator(req.Href)
	if err != nil {
		return FilterResponse{}, fmt.Errorf("%w: invalid href", httpx.ErrValidation)
	}

	opts := []urlstate.ControlOption{urlstate.WithAllValue(AllValue)}
	if req.Key != PageKey {
		opts = append(opts, urlstate.WithResetKeys(PageKey))
	}
	control := urlstate.NewControl(nav, dim, opts...)
	if req.Clear {
		control.Clear()
	} else if err := control.SetValue(req.Value); err != nil {
		if errors.Is(err, urlstate.ErrValueNotAllowed) {
			return FilterResponse{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
		return FilterResponse{}, err
	}
	last := nav.LastOptions()
	return FilterResponse{Href: nav.Href(), Scroll: last.Scroll, Replace: last.Replace}, nil
}

// FilterHandler serves POST /api/filters.
type FilterHandler struct {
	registry *Registry
	logger   *slog.Logger
}

// NewFilterHandler constructs the handler.
func NewFilterHandler(registry *Registry, logger *slog.Logger) *FilterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterHandler{registry: registry, logger: logger}
}

func (h *FilterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp, err := h.registry.ApplyFilter(req)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("apply filter", slog.String("list", req.List), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}
