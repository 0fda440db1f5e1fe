// Package listquery keeps the result of a list page in sync with its filters.
//
// A Query decodes the current location into a FilterSet, fetches the page
// from a remote list action, and caches results per canonical filter key.
// Results for a key already in the cache are served immediately while a
// background refresh runs; responses that arrive after their request was
// superseded are dropped.
package listquery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// DefaultCapacity is the number of filter combinations kept when no
// capacity is configured.
const DefaultCapacity = 50

// ErrEmptyResponse is reported when a fetcher returns neither items nor an
// error.
var ErrEmptyResponse = errors.New("listquery: empty response")

// ActionError carries the error message returned by a list action.
type ActionError struct {
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

// Status is the fetch state of the current key.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Response is the payload of a list action.
type Response[T any] struct {
	Items []T    `json:"items"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// Fetcher calls the remote list action.
type Fetcher[T any] func(ctx context.Context, filters urlstate.FilterSet) (*Response[T], error)

// Result is the observable state of a Query.
type Result[T any] struct {
	Key       string
	Filters   urlstate.FilterSet
	Status    Status
	Items     []T
	Total     int
	IsLoading bool
	IsError   bool
	Err       error
	UpdatedAt time.Time
}

type entry[T any] struct {
	filters   urlstate.FilterSet
	status    Status
	items     []T
	total     int
	err       error
	updatedAt time.Time
	seq       uint64
	pending   chan struct{}
}

// Query is the list hook of one page.
type Query[T any] struct {
	schema urlstate.Schema
	fetch  Fetcher[T]

	attempts int
	delay    time.Duration
	capacity int
	onChange func(Result[T])
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	cache   *lru.Cache[string, *entry[T]]
	current string
	active  *entry[T]
}

// Option configures a Query.
type Option[T any] func(*Query[T])

// WithCapacity bounds the number of cached filter combinations.
func WithCapacity[T any](n int) Option[T] {
	return func(q *Query[T]) {
		q.capacity = n
	}
}

// WithRetry retries a failed fetch up to attempts times in total.
func WithRetry[T any](attempts int, delay time.Duration) Option[T] {
	return func(q *Query[T]) {
		q.attempts = attempts
		q.delay = delay
	}
}

// WithOnChange registers a callback invoked after every visible transition.
func WithOnChange[T any](fn func(Result[T])) Option[T] {
	return func(q *Query[T]) {
		q.onChange = fn
	}
}

// WithLogger sets the logger used for discarded responses and failures.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(q *Query[T]) {
		q.logger = logger
	}
}

// New constructs a Query for schema.
func New[T any](schema urlstate.Schema, fetch Fetcher[T], opts ...Option[T]) *Query[T] {
	q := &Query[T]{
		schema:   schema,
		fetch:    fetch,
		attempts: 1,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.attempts < 1 {
		q.attempts = 1
	}
	if q.capacity < 1 {
		q.capacity = DefaultCapacity
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	q.logger = q.logger.With(slog.String("list", schema.Name))
	// lru.New only fails for a non-positive size.
	q.cache, _ = lru.New[string, *entry[T]](q.capacity)
	return q
}

// Sync re-derives the filters from raw and starts a fetch when they differ
// by value from the current ones.
func (q *Query[T]) Sync(ctx context.Context, raw urlstate.Query) Result[T] {
	filters := urlstate.Decode(raw, q.schema)
	key := urlstate.Key(filters, q.schema)

	q.mu.Lock()
	if q.active != nil && key == q.current {
		res := q.resultLocked()
		q.mu.Unlock()
		return res
	}
	e, ok := q.cache.Get(key)
	if !ok {
		e = &entry[T]{filters: filters}
		q.cache.Add(key, e)
	}
	q.current = key
	q.active = e
	seq := q.beginLocked(e)
	res := q.resultLocked()
	q.mu.Unlock()

	q.notify(res)
	go q.run(ctx, key, e, seq)
	return res
}

// Refetch forces a fetch for the current filters.
func (q *Query[T]) Refetch(ctx context.Context) Result[T] {
	q.mu.Lock()
	if q.active == nil {
		q.mu.Unlock()
		return Result[T]{}
	}
	e, key := q.active, q.current
	seq := q.beginLocked(e)
	res := q.resultLocked()
	q.mu.Unlock()

	q.notify(res)
	go q.run(ctx, key, e, seq)
	return res
}

// Result returns the state of the current filters.
func (q *Query[T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active == nil {
		return Result[T]{}
	}
	return q.resultLocked()
}

// Peek returns the cached state for raw without changing the current
// filters.
func (q *Query[T]) Peek(raw urlstate.Query) (Result[T], bool) {
	filters := urlstate.Decode(raw, q.schema)
	key := urlstate.Key(filters, q.schema)

	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.cache.Peek(key)
	if !ok {
		return Result[T]{}, false
	}
	return snapshot(key, e), true
}

// Wait blocks until no fetch for the current filters is in flight.
func (q *Query[T]) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		var pending chan struct{}
		if q.active != nil {
			pending = q.active.pending
		}
		q.mu.Unlock()
		if pending == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pending:
		}
	}
}

func (q *Query[T]) beginLocked(e *entry[T]) uint64 {
	e.seq++
	e.status = StatusLoading
	if e.pending == nil {
		e.pending = make(chan struct{})
	}
	return e.seq
}

func (q *Query[T]) run(ctx context.Context, key string, e *entry[T], seq uint64) {
	items, total, err := q.load(ctx, e, seq)

	q.mu.Lock()
	if e.seq != seq {
		q.mu.Unlock()
		q.logger.Debug("discard superseded list response", slog.String("key", key), slog.Uint64("seq", seq))
		return
	}
	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.items = items
		e.total = total
		e.err = nil
		e.updatedAt = q.now()
	}
	close(e.pending)
	e.pending = nil
	visible := q.active == e
	var res Result[T]
	if visible {
		res = q.resultLocked()
	}
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("list fetch failed", slog.String("key", key), slog.Any("error", err))
	}
	if visible {
		q.notify(res)
	}
}

func (q *Query[T]) load(ctx context.Context, e *entry[T], seq uint64) ([]T, int, error) {
	q.mu.Lock()
	filters := e.filters.Clone()
	q.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < q.attempts; attempt++ {
		if attempt > 0 {
			if q.superseded(e, seq) {
				return nil, 0, lastErr
			}
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(q.delay):
			}
		}
		resp, err := q.fetch(ctx, filters)
		switch {
		case err != nil:
			lastErr = err
		case resp == nil:
			lastErr = ErrEmptyResponse
		case resp.Error != "":
			lastErr = &ActionError{Message: resp.Error}
		default:
			return resp.Items, resp.Total, nil
		}
	}
	return nil, 0, lastErr
}

func (q *Query[T]) superseded(e *entry[T], seq uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return e.seq != seq
}

func (q *Query[T]) resultLocked() Result[T] {
	return snapshot(q.current, q.active)
}

func (q *Query[T]) notify(res Result[T]) {
	if q.onChange != nil {
		q.onChange(res)
	}
}

func snapshot[T any](key string, e *entry[T]) Result[T] {
	return Result[T]{
		Key:       key,
		Filters:   e.filters.Clone(),
		Status:    e.status,
		Items:     e.items,
		Total:     e.total,
		IsLoading: e.status == StatusLoading,
		IsError:   e.status == StatusError,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}
