package listquery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

var productSchema = urlstate.NewSchema("products", urlstate.OmitDefaults,
	urlstate.String("search", ""),
	urlstate.Bool("isActive", true),
	urlstate.Enum("status", "", "PENDING", "PAID"),
)

type reply struct {
	resp *Response[string]
	err  error
}

type call struct {
	filters urlstate.FilterSet
	reply   chan reply
}

// gatedFetcher parks every call until the test answers it.
type gatedFetcher struct {
	mu    sync.Mutex
	calls []*call
}

func (g *gatedFetcher) fetch(ctx context.Context, filters urlstate.FilterSet) (*Response[string], error) {
	c := &call{filters: filters, reply: make(chan reply, 1)}
	g.mu.Lock()
	g.calls = append(g.calls, c)
	g.mu.Unlock()
	select {
	case r := <-c.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedFetcher) waitCall(t *testing.T, n int) *call {
	t.Helper()
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.calls) >= n
	}, time.Second, time.Millisecond)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[n-1]
}

func (g *gatedFetcher) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func ok(items ...string) reply {
	return reply{resp: &Response[string]{Items: items, Total: len(items)}}
}

func waitIdle(t *testing.T, q *Query[string]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Wait(ctx))
}

func TestSyncFetchesAndSucceeds(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()

	res := q.Sync(ctx, urlstate.ParseQuery("search=widget"))
	assert.True(t, res.IsLoading)
	assert.Equal(t, StatusLoading, res.Status)
	assert.Empty(t, res.Items)

	c := g.waitCall(t, 1)
	assert.Equal(t, "widget", c.filters.String("search"))
	assert.True(t, c.filters.Bool("isActive"))
	c.reply <- ok("widget-a", "widget-b")
	waitIdle(t, q)

	res = q.Result()
	assert.Equal(t, StatusSuccess, res.Status)
	assert.False(t, res.IsLoading)
	assert.Equal(t, []string{"widget-a", "widget-b"}, res.Items)
	assert.Equal(t, 2, res.Total)
}

func TestSyncIgnoresValueEqualFilters(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()

	q.Sync(ctx, urlstate.ParseQuery("search=a&status=PAID"))
	g.waitCall(t, 1).reply <- ok("x")
	waitIdle(t, q)

	q.Sync(ctx, urlstate.ParseQuery("status=PAID&isActive=true&search=a&junk=1"))
	q.Sync(ctx, urlstate.ParseQuery("status=PAID&search=a"))
	assert.Equal(t, 1, g.count())
	assert.Equal(t, StatusSuccess, q.Result().Status)
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()

	q.Sync(ctx, urlstate.ParseQuery("search=widget"))
	widget := g.waitCall(t, 1)
	q.Sync(ctx, urlstate.ParseQuery("search=wid"))
	wid := g.waitCall(t, 2)

	wid.reply <- ok("wid-1")
	waitIdle(t, q)
	widget.reply <- ok("widget-1", "widget-2")

	require.Eventually(t, func() bool {
		cached, found := q.Peek(urlstate.ParseQuery("search=widget"))
		return found && cached.Status == StatusSuccess
	}, time.Second, time.Millisecond)

	res := q.Result()
	assert.Equal(t, "wid", res.Filters.String("search"))
	assert.Equal(t, []string{"wid-1"}, res.Items)
}

func TestNewerRequestForSameKeyWins(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()

	q.Sync(ctx, urlstate.ParseQuery("search=a"))
	first := g.waitCall(t, 1)
	q.Sync(ctx, urlstate.ParseQuery("search=b"))
	g.waitCall(t, 2).reply <- ok("b")
	q.Sync(ctx, urlstate.ParseQuery("search=a"))
	second := g.waitCall(t, 3)

	second.reply <- ok("a-new")
	waitIdle(t, q)
	first.reply <- ok("a-old")
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, []string{"a-new"}, q.Result().Items)
}

func TestErrorKeepsLastGoodItems(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()

	q.Sync(ctx, urlstate.ParseQuery("status=PENDING"))
	g.waitCall(t, 1).reply <- ok("o-1")
	waitIdle(t, q)

	q.Refetch(ctx)
	g.waitCall(t, 2).reply <- reply{err: errors.New("db down")}
	waitIdle(t, q)

	res := q.Result()
	assert.True(t, res.IsError)
	assert.EqualError(t, res.Err, "db down")
	assert.Equal(t, []string{"o-1"}, res.Items)
}

func TestFirstFetchErrorHasNoItems(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)

	q.Sync(context.Background(), urlstate.ParseQuery("status=PENDING"))
	g.waitCall(t, 1).reply <- reply{resp: &Response[string]{Error: "invalid filters"}}
	waitIdle(t, q)

	res := q.Result()
	assert.True(t, res.IsError)
	var actionErr *ActionError
	require.ErrorAs(t, res.Err, &actionErr)
	assert.Equal(t, "invalid filters", actionErr.Message)
	assert.Empty(t, res.Items)
}

func TestEmptyResponseIsAnError(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)

	q.Sync(context.Background(), nil)
	g.waitCall(t, 1).reply <- reply{}
	waitIdle(t, q)

	assert.ErrorIs(t, q.Result().Err, ErrEmptyResponse)
}

func TestErrorDoesNotTouchOtherKeys(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()

	q.Sync(ctx, urlstate.ParseQuery("status=PAID"))
	g.waitCall(t, 1).reply <- ok("paid-1")
	waitIdle(t, q)

	q.Sync(ctx, urlstate.ParseQuery("status=PENDING"))
	g.waitCall(t, 2).reply <- reply{err: errors.New("boom")}
	waitIdle(t, q)

	paid, found := q.Peek(urlstate.ParseQuery("status=PAID"))
	require.True(t, found)
	assert.Equal(t, StatusSuccess, paid.Status)
	assert.Equal(t, []string{"paid-1"}, paid.Items)
}

func TestRevisitServesCachedItemsWhileRefreshing(t *testing.T) {
	g := &gatedFetcher{}
	var seen []Result[string]
	var mu sync.Mutex
	q := New[string](productSchema, g.fetch, WithOnChange(func(r Result[string]) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	}))
	ctx := context.Background()

	q.Sync(ctx, urlstate.ParseQuery("search=bolt"))
	g.waitCall(t, 1).reply <- ok("bolt-1")
	waitIdle(t, q)
	q.Sync(ctx, urlstate.ParseQuery("search=nut"))
	g.waitCall(t, 2).reply <- ok("nut-1")
	waitIdle(t, q)

	res := q.Sync(ctx, urlstate.ParseQuery("search=bolt"))
	assert.True(t, res.IsLoading)
	assert.Equal(t, []string{"bolt-1"}, res.Items)

	g.waitCall(t, 3).reply <- ok("bolt-1", "bolt-2")
	waitIdle(t, q)
	assert.Equal(t, []string{"bolt-1", "bolt-2"}, q.Result().Items)

	mu.Lock()
	defer mu.Unlock()
	for _, r := range seen {
		if r.Filters.String("search") == "bolt" && r.Status == StatusLoading && !r.UpdatedAt.IsZero() {
			assert.NotEmpty(t, r.Items, "revisit must not flash an empty list")
		}
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context, filters urlstate.FilterSet) (*Response[string], error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return &Response[string]{Items: []string{"ok"}}, nil
	}
	q := New[string](productSchema, fetch, WithRetry[string](3, time.Millisecond))

	q.Sync(context.Background(), nil)
	waitIdle(t, q)

	res := q.Result()
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{"ok"}, res.Items)
	assert.Equal(t, 3, calls)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	fetch := func(ctx context.Context, filters urlstate.FilterSet) (*Response[string], error) {
		return &Response[string]{Items: []string{filters.String("search")}}, nil
	}
	q := New[string](productSchema, fetch, WithCapacity[string](2))
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c"} {
		q.Sync(ctx, urlstate.ParseQuery("search="+s))
		waitIdle(t, q)
	}

	_, found := q.Peek(urlstate.ParseQuery("search=a"))
	assert.False(t, found)
	_, found = q.Peek(urlstate.ParseQuery("search=c"))
	assert.True(t, found)
}

func TestNavigatorDrivesQuery(t *testing.T) {
	g := &gatedFetcher{}
	q := New[string](productSchema, g.fetch)
	ctx := context.Background()
	nav := urlstate.NewMemoryNavigator(nil)
	nav.Subscribe(func(loc urlstate.Query) { q.Sync(ctx, loc) })

	search := urlstate.NewControl(nav, urlstate.String("search", ""))
	status, _ := productSchema.Dimension("status")
	statusControl := urlstate.NewControl(nav, status, urlstate.WithAllValue("all"))

	require.NoError(t, search.SetValue("widget"))
	require.NoError(t, statusControl.SetValue("PAID"))

	last := g.waitCall(t, 2)
	assert.Equal(t, "widget", last.filters.String("search"))
	assert.Equal(t, "PAID", last.filters.String("status"))
	last.reply <- ok("w")
	waitIdle(t, q)
	assert.Equal(t, []string{"w"}, q.Result().Items)
}
