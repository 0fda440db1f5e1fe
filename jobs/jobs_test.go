package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/catalog"
	jobmetrics "github.com/odyssey-erp/stockroom/internal/jobs"
	"github.com/odyssey-erp/stockroom/internal/listing"
)

type stubProducts struct {
	items []catalog.Product
	err   error
	limit int
}

func (s *stubProducts) LowStock(_ context.Context, limit int) ([]catalog.Product, error) {
	s.limit = limit
	return s.items, s.err
}

type stubAlerts struct {
	entries []activity.Entry
	err     error
}

func (s *stubAlerts) Record(_ context.Context, entry activity.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type stubWarmer struct {
	name  string
	err   error
	calls int
}

func (s *stubWarmer) Name() string { return s.name }

func (s *stubWarmer) Warm(context.Context) error {
	s.calls++
	return s.err
}

func TestLowStockScanRecordsAlerts(t *testing.T) {
	products := &stubProducts{items: []catalog.Product{
		{ID: 3, SKU: "BOLT-M6", Name: "Bolt M6", Stock: 2, ReorderLevel: 10},
		{ID: 9, SKU: "NUT-M6", Name: "Nut M6", Stock: 0, ReorderLevel: 5},
	}}
	alerts := &stubAlerts{}
	job := NewLowStockScanJob(products, alerts, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewLowStockScanTask(0)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, DefaultScanLimit, products.limit)
	require.Len(t, alerts.entries, 2)
	first := alerts.entries[0]
	assert.Equal(t, activity.ActionAlert, first.Action)
	assert.Equal(t, "product", first.EntityType)
	assert.Equal(t, int64(3), first.EntityID)
	assert.Equal(t, "Low stock: Bolt M6 (BOLT-M6) has 2 left, reorder level 10", first.Description)
	assert.Equal(t, 10, first.Details["reorder_level"])
}

func TestLowStockScanFailsOnRecordError(t *testing.T) {
	products := &stubProducts{items: []catalog.Product{{ID: 1}}}
	job := NewLowStockScanJob(products, &stubAlerts{err: errors.New("db down")}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewLowStockScanTask(5)
	require.NoError(t, err)
	assert.EqualError(t, job.Handle(context.Background(), task), "db down")
}

func TestLowStockScanSkipsRetryOnBadPayload(t *testing.T) {
	job := NewLowStockScanJob(&stubProducts{}, &stubAlerts{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskLowStockScan, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestListingWarmupContinuesPastFailures(t *testing.T) {
	products := &stubWarmer{name: "products"}
	orders := &stubWarmer{name: "orders", err: errors.New("timeout")}
	customers := &stubWarmer{name: "customers"}
	job := NewListingWarmupJob([]listing.Warmer{products, orders, customers}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewListingWarmupTask()
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders: timeout")
	assert.Equal(t, 1, products.calls)
	assert.Equal(t, 1, customers.calls)
}

func TestListingWarmupFiltersByName(t *testing.T) {
	products := &stubWarmer{name: "products"}
	orders := &stubWarmer{name: "orders"}
	job := NewListingWarmupJob([]listing.Warmer{products, orders}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewListingWarmupTask("orders")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 0, products.calls)
	assert.Equal(t, 1, orders.calls)
}

func TestNewTaskKnowsEveryTask(t *testing.T) {
	for _, name := range TaskNames() {
		task, err := NewTask(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, task.Type())
	}
	_, err := NewTask("mail:send")
	assert.Error(t, err)

	var payload LowStockScanPayload
	task, err := NewTask(TaskLowStockScan)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, DefaultScanLimit, payload.Limit)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

type stubEnqueuer struct {
	err error
}

func (s stubEnqueuer) Trigger(_ context.Context, name string) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, err := NewTask(name); err != nil {
		return nil, err
	}
	return &asynq.TaskInfo{ID: "t-1", Queue: QueueDefault, Type: name}, nil
}

func serve(h *Handler, method, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthReportsQueue(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4, Retry: 1}}, nil, nil)
	rec := serve(h, http.MethodGet, "/jobs/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body QueueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, QueueHealth{Queue: "default", Pending: 4, Retry: 1}, body)

	rec = serve(NewHandler(stubInspector{err: errors.New("redis down")}, nil, nil), http.MethodGet, "/jobs/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(NewHandler(nil, nil, nil), http.MethodGet, "/jobs/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTriggerEnqueuesKnownTask(t *testing.T) {
	h := NewHandler(nil, stubEnqueuer{}, nil)
	rec := serve(h, http.MethodPost, "/jobs/trigger/"+TaskListingWarmup)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"t-1"`)

	rec = serve(h, http.MethodPost, "/jobs/trigger/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(NewHandler(nil, stubEnqueuer{err: errors.New("redis down")}, nil), http.MethodPost, "/jobs/trigger/"+TaskLowStockScan)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
