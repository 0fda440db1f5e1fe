package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/stockroom/internal/activity"
	"github.com/odyssey-erp/stockroom/internal/catalog"
	jobmetrics "github.com/odyssey-erp/stockroom/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LowStockSource lists products at or below their reorder level.
type LowStockSource interface {
	LowStock(ctx context.Context, limit int) ([]catalog.Product, error)
}

// AlertRecorder stores alert entries in the activity log.
type AlertRecorder interface {
	Record(ctx context.Context, entry activity.Entry) error
}

// LowStockScanJob writes an ALERT activity entry for every low stock product.
type LowStockScanJob struct {
	Products LowStockSource
	Alerts   AlertRecorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(products LowStockSource, alerts AlertRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Products: products, Alerts: alerts, Logger: logger, Metrics: metrics}
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Products == nil || j.Alerts == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("low stock scan: decode payload: %w", asynq.SkipRetry)
	}
	if payload.Limit <= 0 {
		payload.Limit = DefaultScanLimit
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	products, err := j.Products.LowStock(ctx, payload.Limit)
	if err != nil {
		logger.Error("load low stock products", slog.Any("error", err))
		return err
	}

	for _, p := range products {
		if err := j.Alerts.Record(ctx, alertEntry(p)); err != nil {
			logger.Error("record low stock alert", slog.Int64("product_id", p.ID), slog.Any("error", err))
			return err
		}
	}
	j.metrics().AddAlerts(len(products))
	logger.Info("completed low stock scan", slog.Int("alerts", len(products)), slog.Duration("duration", time.Since(start)))
	return nil
}

func alertEntry(p catalog.Product) activity.Entry {
	return activity.Entry{
		Action:      activity.ActionAlert,
		EntityType:  "product",
		EntityID:    p.ID,
		Description: fmt.Sprintf("Low stock: %s (%s) has %d left, reorder level %d", p.Name, p.SKU, p.Stock, p.ReorderLevel),
		Details: map[string]any{
			"sku":           p.SKU,
			"stock":         p.Stock,
			"reorder_level": p.ReorderLevel,
		},
	}
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
