package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/stockroom/internal/jobs"
	"github.com/odyssey-erp/stockroom/internal/listing"
)

// ListingWarmupJob loads the default page of each list into the cache.
type ListingWarmupJob struct {
	Warmers []listing.Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewListingWarmupJob wires dependencies for the warmup handler.
func NewListingWarmupJob(warmers []listing.Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ListingWarmupJob {
	return &ListingWarmupJob{Warmers: warmers, Logger: logger, Metrics: metrics, Timeout: 20 * time.Second}
}

// Handle processes listing warmup tasks. A failing list does not stop the
// others; the joined error is returned at the end.
func (j *ListingWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil {
		return errors.New("listing warmup: handler not configured")
	}
	var payload ListingWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("listing warmup: decode payload: %w", asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(TaskListingWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	wanted := make(map[string]bool, len(payload.Lists))
	for _, name := range payload.Lists {
		wanted[name] = true
	}

	logger := j.logger()
	start := time.Now()
	warmed := 0
	var errs []error
	for _, w := range j.Warmers {
		if len(wanted) > 0 && !wanted[w.Name()] {
			continue
		}
		if err := j.warm(ctx, w); err != nil {
			logger.Warn("warm list", slog.String("list", w.Name()), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
			continue
		}
		warmed++
	}
	logger.Info("completed listing warmup", slog.Int("lists", warmed), slog.Duration("duration", time.Since(start)))
	return errors.Join(errs...)
}

func (j *ListingWarmupJob) warm(ctx context.Context, w listing.Warmer) error {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	return w.Warm(ctx)
}

func (j *ListingWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskListingWarmup))
	}
	return slog.Default().With(slog.String("job", TaskListingWarmup))
}

func (j *ListingWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
