package jobs

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan raises alerts for products at or below their reorder level.
	TaskLowStockScan = "stock:low-scan"
	// TaskListingWarmup loads the default page of every list into the cache.
	TaskListingWarmup = "listing:warmup"
)

// DefaultScanLimit bounds the products reported by one low stock scan.
const DefaultScanLimit = 200

// LowStockScanPayload configures a low stock scan.
type LowStockScanPayload struct {
	Limit int `json:"limit"`
}

// ListingWarmupPayload names the lists to warm. Empty means all.
type ListingWarmupPayload struct {
	Lists []string `json:"lists,omitempty"`
}

// NewLowStockScanTask constructs a low stock scan task.
func NewLowStockScanTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewListingWarmupTask constructs a listing warmup task.
func NewListingWarmupTask(lists ...string) (*asynq.Task, error) {
	data, err := json.Marshal(ListingWarmupPayload{Lists: lists})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskListingWarmup, data), nil
}

var builders = map[string]func() (*asynq.Task, error){
	TaskLowStockScan:  func() (*asynq.Task, error) { return NewLowStockScanTask(DefaultScanLimit) },
	TaskListingWarmup: func() (*asynq.Task, error) { return NewListingWarmupTask() },
}

// NewTask builds the task called name with its default payload.
func NewTask(name string) (*asynq.Task, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("jobs: unsupported task %q", name)
	}
	return build()
}

// TaskNames lists the tasks NewTask accepts.
func TaskNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
