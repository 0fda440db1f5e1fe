package listing

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes the list page cache.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	loads  *prometheus.HistogramVec
}

// NewMetrics registers the cache collectors on reg. Collectors already
// registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockroom_listing_cache_hits_total",
			Help: "Number of list pages served from cache.",
		}, []string{"list"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockroom_listing_cache_miss_total",
			Help: "Number of list pages loaded from the database.",
		}, []string{"list"}),
		loads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockroom_listing_load_duration_seconds",
			Help:    "Duration required to load a list page on a cache miss.",
			Buckets: prometheus.DefBuckets,
		}, []string{"list"}),
	}
	if err := register(reg, &m.hits); err != nil {
		return nil, err
	}
	if err := register(reg, &m.misses); err != nil {
		return nil, err
	}
	if err := register(reg, &m.loads); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			*c = existing
			return nil
		}
	}
	return err
}

func (m *Metrics) hit(list string) {
	if m != nil {
		m.hits.WithLabelValues(list).Inc()
	}
}

func (m *Metrics) miss(list string) {
	if m != nil {
		m.misses.WithLabelValues(list).Inc()
	}
}

func (m *Metrics) observeLoad(list string, d time.Duration) {
	if m != nil {
		m.loads.WithLabelValues(list).Observe(d.Seconds())
	}
}
