package observability

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/pagetree/internal/platform/envutil"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	treeMutations  *CounterVec
	treeLatency    *HistogramVec
	treeBusy       *Counter
	processorCalls *CounterVec
	formEntries    *Counter

	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current is nil until Init runs with metrics enabled. Every method is
// nil-safe so callers never check.
func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	if d := envutil.Duration("METRICS_SCRAPE_INTERVAL", 15*time.Second); d > 0 {
		return d
	}
	return 15 * time.Second
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("pagetree_http_requests_total", "HTTP requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"pagetree_http_request_duration_seconds",
			"HTTP request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:   NewGauge("pagetree_http_inflight_requests", "In-flight HTTP requests."),
		treeMutations: NewCounterVec("pagetree_tree_mutations_total", "Tree mutations by operation/outcome.", []string{"op", "outcome"}),
		treeLatency: NewHistogramVec(
			"pagetree_tree_mutation_duration_seconds",
			"Tree mutation latency in seconds, lock wait included.",
			[]string{"op"},
			[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		),
		treeBusy:       NewCounter("pagetree_tree_busy_total", "Mutations that gave up waiting for a subtree lock."),
		processorCalls: NewCounterVec("pagetree_processor_calls_total", "Processor invocations by processor/outcome.", []string{"processor", "outcome"}),
		formEntries:    NewCounter("pagetree_form_entries_total", "Stored form submissions."),
		redisUp:        NewGauge("pagetree_redis_up", "1 when the lock store answered the last ping."),
		redisPing:      NewGauge("pagetree_redis_ping_seconds", "Latency of the last lock store ping."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.treeMutations, m.treeLatency, m.treeBusy,
		m.processorCalls, m.formEntries,
		m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveTreeMutation records one finished mutation. outcome is "ok",
// "busy", or "error".
func (m *Metrics) ObserveTreeMutation(op, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.treeMutations.Inc(op, outcome)
	m.treeLatency.Observe(dur.Seconds(), op)
	if outcome == "busy" {
		m.treeBusy.Inc()
	}
}

func (m *Metrics) IncProcessorCall(processor string, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.processorCalls.Inc(processor, outcome)
}

func (m *Metrics) IncFormEntry() {
	if m == nil {
		return
	}
	m.formEntries.Inc()
}

// StartRedisCollector pings the lock store until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
