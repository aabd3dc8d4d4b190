// Package metrics exposes workflow activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wartungsmanager-backend/internal/workflow"
)

const namespace = "wartung"

// Collector records workflow events as Prometheus metrics. It implements
// workflow.Recorder.
type Collector struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	resets        prometheus.Counter
	sessionActive prometheus.Gauge
	fillDuration  prometheus.Histogram
	inspections   prometheus.Counter
}

// NewCollector creates a collector with its own registry, including the Go
// runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entry_transitions_total",
				Help:      "Waiting-list entries that reached a status.",
			},
			[]string{"status"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejected_operations_total",
				Help:      "Workflow operations rejected, by error kind.",
			},
			[]string{"op", "kind"},
		),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compressor_resets_total",
			Help:      "Compressor session resets.",
		}),
		sessionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compressor_session_active",
			Help:      "1 while a compressor session is active.",
		}),
		fillDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fill_duration_seconds",
			Help:      "Time from fill start to completion.",
			Buckets:   prometheus.LinearBuckets(0, 300, 12), // 5-minute buckets
		}),
		inspections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inspection_reminders_total",
			Help:      "Bottles claimed for an inspection-due reminder.",
		}),
	}

	c.registry.MustRegister(
		c.transitions,
		c.rejections,
		c.resets,
		c.sessionActive,
		c.fillDuration,
		c.inspections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Record implements workflow.Recorder.
func (c *Collector) Record(ev workflow.Event) {
	switch ev.Kind {
	case workflow.EventEntryAccepted:
		c.transitions.WithLabelValues(string(workflow.StatusWaiting)).Inc()
	case workflow.EventEntryFilling:
		c.transitions.WithLabelValues(string(workflow.StatusFilling)).Inc()
	case workflow.EventEntryFilled:
		c.transitions.WithLabelValues(string(workflow.StatusFilled)).Inc()
		if ev.Entry != nil {
			if d := ev.Entry.FillDuration(); d > 0 {
				c.fillDuration.Observe(d.Seconds())
			}
		}
	case workflow.EventEntryCancelled:
		c.transitions.WithLabelValues(string(workflow.StatusCancelled)).Inc()
	case workflow.EventSessionStarted:
		c.sessionActive.Set(1)
	case workflow.EventSessionStopped:
		c.sessionActive.Set(0)
	case workflow.EventSessionReset:
		c.resets.Inc()
		c.sessionActive.Set(1)
	case workflow.EventRejected:
		c.rejections.WithLabelValues(ev.Op, ev.ErrorKind).Inc()
	}
}

// SetSessionActive seeds the session gauge, e.g. from the database at startup.
func (c *Collector) SetSessionActive(active bool) {
	if active {
		c.sessionActive.Set(1)
		return
	}
	c.sessionActive.Set(0)
}

// InspectionsClaimed counts bottles handed to the reminder pool.
func (c *Collector) InspectionsClaimed(n int) {
	c.inspections.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
