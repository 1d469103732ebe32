package progress

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports pipeline events as Prometheus series.
type Metrics struct {
	jobs   *prometheus.CounterVec
	bytes  prometheus.Counter
	active prometheus.Gauge
	done   prometheus.Gauge
	total  prometheus.Gauge

	// high-water mark for done; advance events race between workers
	mu       sync.Mutex
	doneSeen int64
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		jobs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cosmico",
			Subsystem: "download",
			Name:      "jobs_total",
			Help:      "Download jobs by terminal outcome.",
		}, []string{"outcome"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "cosmico",
			Subsystem: "download",
			Name:      "bytes_total",
			Help:      "Bytes written to disk.",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cosmico",
			Subsystem: "download",
			Name:      "active_jobs",
			Help:      "Jobs holding a progress tracker.",
		}),
		done: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cosmico",
			Subsystem: "download",
			Name:      "overall_done",
			Help:      "Jobs finished in the current run.",
		}),
		total: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cosmico",
			Subsystem: "download",
			Name:      "overall_total",
			Help:      "Jobs in the current run.",
		}),
	}
}

func (m *Metrics) Report(ev Event) {
	switch ev.Kind {
	case KindRunStarted:
		m.mu.Lock()
		m.doneSeen = 0
		m.mu.Unlock()
		m.total.Set(float64(ev.Total))
		m.done.Set(0)
	case KindTrackerAdded:
		m.active.Inc()
	case KindTrackerRemoved:
		m.active.Dec()
	case KindJobProgress:
		m.bytes.Add(float64(ev.Bytes))
	case KindJobSucceeded:
		m.jobs.WithLabelValues("succeeded").Inc()
	case KindJobSkipped:
		m.jobs.WithLabelValues("skipped").Inc()
	case KindJobFailed:
		m.jobs.WithLabelValues("failed").Inc()
	case KindJobCancelled:
		m.jobs.WithLabelValues("cancelled").Inc()
	case KindOverallAdvanced:
		m.mu.Lock()
		if ev.Done > m.doneSeen {
			m.doneSeen = ev.Done
			m.done.Set(float64(ev.Done))
		}
		m.mu.Unlock()
	}
}
