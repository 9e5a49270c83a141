package v3pool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the prometheus instruments emitted by the hydration driver and
// the live stream processor. A nil *metrics (the zero value returned when no
// Registerer is configured) is safe to use; every method becomes a no-op.
type metrics struct {
	swapDuration   prometheus.Histogram
	logWindowsRead prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	m := &metrics{
		swapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "v3pool",
			Name:      "swap_simulation_duration_seconds",
			Help:      "Wall-clock time spent walking ticks in a single swap simulation.",
			Buckets:   prometheus.DefBuckets,
		}),
		logWindowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "v3pool",
			Name:      "hydration_log_windows_total",
			Help:      "Number of block-range log windows fetched during hydration.",
		}),
	}

	reg.MustRegister(m.swapDuration, m.logWindowsRead)
	return m
}

func (m *metrics) observeSwap(start time.Time) {
	if m == nil {
		return
	}
	m.swapDuration.Observe(time.Since(start).Seconds())
}

func (m *metrics) incLogWindow() {
	if m == nil {
		return
	}
	m.logWindowsRead.Inc()
}
