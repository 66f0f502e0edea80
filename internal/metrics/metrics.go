// Package metrics exposes Prometheus instrumentation for the detection
// pipeline. The recorder doubles as a poller sink so every cycle updates the
// gauges without the engine knowing about Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alphanest/arbscan/internal/domain"
)

// Recorder holds the service's Prometheus collectors.
type Recorder struct {
	cyclesTotal      prometheus.Counter
	opportunities    prometheus.Counter
	lastCycleOpps    prometheus.Gauge
	cycleDuration    prometheus.Histogram
	venueFailures    *prometheus.CounterVec
	bestNetProfitPct prometheus.Gauge
}

// New creates a Recorder with all collectors registered on the default
// registry.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arbscan_cycles_total",
			Help: "Total number of completed detection cycles",
		}),
		opportunities: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arbscan_opportunities_total",
			Help: "Total number of opportunities detected across all cycles",
		}),
		lastCycleOpps: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "arbscan_last_cycle_opportunities",
			Help: "Opportunities found in the most recent cycle",
		}),
		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbscan_cycle_duration_seconds",
			Help:    "Duration of detection cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		venueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "arbscan_venue_failures_total",
			Help: "Cycles in which an exchange failed at least one fetch",
		}, []string{"exchange"}),
		bestNetProfitPct: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "arbscan_best_net_profit_pct",
			Help: "Net profit percentage of the best opportunity in the most recent cycle",
		}),
	}
}

// Name identifies the sink in poller logs.
func (r *Recorder) Name() string { return "metrics" }

// HandleCycle updates all collectors from one cycle result. It never fails.
func (r *Recorder) HandleCycle(_ context.Context, res domain.CycleResult) error {
	r.cyclesTotal.Inc()
	r.opportunities.Add(float64(len(res.Opportunities)))
	r.lastCycleOpps.Set(float64(len(res.Opportunities)))
	r.cycleDuration.Observe(res.Duration.Seconds())
	for _, venue := range res.VenuesFailed {
		r.venueFailures.WithLabelValues(venue).Inc()
	}
	if len(res.Opportunities) > 0 {
		r.bestNetProfitPct.Set(res.Opportunities[0].NetProfitPct)
	} else {
		r.bestNetProfitPct.Set(0)
	}
	return nil
}
