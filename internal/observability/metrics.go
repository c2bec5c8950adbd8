package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// location resolution and enrichment subsystem.
type Metrics struct {
	// Geocoding metrics.
	GeocodeResolutions *prometheus.CounterVec   // labels: tier={local,remote,default}, outcome={hit,empty,error}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}

	// Catalog metrics.
	CatalogLoads *prometheus.CounterVec // labels: tier={cache,primary,secondary,static}, outcome={hit,empty,error}

	// Enrichment sweep metrics.
	SweepRuns     prometheus.Counter
	SweepEnriched prometheus.Counter
	SweepFailures prometheus.Counter
	SweepDuration prometheus.Histogram
	SweepRunning  prometheus.Gauge

	// Notification metrics.
	NotificationsPublished *prometheus.CounterVec // labels: channel, outcome={ok,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GeocodeResolutions,
		m.GeocodeAPIDuration,
		m.CatalogLoads,
		m.SweepRuns,
		m.SweepEnriched,
		m.SweepFailures,
		m.SweepDuration,
		m.SweepRunning,
		m.NotificationsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeocodeResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_locator",
			Name:      "geocode_resolutions_total",
			Help:      "Forward geocode resolutions by tier and outcome.",
		}, []string{"tier", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "event_locator",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		CatalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_locator",
			Name:      "catalog_loads_total",
			Help:      "Catalog load attempts by tier and outcome.",
		}, []string{"tier", "outcome"}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_locator",
			Name:      "enrichment_sweeps_total",
			Help:      "Total enrichment sweep runs.",
		}),
		SweepEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_locator",
			Name:      "enrichment_enriched_total",
			Help:      "Total events enriched with a full address.",
		}),
		SweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_locator",
			Name:      "enrichment_failures_total",
			Help:      "Per-candidate enrichment failures (skipped, retried next sweep).",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "event_locator",
			Name:      "enrichment_sweep_duration_seconds",
			Help:      "Duration of a complete enrichment sweep.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		SweepRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "event_locator",
			Name:      "enrichment_sweep_running",
			Help:      "1 while an enrichment sweep is in flight.",
		}),
		NotificationsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_locator",
			Name:      "notifications_published_total",
			Help:      "Event notifications published by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
}
