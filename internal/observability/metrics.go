package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the location
// workflow.
type Metrics struct {
	LocationRuns     *prometheus.CounterVec   // labels: program={hyp2000,nlloc}, outcome={success,error}
	LocationDuration *prometheus.HistogramVec // labels: program={hyp2000,nlloc}
	FocmecRuns       *prometheus.CounterVec   // labels: outcome={success,no_solution,error}
	DroppedReadings  *prometheus.CounterVec   // labels: reason={no_pick}

	DuplicatePicksRemoved prometheus.Counter
	StationMagnitudes     prometheus.Counter

	PhasesUsed prometheus.Histogram
}

// NewMetrics creates and registers all workflow metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LocationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seispick",
			Name:      "location_runs_total",
			Help:      "Location program runs by program and outcome.",
		}, []string{"program", "outcome"}),
		LocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seispick",
			Name:      "location_duration_seconds",
			Help:      "Duration of a complete encode-locate-decode cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"program"}),
		FocmecRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seispick",
			Name:      "focmec_runs_total",
			Help:      "Focal mechanism search runs by outcome.",
		}, []string{"outcome"}),
		DroppedReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seispick",
			Name:      "dropped_readings_total",
			Help:      "Readings dropped while encoding or decoding, by reason.",
		}, []string{"reason"}),
		DuplicatePicksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seispick",
			Name:      "duplicate_picks_removed_total",
			Help:      "Picks removed because another pick held the same trace and phase.",
		}),
		StationMagnitudes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seispick",
			Name:      "station_magnitudes_total",
			Help:      "Station magnitudes computed from amplitude readings.",
		}),
		PhasesUsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seispick",
			Name:      "phases_used",
			Help:      "Number of phases the locator used per solution.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
	}

	prometheus.MustRegister(
		m.LocationRuns,
		m.LocationDuration,
		m.FocmecRuns,
		m.DroppedReadings,
		m.DuplicatePicksRemoved,
		m.StationMagnitudes,
		m.PhasesUsed,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LocationRuns:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "seispick", Name: "location_runs_total"}, []string{"program", "outcome"}),
		LocationDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "seispick", Name: "location_duration_seconds"}, []string{"program"}),
		FocmecRuns:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "seispick", Name: "focmec_runs_total"}, []string{"outcome"}),
		DroppedReadings:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "seispick", Name: "dropped_readings_total"}, []string{"reason"}),
		DuplicatePicksRemoved: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "seispick", Name: "duplicate_picks_removed_total"}),
		StationMagnitudes:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "seispick", Name: "station_magnitudes_total"}),
		PhasesUsed:            prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "seispick", Name: "phases_used"}),
	}
}
