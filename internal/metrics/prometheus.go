package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/jgivc/pageindex/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "pageindex"
)

type PrometheusRecorder struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	textFile string

	entries        prometheus.Gauge
	versionMinor   prometheus.Gauge
	lastBuild      prometheus.Gauge
	buildDuration  prometheus.Histogram
	buildFailures  prometheus.Counter
	fallbacksTotal *prometheus.CounterVec
}

// NewPrometheusRecorder registers the collectors on reg. Flush writes reg to
// textFile; an empty textFile makes Flush a no-op.
func NewPrometheusRecorder(reg *prometheus.Registry, textFile string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		registry: reg,
		textFile: textFile,
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Number of pages in the last generated index.",
		}),
		versionMinor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "version_minor",
			Help:      "Minor version of the last generated index.",
		}),
		lastBuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of successful builds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		buildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_failures_total",
			Help:      "Number of builds that could not write the index.",
		}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_fallbacks_total",
			Help:      "Pages that fell back to default metadata, by reason.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{
		r.entries, r.versionMinor, r.lastBuild, r.buildDuration, r.buildFailures, r.fallbacksTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("cannot register collector: %w", err)
		}
	}

	return r, nil
}

func (r *PrometheusRecorder) IncExtractionFallback(reason string) {
	r.fallbacksTotal.WithLabelValues(reason).Inc()
}

func (r *PrometheusRecorder) ObserveBuild(result *entity.BuildResult, duration time.Duration) {
	r.entries.Set(float64(result.EntryCount))
	r.versionMinor.Set(float64(result.Version.Minor))
	r.lastBuild.SetToCurrentTime()
	r.buildDuration.Observe(duration.Seconds())
}

func (r *PrometheusRecorder) IncBuildFailure() {
	r.buildFailures.Inc()
}

func (r *PrometheusRecorder) Flush() error {
	if r.textFile == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := prometheus.WriteToTextfile(r.textFile, r.registry); err != nil {
		return fmt.Errorf("cannot write metrics to %s: %w", r.textFile, err)
	}

	return nil
}
