// Package metrics exposes Prometheus instrumentation for the focusfeed engine.
//
// A *Metrics is registered on a caller-supplied registerer. Every method is
// safe to call on a nil *Metrics, which lets components accept metrics as an
// optional dependency.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/focusfeed/internal/model"
)

const namespace = "focusfeed"

// Metrics holds the engine's collectors.
type Metrics struct {
	scans         *prometheus.CounterVec
	items         *prometheus.CounterVec
	annotations   *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	fetchFailures prometheus.Counter
	notifications *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scan passes by mode (classify or clear).",
		}, []string{"mode"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Items examined by classify scans, by verdict.",
		}, []string{"verdict"}),
		annotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_changes_total",
			Help:      "Annotation changes applied to items, by action (marked or cleared).",
		}, []string{"action"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time a scan pass held the document.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_fetch_failures_total",
			Help:      "GET_STATE requests that failed or went unanswered.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Push notifications received from the settings store, by message type.",
		}, []string{"type"}),
	}

	collectors := []prometheus.Collector{
		m.scans, m.items, m.annotations, m.scanDuration, m.fetchFailures, m.notifications,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// ObserveScan records the outcome of one scan pass.
func (m *Metrics) ObserveScan(r *model.ScanResult) {
	if m == nil || r == nil {
		return
	}
	m.scans.WithLabelValues(r.Mode.String()).Inc()
	m.scanDuration.Observe(r.Duration.Seconds())

	if r.Mode == model.ModeClassify {
		m.items.WithLabelValues(model.VerdictRelevant.String()).Add(float64(r.Relevant))
		m.items.WithLabelValues(model.VerdictIrrelevant.String()).Add(float64(r.Irrelevant))
		m.items.WithLabelValues(model.VerdictSkipped.String()).Add(float64(r.Skipped))
	}
	m.annotations.WithLabelValues("marked").Add(float64(r.Marked))
	m.annotations.WithLabelValues("cleared").Add(float64(r.Cleared))
}

// FetchFailed records a failed or unanswered GET_STATE request.
func (m *Metrics) FetchFailed() {
	if m == nil {
		return
	}
	m.fetchFailures.Inc()
}

// Notification records a received push notification.
func (m *Metrics) Notification(messageType string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(messageType).Inc()
}
