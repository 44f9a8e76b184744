package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GalleryMetrics records propagation runs and gallery config builds.
// A nil *GalleryMetrics is valid and records nothing.
type GalleryMetrics struct {
	children    *prometheus.CounterVec
	mediaLinked prometheus.Counter
	errors      *prometheus.CounterVec
	buildTime   prometheus.Histogram
}

// NewGalleryMetrics registers the collectors on reg. A nil registerer yields
// a no-op value.
func NewGalleryMetrics(reg prometheus.Registerer) *GalleryMetrics {
	if reg == nil {
		return &GalleryMetrics{}
	}
	m := &GalleryMetrics{
		children: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colorgallery_propagation_children_total",
			Help: "Children handled by propagation, by result.",
		}, []string{"result"}),
		mediaLinked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colorgallery_propagation_media_linked_total",
			Help: "Media records linked onto children.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colorgallery_propagation_errors_total",
			Help: "Errors recorded in propagation reports, by operation.",
		}, []string{"operation"}),
		buildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "colorgallery_config_build_seconds",
			Help:    "Time spent building a product gallery config.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.children, m.mediaLinked, m.errors, m.buildTime)
	return m
}

func (m *GalleryMetrics) ChildDone(result string) {
	if m == nil || m.children == nil {
		return
	}
	m.children.WithLabelValues(result).Inc()
}

func (m *GalleryMetrics) MediaLinked(n int) {
	if m == nil || m.mediaLinked == nil || n <= 0 {
		return
	}
	m.mediaLinked.Add(float64(n))
}

func (m *GalleryMetrics) Errors(operation string, n int) {
	if m == nil || m.errors == nil || n <= 0 {
		return
	}
	m.errors.WithLabelValues(operation).Add(float64(n))
}

func (m *GalleryMetrics) ObserveBuild(d time.Duration) {
	if m == nil || m.buildTime == nil {
		return
	}
	m.buildTime.Observe(d.Seconds())
}
