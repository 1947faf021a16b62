// Package metrics exposes pipeline counters on a caller-supplied registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sugar_reports"

// Pipeline groups the per-document metrics. A nil *Pipeline is valid and
// records nothing.
type Pipeline struct {
	documents    *prometheus.CounterVec
	acquisitions *prometheus.CounterVec
	readings     *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewPipeline registers the pipeline metrics on reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"status"}),
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_total",
			Help:      "Successful text acquisitions, by method.",
		}, []string{"method"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Deduplicated readings emitted, by category.",
		}, []string{"category"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Wall time to process one document.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		}),
	}
	reg.MustRegister(p.documents, p.acquisitions, p.readings, p.duration)
	return p
}

func (p *Pipeline) ObserveDocument(status string, d time.Duration) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(status).Inc()
	p.duration.Observe(d.Seconds())
}

func (p *Pipeline) ObserveAcquisition(method string) {
	if p == nil {
		return
	}
	p.acquisitions.WithLabelValues(method).Inc()
}

func (p *Pipeline) AddReadings(category string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.readings.WithLabelValues(category).Add(float64(n))
}
