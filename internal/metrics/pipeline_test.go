package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.ObserveDocument("OK", 200*time.Millisecond)
	p.ObserveDocument("OK", time.Second)
	p.ObserveDocument("ACQUISITION_FAILED", time.Second)
	p.ObserveAcquisition("pdf-ocr")
	p.AddReadings("FASTING", 2)
	p.AddReadings("POST_LUNCH", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.documents.WithLabelValues("OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.documents.WithLabelValues("ACQUISITION_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.acquisitions.WithLabelValues("pdf-ocr")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.readings.WithLabelValues("FASTING")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sugar_reports_document_duration_seconds")
}

func TestPipeline_Nil(t *testing.T) {
	var p *Pipeline
	assert.NotPanics(t, func() {
		p.ObserveDocument("OK", time.Second)
		p.ObserveAcquisition("pdf-text")
		p.AddReadings("FASTING", 1)
	})
}
