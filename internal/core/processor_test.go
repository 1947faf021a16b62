package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core/fields"
	"github.com/joseph-ayodele/sugar-reports/internal/core/ocr"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
	"github.com/joseph-ayodele/sugar-reports/internal/metrics"
)

type stubAcquirer struct {
	texts map[string]string
}

func (s stubAcquirer) Acquire(_ context.Context, doc entity.Document) (ocr.Result, error) {
	text, ok := s.texts[doc.Name]
	if !ok {
		return ocr.Result{}, &ocr.AcquisitionError{Document: doc.Name}
	}
	return ocr.Result{Text: text, Method: ocr.MethodNativeText, Pages: 1}, nil
}

func newProcessor(t *testing.T, texts map[string]string, opts ...Option) *Processor {
	t.Helper()
	res, err := fields.LoadResources()
	require.NoError(t, err)
	return NewProcessor(nil, stubAcquirer{texts: texts}, res, opts...)
}

func TestProcessor_Process(t *testing.T) {
	p := newProcessor(t, map[string]string{
		"full.pdf": "Report Date: 05/03/2023\r\nFasting Blood Sugar 95 mg/dl\n" +
			"Fasting Blood Sugar 95 mg/dl\nPost\tLunch Blood Sugar 140\n" +
			"POSTPRANDIAL BLOOD SUGAR(GLUCOSE) PHOTOMETRY 140 mg/dL\n",
		"abbr.pdf":  "Collected 12 DEC 2022",
		"empty.pdf": "Patient: J. Doe\nNo results",
	})
	ctx := context.Background()

	t.Run("month and deduplicated readings", func(t *testing.T) {
		rec, err := p.Process(ctx, entity.Document{Name: "full.pdf"})
		require.NoError(t, err)
		require.NotNil(t, rec.Month)
		assert.Equal(t, "March 2023", *rec.Month)
		assert.Equal(t, []entity.Reading{{Value: "95", Unit: "mg/dl"}}, rec.Fasting)
		assert.ElementsMatch(t, []entity.Reading{
			{Value: "140"},
			{Value: "140", Unit: "mg/dL"},
		}, rec.PostLunch)
	})

	t.Run("abbreviated month is not expanded", func(t *testing.T) {
		rec, err := p.Process(ctx, entity.Document{Name: "abbr.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "Dec 2022", *rec.Month)
		assert.Empty(t, rec.Fasting)
	})

	t.Run("no matches is a valid record", func(t *testing.T) {
		rec, err := p.Process(ctx, entity.Document{Name: "empty.pdf"})
		require.NoError(t, err)
		assert.Nil(t, rec.Month)
		assert.Empty(t, rec.Fasting)
		assert.Empty(t, rec.PostLunch)
	})

	t.Run("acquisition failure returns no record", func(t *testing.T) {
		rec, err := p.Process(ctx, entity.Document{Name: "scan.pdf"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ocr.ErrAcquisitionFailed))
		var acqErr *ocr.AcquisitionError
		require.True(t, errors.As(err, &acqErr))
		assert.Equal(t, "scan.pdf", acqErr.Document)
		assert.Equal(t, entity.ReportRecord{}, rec)
	})
}

func TestProcessor_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := newProcessor(t, map[string]string{"ok.pdf": "fasting blood sugar 99"},
		WithMetrics(metrics.NewPipeline(reg)))

	ctx := common.WithRequestID(context.Background(), "req-1")

	ok := p.Run(ctx, entity.Document{Name: "ok.pdf"})
	assert.True(t, ok.OK())
	assert.Equal(t, "ok.pdf", ok.Document)
	assert.Equal(t, []entity.Reading{{Value: "99"}}, ok.Record.Fasting)
	assert.Empty(t, ok.Error)

	failed := p.Run(ctx, entity.Document{Name: "missing.pdf"})
	assert.False(t, failed.OK())
	assert.Equal(t, constants.DocumentStatusAcquisitionFailed, failed.Status)
	assert.Contains(t, failed.Error, "missing.pdf")
}

func TestProcessor_Concurrent(t *testing.T) {
	texts := map[string]string{
		"a.pdf": "01/02/2024 fasting blood glucose 88 mg/dl",
		"b.pdf": "15 Jun 2021 post lunch blood sugar 160",
	}
	p := newProcessor(t, texts)
	want := map[string]entity.ReportRecord{}
	for name := range texts {
		rec, err := p.Process(context.Background(), entity.Document{Name: name})
		require.NoError(t, err)
		want[name] = rec
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var mismatches []string
	for i := 0; i < 20; i++ {
		name := "a.pdf"
		if i%2 == 1 {
			name = "b.pdf"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := p.Process(context.Background(), entity.Document{Name: name})
			if err != nil || !assert.ObjectsAreEqual(want[name], rec) {
				mu.Lock()
				mismatches = append(mismatches, name)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Empty(t, mismatches)
	assert.Equal(t, "February 2024", *want["a.pdf"].Month)
	assert.Equal(t, "Jun 2021", *want["b.pdf"].Month)
}

func TestBuild(t *testing.T) {
	cfg := &common.Config{
		OCR:           common.OCRConfig{NativeEngine: "go"},
		Observability: common.ObservabilityConfig{MetricsEnabled: true},
	}
	p, err := Build(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NotNil(t, p.metrics)

	p, err = Build(cfg, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, p.metrics)
}
