package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core/dates"
	"github.com/joseph-ayodele/sugar-reports/internal/core/fields"
	"github.com/joseph-ayodele/sugar-reports/internal/core/ocr"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
	"github.com/joseph-ayodele/sugar-reports/internal/metrics"
)

const tracerName = "github.com/joseph-ayodele/sugar-reports/internal/core"

// TextAcquirer turns a document into text. *ocr.Extractor is the production
// implementation.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc entity.Document) (ocr.Result, error)
}

// Processor coordinates text acquisition (stage 1) then month and reading
// extraction (stage 2). Everything it holds is read-only after construction,
// so one Processor serves any number of goroutines.
type Processor struct {
	logger   *slog.Logger
	acquirer TextAcquirer
	fields   *fields.Extractor
	metrics  *metrics.Pipeline
	tracer   trace.Tracer
}

type Option func(*Processor)

// WithMetrics records per-document outcomes on m.
func WithMetrics(m *metrics.Pipeline) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tracer = t
		}
	}
}

func NewProcessor(logger *slog.Logger, acquirer TextAcquirer, res *fields.Resources, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:   logger,
		acquirer: acquirer,
		fields:   fields.NewExtractor(res),
		tracer:   otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process runs the pipeline for one document. When no text can be acquired
// the *ocr.AcquisitionError is returned and no record is produced. A record
// with no month and no readings is a valid result.
func (p *Processor) Process(ctx context.Context, doc entity.Document) (entity.ReportRecord, error) {
	ctx, span := p.tracer.Start(ctx, "process", trace.WithAttributes(
		attribute.String("document", doc.Name),
		attribute.Int64("bytes", doc.Size()),
	))
	defer span.End()

	ctx = common.WithDocument(ctx, doc.Name)
	logger := common.LoggerFrom(ctx, p.logger)
	start := time.Now()

	// 1) text acquisition
	text, err := p.acquire(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquisition failed")
		logger.Error("processor.acquire.failed", "error", err)
		p.metrics.ObserveDocument(string(statusOf(err)), time.Since(start))
		return entity.ReportRecord{}, err
	}

	// 2) month + readings over the same text
	rec := p.extract(ctx, text)

	p.metrics.ObserveDocument(string(constants.DocumentStatusOK), time.Since(start))
	p.metrics.AddReadings(string(constants.Fasting), len(rec.Fasting))
	p.metrics.AddReadings(string(constants.PostLunch), len(rec.PostLunch))
	logger.Info("processed document",
		"month", rec.MonthOrEmpty(),
		"fasting", len(rec.Fasting),
		"post_lunch", len(rec.PostLunch),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// Run is Process packaged as a DocumentResult, for callers that aggregate a
// batch and keep going past failures.
func (p *Processor) Run(ctx context.Context, doc entity.Document) entity.DocumentResult {
	start := time.Now()
	rec, err := p.Process(ctx, doc)
	res := entity.DocumentResult{
		Document: doc.Name,
		Status:   constants.DocumentStatusOK,
		Record:   rec,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Status = statusOf(err)
		res.Error = err.Error()
	}
	return res
}

func (p *Processor) acquire(ctx context.Context, doc entity.Document) (string, error) {
	ctx, span := p.tracer.Start(ctx, "acquire")
	defer span.End()

	res, err := p.acquirer.Acquire(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(
		attribute.String("method", res.Method),
		attribute.Int("pages", res.Pages),
		attribute.Float64("confidence", float64(res.Confidence)),
	)
	p.metrics.ObserveAcquisition(res.Method)

	common.LoggerFrom(ctx, p.logger).Debug("processor acquire success",
		"method", res.Method,
		"pages", res.Pages,
		"confidence", res.Confidence,
		"warnings", len(res.Warnings),
	)
	return ocr.Normalize(res.Text), nil
}

func (p *Processor) extract(ctx context.Context, text string) entity.ReportRecord {
	_, span := p.tracer.Start(ctx, "extract")
	defer span.End()

	month := dates.ExtractMonth(text)
	found := p.fields.Extract(text)
	rec := fields.Assemble(month, found.Fasting, found.PostLunch)

	span.SetAttributes(
		attribute.Bool("month_found", month != nil),
		attribute.Int("raw_readings", found.Len()),
	)
	return rec
}

func statusOf(err error) constants.DocumentStatus {
	if errors.Is(err, ocr.ErrAcquisitionFailed) {
		return constants.DocumentStatusAcquisitionFailed
	}
	return constants.DocumentStatusFailed
}
