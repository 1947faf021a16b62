package core

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core/fields"
	"github.com/joseph-ayodele/sugar-reports/internal/core/ocr"
	"github.com/joseph-ayodele/sugar-reports/internal/metrics"
)

// OCRConfig maps the env-level OCR section onto the extractor's config.
func OCRConfig(c common.OCRConfig) ocr.Config {
	return ocr.Config{
		NativeEngine:        c.NativeEngine,
		Pdftotext:           c.Pdftotext,
		Pdftoppm:            c.Pdftoppm,
		Tesseract:           c.Tesseract,
		TesseractLang:       c.TesseractLang,
		TessdataDir:         c.TessdataDir,
		DPI:                 c.DPI,
		MaxPages:            c.MaxPages,
		EnableTSVConfidence: c.EnableTSVConfidence,
		PSM:                 c.PSM,
		OEM:                 c.OEM,
		TempDir:             c.TempDir,
	}
}

// Build wires a production Processor: exec-backed acquisition, the default
// rule set, and metrics on reg when enabled (reg may be nil).
func Build(cfg *common.Config, logger *slog.Logger, reg prometheus.Registerer) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := fields.LoadResources()
	if err != nil {
		return nil, fmt.Errorf("load extraction resources: %w", err)
	}

	acquirer := ocr.NewExtractor(OCRConfig(cfg.OCR), logger)

	var opts []Option
	if reg != nil && cfg.Observability.MetricsEnabled {
		opts = append(opts, WithMetrics(metrics.NewPipeline(reg)))
	}
	return NewProcessor(logger, acquirer, res, opts...), nil
}
