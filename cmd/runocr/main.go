package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core"
	"github.com/joseph-ayodele/sugar-reports/internal/core/ocr"
	"github.com/joseph-ayodele/sugar-reports/internal/ingest"
)

// runocr runs text acquisition only for one PDF and prints the text.
func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Observability.LogLevel)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <report.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	doc, err := ingest.LoadFile(path, filepath.Base(path), 0)
	if err != nil {
		logger.Error("load document", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.DocumentTimeout)
	defer cancel()

	extractor := ocr.NewExtractor(core.OCRConfig(cfg.OCR), logger)

	start := time.Now()
	res, err := extractor.Acquire(ctx, doc)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "document", doc.Name, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"document", doc.Name,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"confidence", res.Confidence,
		"warnings", res.Warnings,
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(ocr.Normalize(res.Text))
}
