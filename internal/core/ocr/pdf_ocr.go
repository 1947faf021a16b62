package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

var errNoPagesRendered = errors.New("no pages rendered")

// pdfToOCR rasterizes every page into a scoped temp dir and runs tesseract on each
// page in order. The temp dir is gone by the time it returns.
func (e *Extractor) pdfToOCR(ctx context.Context, doc entity.Document, logger *slog.Logger) (Result, error) {
	var warns []string

	expected, err := pageCount(doc)
	if err != nil {
		warns = append(warns, fmt.Sprintf("pdfcpu page count: %v", err))
		expected = 0
	}

	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "sr-pp-*")
	if err != nil {
		return Result{Warnings: warns}, fmt.Errorf("create raster dir: %w", err)
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove raster dir", "dir", path, "error", err)
		}
	}(tmpDir)

	inPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(inPath, doc.Content, 0o600); err != nil {
		return Result{Warnings: warns}, fmt.Errorf("stage pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-f 1 -l N] <in.pdf> <tmp/page>
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, inPath, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, logger, args...); err != nil {
		return Result{Warnings: append(warns, string(errb))}, fmt.Errorf("pdftoppm: %w", err)
	}

	// prefix-1.png, prefix-2.png, ... zero padded to a common width
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return Result{Warnings: append(warns, "pdftoppm produced no images")}, errNoPagesRendered
	}
	if expected > 0 && e.cfg.MaxPages == 0 && len(matches) != expected {
		warns = append(warns, fmt.Sprintf("rendered %d of %d pages", len(matches), expected))
	}

	var b strings.Builder
	var confSum float32
	var confN int
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img, logger)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		b.WriteString(txt)
		b.WriteString("\n")

		if e.cfg.EnableTSVConfidence {
			c, w, err := e.tesseractTSVConfidence(ctx, img, logger)
			warns = append(warns, w...)
			if err != nil {
				warns = append(warns, err.Error())
			} else if c > 0 {
				confSum += c
				confN++
			}
		}
	}

	text := b.String()
	var ocrConf float32
	if confN > 0 {
		ocrConf = confSum / float32(confN)
	}
	logger.Debug("ocr pages recognized", "pages", len(matches), "expected_pages", expected, "ocr_confidence", ocrConf)

	return Result{
		Text:       text,
		Pages:      len(matches),
		Warnings:   warns,
		Confidence: blendConfidence(ocrConf, heuristicConfidence(text)),
	}, nil
}

// pageCount asks pdfcpu for the page count; it also catches structurally broken
// files before anything is rasterized.
func pageCount(doc entity.Document) (int, error) {
	return api.PageCount(bytes.NewReader(doc.Content), model.NewDefaultConfiguration())
}
