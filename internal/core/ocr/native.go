package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// TextLayer reads the machine-encoded text embedded in a PDF.
type TextLayer interface {
	Name() string
	// Text returns the concatenated page texts (each page followed by "\n") and
	// the number of pages seen.
	Text(ctx context.Context, doc entity.Document) (string, int, error)
}

// goTextLayer parses the PDF in-process.
type goTextLayer struct{}

func (goTextLayer) Name() string { return "go" }

func (goTextLayer) Text(ctx context.Context, doc entity.Document) (text string, pages int, err error) {
	// the parser panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Content), doc.Size())
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), pages, nil
}

// pdftotextLayer shells out to poppler's pdftotext.
type pdftotextLayer struct {
	bin     string
	tempDir string
	runner  Runner
	logger  *slog.Logger
}

func (*pdftotextLayer) Name() string { return "pdftotext" }

func (l *pdftotextLayer) Text(ctx context.Context, doc entity.Document) (string, int, error) {
	path, cleanup, err := doc.Materialize(l.tempDir)
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.bin, l.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}

	// a form feed terminates every page
	raw := strings.TrimSuffix(string(out), "\f")
	pageTexts := strings.Split(raw, "\f")
	var b strings.Builder
	for _, pt := range pageTexts {
		b.WriteString(pt)
		b.WriteString("\n")
	}
	return b.String(), len(pageTexts), nil
}
