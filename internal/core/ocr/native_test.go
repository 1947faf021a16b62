package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// onePagePDF builds a minimal single-page PDF. An empty text gives a blank page.
func onePagePDF(text string) []byte {
	var content string
	if text != "" {
		content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func TestGoTextLayer_RealPDF(t *testing.T) {
	doc := entity.Document{Name: "digital.pdf", Content: onePagePDF("Fasting Blood Sugar 95 mg/dl")}

	text, pages, err := goTextLayer{}.Text(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.Equal(t, "Fasting Blood Sugar 95 mg/dl", strings.TrimSpace(text))

	n, err := pageCount(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGoTextLayer_BlankPage(t *testing.T) {
	doc := entity.Document{Name: "blank.pdf", Content: onePagePDF("")}

	text, pages, err := goTextLayer{}.Text(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Empty(t, strings.TrimSpace(text))

	n, err := pageCount(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAcquire_RealPDF(t *testing.T) {
	t.Run("digital page never runs ocr", func(t *testing.T) {
		runner := &fakeRunner{}
		x := NewExtractor(Config{TempDir: t.TempDir()}, nil, WithRunner(runner))

		res, err := x.Acquire(context.Background(), entity.Document{
			Name:    "digital.pdf",
			Content: onePagePDF("Fasting Blood Sugar 95 mg/dl"),
		})
		require.NoError(t, err)
		assert.Equal(t, MethodNativeText, res.Method)
		assert.Contains(t, res.Text, "Fasting Blood Sugar 95 mg/dl")
		assert.Empty(t, runner.calls)
	})

	t.Run("blank page with empty ocr fails", func(t *testing.T) {
		runner := &fakeRunner{pages: 1, pageText: func(string) string { return "" }}
		x := NewExtractor(Config{TempDir: t.TempDir()}, nil, WithRunner(runner))

		res, err := x.Acquire(context.Background(), entity.Document{Name: "blank.pdf", Content: onePagePDF("")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAcquisitionFailed))
		assert.Empty(t, res.Text)
		assert.Equal(t, 1, runner.count("pdftoppm"))
		assert.Equal(t, 1, runner.count("tesseract"))

		var acqErr *AcquisitionError
		require.True(t, errors.As(err, &acqErr))
		assert.NoError(t, acqErr.NativeErr)
	})
}
