package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

const (
	MethodNativeText = "pdf-text"
	MethodOCR        = "pdf-ocr"
)

type Config struct {
	NativeEngine string // "go" (default) | "pdftotext"
	Pdftotext    string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm     string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract    string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	EnableTSVConfidence bool
	PSM                 int // e.g., 6 is good for uniform block of text
	OEM                 int // 1 = LSTM; leave 0 to use default

	TempDir string // where scoped rasterization dirs are created; "" = os.TempDir()
}

type Result struct {
	Text       string
	Pages      int
	SourceType string
	Method     string // MethodNativeText | MethodOCR
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Extractor acquires text from a PDF: native text layer first, OCR when the
// layer is missing or unreadable. It holds no per-document state.
type Extractor struct {
	cfg    Config
	runner Runner
	native TextLayer
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec-based command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithTextLayer replaces the native text-layer engine chosen from Config.
func WithTextLayer(l TextLayer) Option {
	return func(e *Extractor) {
		if l != nil {
			e.native = l
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	if e.native == nil {
		switch cfg.NativeEngine {
		case "pdftotext":
			e.native = &pdftotextLayer{bin: cfg.Pdftotext, tempDir: cfg.TempDir, runner: e.runner, logger: logger}
		default:
			e.native = goTextLayer{}
		}
	}
	return e
}

// Acquire returns the document's text. A native-layer error is logged and
// treated as "no text"; only when OCR also comes back empty does it fail, with
// an *AcquisitionError.
func (e *Extractor) Acquire(ctx context.Context, doc entity.Document) (Result, error) {
	start := time.Now()
	logger := common.LoggerFrom(common.WithDocument(ctx, doc.Name), e.logger)
	logger.Debug("starting text acquisition", "bytes", doc.Size(), "engine", e.native.Name())

	text, pages, nativeErr := e.native.Text(ctx, doc)
	if nativeErr != nil {
		logger.Warn("native text extraction failed; treating as empty",
			"tier", "native", "engine", e.native.Name(), "error", nativeErr)
		text = ""
	}
	if strings.TrimSpace(text) != "" {
		return Result{
			Text:       text,
			Pages:      pages,
			SourceType: constants.PDF,
			Method:     MethodNativeText,
			Duration:   time.Since(start),
			Confidence: heuristicConfidence(text),
		}, nil
	}

	logger.Warn("no usable native text; falling back to ocr", "tier", "ocr", "pages", pages)
	res, ocrErr := e.pdfToOCR(ctx, doc, logger)
	res.SourceType = constants.PDF
	res.Method = MethodOCR
	res.Language = e.cfg.TesseractLang
	res.Duration = time.Since(start)
	if ocrErr == nil && strings.TrimSpace(res.Text) != "" {
		return res, nil
	}

	acqErr := &AcquisitionError{Document: doc.Name, NativeErr: nativeErr, OCRErr: ocrErr}
	logger.Error("text acquisition failed", "tier", "ocr", "warnings", res.Warnings, "error", acqErr)
	res.Text = ""
	return res, acqErr
}
