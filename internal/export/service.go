package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// Format is an output encoding for a batch of results.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", common.NewAppError("INVALID_FORMAT", fmt.Sprintf("unknown export format %q", s), common.ErrInvalidInput)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Service renders batch results as JSON, CSV or XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Export dispatches on format.
func (s *Service) Export(format Format, results []entity.DocumentResult) ([]byte, error) {
	start := time.Now()
	var (
		out []byte
		err error
	)
	switch format {
	case FormatJSON:
		out, err = s.JSON(results)
	case FormatCSV:
		out, err = s.CSV(results)
	case FormatXLSX:
		out, err = s.XLSX(results)
	default:
		_, err = ParseFormat(string(format))
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.ok",
		"format", string(format),
		"documents", len(results),
		"bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// JSON renders the results array and checks it against the wire schema.
func (s *Service) JSON(results []entity.DocumentResult) ([]byte, error) {
	if results == nil {
		results = []entity.DocumentResult{}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	if err := ValidateResultsJSON(b); err != nil {
		return nil, err
	}
	return b, nil
}

type csvRow struct {
	File     string `csv:"file"`
	Month    string `csv:"month"`
	Status   string `csv:"status"`
	Category string `csv:"category"`
	Value    string `csv:"value"`
	Unit     string `csv:"unit"`
	Error    string `csv:"error"`
}

// CSV writes one row per reading. A document with no readings, or that
// failed, still gets a single row so every input is accounted for.
func (s *Service) CSV(results []entity.DocumentResult) ([]byte, error) {
	rows := make([]*csvRow, 0, len(results))
	for _, r := range results {
		base := csvRow{File: r.Document, Status: string(r.Status), Error: r.Error}
		if !r.OK() {
			rows = append(rows, &base)
			continue
		}
		base.Month = r.Record.MonthOrEmpty()
		n := 0
		for _, c := range constants.AllCategories() {
			for _, rd := range r.Record.Readings(c) {
				row := base
				row.Category = c.Label()
				row.Value = rd.Value
				row.Unit = rd.Unit
				rows = append(rows, &row)
				n++
			}
		}
		if n == 0 {
			rows = append(rows, &base)
		}
	}
	b, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	return b, nil
}

// XLSX writes one row per document. The first reading of each category is
// also written as a number so the sheet can be charted directly.
func (s *Service) XLSX(results []entity.DocumentResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", "error", err)
		}
	}()

	const sheet = "Readings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"File",
		"Month",
		"Status",
		"Fasting",
		"Post Lunch",
		"Fasting (first)",
		"Post Lunch (first)",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Document)
		write(3, string(r.Status))
		if r.OK() {
			write(2, r.Record.MonthOrEmpty())
			write(4, joinReadings(r.Record.Fasting))
			write(5, joinReadings(r.Record.PostLunch))
			if v, ok := firstNumeric(r.Record.Fasting); ok {
				write(6, v)
			}
			if v, ok := firstNumeric(r.Record.PostLunch); ok {
				write(7, v)
			}
		}
		write(8, r.Error)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40) // file
	_ = f.SetColWidth(sheet, "B", "C", 18) // month, status
	_ = f.SetColWidth(sheet, "D", "E", 32) // readings
	_ = f.SetColWidth(sheet, "F", "G", 16) // numeric
	_ = f.SetColWidth(sheet, "H", "H", 60) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func joinReadings(in []entity.Reading) string {
	parts := make([]string, len(in))
	for i, r := range in {
		parts[i] = r.String()
	}
	return strings.Join(parts, "; ")
}

// firstNumeric returns the first reading whose value parses as a decimal.
func firstNumeric(in []entity.Reading) (float64, bool) {
	for _, r := range in {
		d, err := decimal.NewFromString(r.Value)
		if err != nil {
			continue
		}
		return d.InexactFloat64(), true
	}
	return 0, false
}
