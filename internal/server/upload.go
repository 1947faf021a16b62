package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core/async"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
	"github.com/joseph-ayodele/sugar-reports/internal/export"
)

const (
	requestIDHeader = "X-Request-ID"
	maxMemory       = 32 << 20
)

// uploadFields are the multipart fields read, in order.
var uploadFields = []string{"files", "file"}

// handleUpload processes every .pdf part of a multipart upload. Parts with
// other extensions are skipped. The response has one entry per processed
// document, in upload order; a document that failed is an entry with an
// "error" field and does not fail the request.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(requestIDHeader, requestID)
	ctx := common.WithRequestID(r.Context(), requestID)
	logger := common.LoggerFrom(ctx, s.logger)

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.maxUploadBytes > 0 {
		if r.ContentLength > s.maxUploadBytes {
			logger.Warn("upload too large", "content_length", r.ContentLength, "limit", s.maxUploadBytes)
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("upload too large", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		logger.Warn("invalid multipart upload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var parts []*multipart.FileHeader
	for _, field := range uploadFields {
		parts = append(parts, r.MultipartForm.File[field]...)
	}
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	jobs := make([]async.Job, 0, len(parts))
	for _, fh := range parts {
		if !constants.IsAllowedExt(filepath.Ext(fh.Filename)) {
			logger.Info("skipping non-pdf upload", "filename", fh.Filename)
			continue
		}
		jobs = append(jobs, async.Job{Name: fh.Filename, Load: partLoader(fh)})
	}
	logger.Info("upload received", "parts", len(parts), "documents", len(jobs))

	results, err := s.batch.Run(ctx, jobs)
	if err != nil {
		logger.Warn("upload interrupted", "error", err)
		return
	}

	body, err := s.exporter.Export(format, results)
	if err != nil {
		logger.Error("render upload response", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render results")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="readings.%s"`, format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func partLoader(fh *multipart.FileHeader) async.Loader {
	return func(_ context.Context) (entity.Document, error) {
		f, err := fh.Open()
		if err != nil {
			return entity.Document{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return entity.Document{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		return entity.Document{Name: fh.Filename, Content: b}, nil
	}
}
