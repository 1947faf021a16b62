package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, doc entity.Document) entity.DocumentResult {
	if string(doc.Content) == "scanned" {
		return entity.DocumentResult{Document: doc.Name, Status: constants.DocumentStatusAcquisitionFailed, Error: "text acquisition failed"}
	}
	month := "March 2023"
	return entity.DocumentResult{
		Document: doc.Name,
		Status:   constants.DocumentStatusOK,
		Record: entity.ReportRecord{
			Month:   &month,
			Fasting: []entity.Reading{{Value: string(doc.Content), Unit: "mg/dl"}},
		},
	}
}

func testConfig() *common.Config {
	return &common.Config{
		Server: common.ServerConfig{
			AllowedOrigins:     []string{"http://localhost:3000"},
			MaxUploadBytes:     1 << 20,
			RateLimitPerSecond: 100,
			RateLimitBurst:     100,
		},
		Pipeline: common.PipelineConfig{Workers: 2, DocumentTimeout: time.Second},
	}
}

type part struct{ field, name, content string }

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, h http.Handler, target string, parts ...part) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUpload(t *testing.T) {
	h := New(testConfig(), stubRunner{}, nil, nil).Handler()

	t.Run("processes pdf parts in order and skips others", func(t *testing.T) {
		rec := doUpload(t, h, "/upload",
			part{"files", "a.pdf", "95"},
			part{"files", "notes.txt", "x"},
			part{"files", "b.PDF", "scanned"},
			part{"file", "c.pdf", "101"},
		)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 3)
		assert.Equal(t, "a.pdf", got[0]["file"])
		assert.Equal(t, "March 2023", got[0]["month"])
		assert.Equal(t, []any{"95 mg/dl"}, got[0]["fasting"])
		assert.Equal(t, "b.PDF", got[1]["file"])
		assert.Equal(t, "text acquisition failed", got[1]["error"])
		assert.Equal(t, "c.pdf", got[2]["file"])
	})

	t.Run("only non-pdf parts gives empty list", func(t *testing.T) {
		rec := doUpload(t, h, "/upload", part{"files", "scan.png", "x"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("no files", func(t *testing.T) {
		rec := doUpload(t, h, "/upload")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No files provided")
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("csv format", func(t *testing.T) {
		rec := doUpload(t, h, "/upload?format=csv", part{"files", "a.pdf", "95"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "a.pdf,March 2023,OK,Fasting,95,mg/dl,")
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := doUpload(t, h, "/upload?format=doc", part{"files", "a.pdf", "95"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestUpload_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 64
	h := New(cfg, stubRunner{}, nil, nil).Handler()

	rec := doUpload(t, h, "/upload", part{"files", "a.pdf", strings.Repeat("9", 1024)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpload_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimitPerSecond = 1
	cfg.Server.RateLimitBurst = 1
	h := New(cfg, stubRunner{}, nil, nil).Handler()

	first := doUpload(t, h, "/upload", part{"files", "a.pdf", "95"})
	second := doUpload(t, h, "/upload", part{"files", "a.pdf", "95"})
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"}))
	h := New(testConfig(), stubRunner{}, reg, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "probe_total")

	noMetrics := New(testConfig(), stubRunner{}, nil, nil).Handler()
	rec = httptest.NewRecorder()
	noMetrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h := New(testConfig(), stubRunner{}, nil, nil).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
