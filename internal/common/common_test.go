package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "go", cfg.OCR.NativeEngine)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, 3*time.Minute, cfg.Pipeline.DocumentTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("OCR_DPI", "200")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("DOCUMENT_TIMEOUT", "45s")
	t.Setenv("OCR_TSV_CONFIDENCE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("OCR_MAX_PAGES", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.DocumentTimeout)
	assert.True(t, cfg.OCR.EnableTSVConfidence)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 0, cfg.OCR.MaxPages)
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("STORAGE_MODE", "s3")
	t.Setenv("NATIVE_TEXT_ENGINE", "mupdf")
	t.Setenv("PIPELINE_WORKERS", "0")

	err := LoadConfig().Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "CONFIG_ERROR", CodeOf(err))
	assert.Contains(t, err.Error(), "NATIVE_TEXT_ENGINE")
	assert.Contains(t, err.Error(), "PIPELINE_WORKERS")
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerFrom(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithDocument(WithRequestID(context.Background(), "req-1"), "march.pdf")
	LoggerFrom(ctx, base).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "march.pdf", line["document"])

	assert.NotNil(t, LoggerFrom(context.Background(), nil))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestAppError(t *testing.T) {
	err := NewAppError("TOO_LARGE", "file exceeds limit", ErrTooLarge)
	wrapped := fmt.Errorf("load: %w", err)

	assert.Equal(t, "TOO_LARGE: file exceeds limit: payload too large", err.Error())
	assert.ErrorIs(t, wrapped, ErrTooLarge)
	assert.Equal(t, "TOO_LARGE", CodeOf(wrapped))
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Nil(t, WrapError(nil, "ignored"))
	assert.EqualError(t, WrapError(ErrInternal, "stage"), "stage: internal error")
}
