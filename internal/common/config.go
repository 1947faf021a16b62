package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	OCR           OCRConfig
	Pipeline      PipelineConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

// ServerConfig holds the upload service configuration
type ServerConfig struct {
	HTTPAddr           string
	GRPCHealthAddr     string // empty disables the gRPC health endpoint
	AllowedOrigins     []string
	MaxUploadBytes     int64
	RateLimitPerSecond int
	RateLimitBurst     int
	ShutdownTimeout    time.Duration
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	NativeEngine        string // "go" | "pdftotext"
	Pdftotext           string
	Pdftoppm            string
	Tesseract           string
	TesseractLang       string
	TessdataDir         string
	DPI                 int
	MaxPages            int
	PSM                 int
	OEM                 int
	EnableTSVConfidence bool
	TempDir             string
}

// PipelineConfig bounds concurrent document processing
type PipelineConfig struct {
	Workers         int
	DocumentTimeout time.Duration
}

// StorageConfig selects where batch documents come from
type StorageConfig struct {
	Mode       string // "local" | "s3"
	LocalDir   string
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
}

// ObservabilityConfig holds logging and metrics configuration
type ObservabilityConfig struct {
	LogLevel       string
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables, reading a .env file
// in the working directory first when one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			HTTPAddr:           getEnv("HTTP_ADDR", ":5000"),
			GRPCHealthAddr:     getEnv("GRPC_HEALTH_ADDR", ""),
			AllowedOrigins:     getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 64<<20),
			RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		OCR: OCRConfig{
			NativeEngine:        getEnv("NATIVE_TEXT_ENGINE", "go"),
			Pdftotext:           getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:       getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			PSM:                 getEnvAsInt("OCR_PSM", 0),
			OEM:                 getEnvAsInt("OCR_OEM", 0),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", false),
			TempDir:             getEnv("OCR_TEMP_DIR", ""),
		},
		Pipeline: PipelineConfig{
			Workers:         getEnvAsInt("PIPELINE_WORKERS", 4),
			DocumentTimeout: getEnvAsDuration("DOCUMENT_TIMEOUT", 3*time.Minute),
		},
		Storage: StorageConfig{
			Mode:       getEnv("STORAGE_MODE", "local"),
			LocalDir:   getEnv("REPORTS_DIR", "./reports"),
			S3Bucket:   getEnv("S3_BUCKET", ""),
			S3Prefix:   getEnv("S3_PREFIX", ""),
			S3Region:   getEnv("AWS_REGION", "us-east-1"),
			S3Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("NATIVE_TEXT_ENGINE", c.OCR.NativeEngine, OneOf("go", "pdftotext")).
		Field("OCR_DPI", c.OCR.DPI, Positive).
		Field("TESSERACT_LANG", c.OCR.TesseractLang, Required).
		Field("PIPELINE_WORKERS", c.Pipeline.Workers, Positive).
		Field("STORAGE_MODE", c.Storage.Mode, OneOf("local", "s3"))
	if c.Storage.Mode == "s3" {
		v.Field("S3_BUCKET", c.Storage.S3Bucket, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the JSON logger every binary uses and installs it as default.
func NewLogger(level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}
