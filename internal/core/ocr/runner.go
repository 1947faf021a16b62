package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

// maxLoggedStderr bounds how much tool stderr ends up in a log record.
const maxLoggedStderr = 4 << 10

// Runner executes the poppler and tesseract binaries. Tests swap in a fake.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	tool := filepath.Base(name)
	logger = logger.With("tool", tool)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case err != nil && ctx.Err() != nil:
		logger.Warn("tool interrupted", "duration_ms", elapsed.Milliseconds(), "error", ctx.Err())
	case err != nil:
		logger.Error("tool failed",
			"duration_ms", elapsed.Milliseconds(),
			"args", args,
			"error", err,
			"stderr", truncate(stderr.String(), maxLoggedStderr),
		)
	default:
		logger.Debug("tool finished", "duration_ms", elapsed.Milliseconds(), "output_bytes", stdout.Len())
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
