package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core"
	"github.com/joseph-ayodele/sugar-reports/internal/core/async"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
	"github.com/joseph-ayodele/sugar-reports/internal/export"
	"github.com/joseph-ayodele/sugar-reports/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// checkSource rejects flag combinations that name no single document source.
func checkSource(dir, bucket string, watch bool) error {
	if dir != "" && bucket != "" {
		return errors.New("use either -dir or -s3-bucket, not both")
	}
	if watch && dir == "" {
		return errors.New("-watch requires -dir")
	}
	return nil
}

func main() {
	cfg := common.LoadConfig()

	// Parse CLI flags; env config supplies the defaults
	var (
		dir      = flag.String("dir", "", "directory of report PDFs (recursive)")
		bucket   = flag.String("s3-bucket", cfg.Storage.S3Bucket, "read report PDFs from this S3 bucket instead of -dir")
		prefix   = flag.String("s3-prefix", cfg.Storage.S3Prefix, "S3 key prefix")
		out      = flag.String("out", "", "output file (defaults to readings.<format> next to -dir, or stdout for S3)")
		format   = flag.String("format", "json", "output format: json | csv | xlsx")
		workers  = flag.Int("workers", cfg.Pipeline.Workers, "documents processed concurrently")
		timeout  = flag.Duration("timeout", cfg.Pipeline.DocumentTimeout, "per-document timeout")
		watch    = flag.Bool("watch", false, "after the initial pass, keep processing PDFs dropped into -dir")
		debounce = flag.Duration("debounce", 2*time.Second, "quiet period before a new file in -dir is processed (watch mode)")
	)
	flag.Parse()

	if *dir == "" && *bucket == "" {
		*dir = cfg.Storage.LocalDir
	}
	if err := checkSource(*dir, *bucket, *watch); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *out == "" && *dir != "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "readings."+string(outFormat))
	}

	cfg.Pipeline.Workers = *workers
	cfg.Pipeline.DocumentTimeout = *timeout
	if *bucket != "" {
		cfg.Storage.Mode = "s3"
		cfg.Storage.S3Bucket = *bucket
		cfg.Storage.S3Prefix = *prefix
	} else {
		cfg.Storage.Mode = "local"
		cfg.Storage.LocalDir = *dir
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Observability.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor, err := core.Build(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}

	src, err := newSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open document source", "error", err)
		os.Exit(1)
	}

	items, stats, err := src.List(ctx)
	if err != nil {
		logger.Error("failed to list documents", "error", err)
		os.Exit(1)
	}
	logger.Info("listing complete",
		"documents", len(items),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	jobs := make([]async.Job, 0, len(items))
	for _, it := range items {
		jobs = append(jobs, sourceJob(src, it.Key))
	}

	batch := async.NewBatch(processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithProcessTimeout(cfg.Pipeline.DocumentTimeout),
	)
	results, err := batch.Run(ctx, jobs)
	if err != nil {
		logger.Warn("batch interrupted", "error", err)
	}

	exporter := export.NewService(logger)
	if err := writeResults(exporter, outFormat, results, *out); err != nil {
		logger.Error("failed to write output", "error", err)
		os.Exit(1)
	}

	failures := 0
	for _, r := range results {
		if !r.OK() {
			failures++
		}
	}
	logger.Info("batch processing complete",
		"documents", len(results),
		"failures", failures,
		"output_file", *out)

	if !*watch || ctx.Err() != nil {
		return
	}
	runWatch(ctx, cfg, processor, exporter, outFormat, results, *out, *debounce, logger)
}

func newSource(ctx context.Context, cfg *common.Config, logger *slog.Logger) (ingest.Source, error) {
	if cfg.Storage.Mode == "s3" {
		client, err := ingest.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return ingest.NewS3Source(client, cfg.Storage.S3Bucket, cfg.Storage.S3Prefix, cfg.Server.MaxUploadBytes, logger)
	}
	return ingest.NewDirSource(cfg.Storage.LocalDir, true, cfg.Server.MaxUploadBytes, logger), nil
}

func sourceJob(src ingest.Source, key string) async.Job {
	return async.Job{Name: key, Load: func(ctx context.Context) (entity.Document, error) {
		return src.Load(ctx, key)
	}}
}

func writeResults(exporter *export.Service, format export.Format, results []entity.DocumentResult, out string) error {
	b, err := exporter.Export(format, results)
	if err != nil {
		return err
	}
	if out == "" || out == "-" {
		_, err = os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(out, b, 0o644)
}

// runWatch feeds new PDFs under the directory through a queue and rewrites
// the output after each result, until interrupted.
func runWatch(ctx context.Context, cfg *common.Config, processor *core.Processor, exporter *export.Service,
	format export.Format, initial []entity.DocumentResult, out string, debounce time.Duration, logger *slog.Logger) {

	root := cfg.Storage.LocalDir
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      []string{root},
		Debounce:   debounce,
		SkipHidden: true,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	collected := newResultSet(initial)
	var writeMu sync.Mutex
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithProcessTimeout(cfg.Pipeline.DocumentTimeout),
		async.WithSink(func(r entity.DocumentResult) {
			writeMu.Lock()
			defer writeMu.Unlock()
			snapshot := collected.put(r)
			if err := writeResults(exporter, format, snapshot, out); err != nil {
				logger.Error("failed to rewrite output", "error", err)
			}
		}),
	)
	logger.Info("watching for new reports", "dir", root)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			queue.Shutdown(shutdownCtx)
			cancel()
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		case p, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			rel, err := filepath.Rel(root, p)
			if err != nil || strings.HasPrefix(rel, "..") {
				rel = p
			}
			name := filepath.ToSlash(rel)
			job := async.Job{Name: name, Load: func(context.Context) (entity.Document, error) {
				return ingest.LoadFile(p, name, cfg.Server.MaxUploadBytes)
			}}
			if err := queue.Enqueue(ctx, job); err != nil {
				logger.Warn("enqueue failed", "document", name, "error", err)
			}
		}
	}
}
