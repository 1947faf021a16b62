package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// DirSource lists PDFs under a local directory tree. Keys are slash-separated
// paths relative to Root.
type DirSource struct {
	Root       string
	SkipHidden bool
	MaxBytes   int64 // 0 = unlimited
	logger     *slog.Logger
}

func NewDirSource(root string, skipHidden bool, maxBytes int64, logger *slog.Logger) *DirSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirSource{Root: root, SkipHidden: skipHidden, MaxBytes: maxBytes, logger: logger}
}

// List walks Root. Unreadable entries are counted and logged; the walk
// continues past them.
func (s *DirSource) List(ctx context.Context) ([]Item, ListStats, error) {
	if strings.TrimSpace(s.Root) == "" {
		return nil, ListStats{}, errors.New("root path is required")
	}

	var items []Item
	var stats ListStats

	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if p == s.Root {
				return walkErr
			}
			stats.Failed++
			s.logger.Warn("skipping unreadable path", "path", p, "error", walkErr)
			return nil
		}
		if d.IsDir() {
			if s.SkipHidden && p != s.Root && IsHidden(p) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if s.SkipHidden && IsHidden(p) {
			stats.Skipped++
			return nil
		}
		if !AllowedExt(filepath.Ext(p)) {
			stats.Skipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			stats.Failed++
			s.logger.Warn("stat failed", "path", p, "error", err)
			return nil
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		items = append(items, Item{Key: filepath.ToSlash(rel), Size: info.Size()})
		stats.Matched++
		return nil
	})
	if err != nil {
		return items, stats, fmt.Errorf("walk %s: %w", s.Root, err)
	}

	s.logger.Info("directory listed", "root", s.Root,
		"scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped, "failed", stats.Failed)
	return items, stats, nil
}

// Load reads Root/key.
func (s *DirSource) Load(_ context.Context, key string) (entity.Document, error) {
	p := filepath.Join(s.Root, filepath.FromSlash(key))
	return LoadFile(p, key, s.MaxBytes)
}

// LoadFile reads a PDF from disk as a Document named name.
func LoadFile(p, name string, maxBytes int64) (entity.Document, error) {
	if !AllowedExt(filepath.Ext(p)) {
		return entity.Document{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("not a pdf: %s", name), common.ErrUnsupportedFormat)
	}
	info, err := os.Stat(p)
	if err != nil {
		return entity.Document{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return entity.Document{}, common.NewAppError("TOO_LARGE",
			fmt.Sprintf("%s is %d bytes, limit %d", name, info.Size(), maxBytes), common.ErrTooLarge)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return entity.Document{}, fmt.Errorf("read %s: %w", name, err)
	}
	return entity.Document{Name: name, Content: b}, nil
}
