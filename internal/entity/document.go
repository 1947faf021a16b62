package entity

import (
	"fmt"
	"os"
	"path/filepath"
)

// Document is one PDF handed to the pipeline. The caller owns it for the
// duration of a single Process call; nothing keeps a reference afterwards.
type Document struct {
	Name    string `json:"name"`
	Content []byte `json:"-"`
}

// Size returns the byte length of the document.
func (d Document) Size() int64 { return int64(len(d.Content)) }

// Materialize writes the document into dir (os.TempDir when empty) for tools that
// only accept a path. The returned cleanup removes the file and is never nil.
func (d Document) Materialize(dir string) (string, func(), error) {
	f, err := os.CreateTemp(dir, "report-*.pdf")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp pdf: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(d.Content); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp pdf: %w", err)
	}
	return filepath.Clean(path), cleanup, nil
}
