// Package render writes a dependency graph to the output directory in one
// or more formats.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/mvp-joe/depgraph/internal/graph"
)

// LockFileName is created in the output directory while writing.
const LockFileName = ".depgraph.lock"

// ErrUnknownFormat is returned by NewWriter for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrOutputLocked is returned when another depgraph process holds the output lock.
var ErrOutputLocked = errors.New("output directory is locked by another depgraph process")

// Writer persists a graph in one format.
type Writer interface {
	// Format returns the format name (html, json, dot, sqlite).
	Format() string

	// Write writes g into outDir and returns the paths it wrote.
	Write(ctx context.Context, outDir string, g *graph.Graph) ([]string, error)
}

// NewWriter returns the writer for format.
func NewWriter(format string) (Writer, error) {
	switch format {
	case "html":
		return &htmlWriter{}, nil
	case "json":
		return &jsonWriter{}, nil
	case "dot":
		return &dotWriter{}, nil
	case "sqlite":
		return &sqliteWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteAll creates outDir if needed, takes the output lock and runs the
// writer of every format in order.
func WriteAll(ctx context.Context, outDir string, formats []string, g *graph.Graph) ([]string, error) {
	if g == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}

	writers := make([]Writer, 0, len(formats))
	for _, format := range formats {
		w, err := NewWriter(format)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(outDir, LockFileName))
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire output lock: %w", err)
	}
	if !locked {
		return nil, ErrOutputLocked
	}
	defer lock.Unlock()

	var written []string
	for _, w := range writers {
		paths, err := w.Write(ctx, outDir, g)
		if err != nil {
			return written, fmt.Errorf("failed to write %s output: %w", w.Format(), err)
		}
		written = append(written, paths...)
	}
	return written, nil
}

// writeAtomic writes data to a temp file in the same directory and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	// Atomic rename (POSIX guarantees atomicity)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
