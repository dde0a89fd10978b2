// Package depgraph is the scan entry point: it wires file collection,
// import extraction, path resolution and graph assembly together.
package depgraph

import (
	"context"
	"fmt"
	"iter"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/depgraph/internal/alias"
	"github.com/mvp-joe/depgraph/internal/config"
	"github.com/mvp-joe/depgraph/internal/discovery"
	"github.com/mvp-joe/depgraph/internal/extract"
	"github.com/mvp-joe/depgraph/internal/graph"
	"github.com/mvp-joe/depgraph/internal/resolve"
	"golang.org/x/sync/errgroup"
)

// ProgressReporter receives scan progress.
type ProgressReporter interface {
	OnDiscoveryComplete(totalFiles int)
	OnFileProcessed(fileName string)
	OnScanComplete(nodeCount, edgeCount int, duration time.Duration)
}

// Scanner builds dependency graphs for one configuration.
type Scanner struct {
	cfg      *config.Config
	progress ProgressReporter
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithProgress configures progress reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(s *Scanner) {
		s.progress = progress
	}
}

// NewScanner creates a scanner. cfg is read, never modified.
func NewScanner(cfg *config.Config, opts ...Option) *Scanner {
	s := &Scanner{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildDependencyGraph scans sourceRoot/sourceSubdir and returns its graph.
func BuildDependencyGraph(ctx context.Context, sourceRoot, sourceSubdir string, cfg *config.Config, opts ...Option) (*graph.Graph, error) {
	return NewScanner(cfg, opts...).Build(ctx, sourceRoot, sourceSubdir)
}

// Build scans the tree and assembles the graph.
func (s *Scanner) Build(ctx context.Context, sourceRoot, sourceSubdir string) (*graph.Graph, error) {
	startTime := time.Now()

	sourceRoot, err := absRoot(sourceRoot)
	if err != nil {
		return nil, err
	}

	records, err := s.Scan(ctx, sourceRoot, sourceSubdir)
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(filepath.Join(sourceRoot, sourceSubdir),
		graph.WithExtension(s.cfg.Extension),
		graph.WithExcludeExternal(s.cfg.ExcludeExternal),
	)
	g := builder.Build(records)

	if s.progress != nil {
		s.progress.OnScanComplete(len(g.Nodes), len(g.Edges), time.Since(startTime))
	}

	return g, nil
}

// Scan collects the files below sourceRoot/sourceSubdir and returns their
// import records in file discovery order.
//
// Only a missing or unreadable scan root fails the scan. Unreadable files
// and malformed statements are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, sourceRoot, sourceSubdir string) ([]graph.ImportRecord, error) {
	sourceRoot, err := absRoot(sourceRoot)
	if err != nil {
		return nil, err
	}

	include, exclude, err := s.cfg.Patterns()
	if err != nil {
		return nil, err
	}

	aliases, err := alias.Load(sourceRoot, s.cfg.Tsconfig)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	collector, err := discovery.NewCollector(include, exclude, s.cfg.IgnoreDirs)
	if err != nil {
		return nil, err
	}

	files, err := collector.Collect(filepath.Join(sourceRoot, sourceSubdir))
	if err != nil {
		return nil, fmt.Errorf("failed to collect source files: %w", err)
	}

	if s.progress != nil {
		s.progress.OnDiscoveryComplete(len(files))
	}

	resolver, err := resolve.New(sourceRoot, aliases, s.cfg.Extension)
	if err != nil {
		return nil, err
	}
	defer resolver.Close()

	perFile, err := s.scanFiles(ctx, files, resolver)
	if err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	for _, fileRecords := range perFile {
		records = append(records, fileRecords...)
	}
	return records, nil
}

// scanFiles extracts every file, in parallel when more than one worker is
// configured. Results are indexed by discovery order either way.
func (s *Scanner) scanFiles(ctx context.Context, files []string, resolver *resolve.Resolver) ([][]graph.ImportRecord, error) {
	results := make([][]graph.ImportRecord, len(files))

	if s.cfg.Workers <= 1 {
		for i, file := range files {
			// Check for cancellation
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			results[i] = scanFile(file, resolver)
			s.fileProcessed(file)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scanFile(file, resolver)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, file := range files {
		s.fileProcessed(file)
	}
	return results, nil
}

// absRoot makes sourceRoot absolute so importer paths, the builder's scope
// prefix and alias targets all share one form.
func absRoot(sourceRoot string) (string, error) {
	abs, err := filepath.Abs(sourceRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source root %s: %w", sourceRoot, err)
	}
	return abs, nil
}

func (s *Scanner) fileProcessed(file string) {
	if s.progress != nil {
		s.progress.OnFileProcessed(filepath.Base(file))
	}
}

// scanFile extracts and resolves the imports of one file. An unreadable
// file is logged and contributes no records.
func scanFile(file string, resolver *resolve.Resolver) []graph.ImportRecord {
	content, err := os.ReadFile(file)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", file, err)
		return nil
	}
	return importRecords(filepath.Clean(file), extract.Statements(string(content)), resolver)
}

// importRecords parses and resolves raw statements found in importer.
// Malformed statements are logged and skipped.
func importRecords(importer string, statements iter.Seq[string], resolver *resolve.Resolver) []graph.ImportRecord {
	var records []graph.ImportRecord
	for raw := range statements {
		st, err := extract.Parse(raw)
		if err != nil {
			log.Printf("Warning: skipping import in %s: %v", importer, err)
			continue
		}

		target := resolver.Resolve(st.Specifier, importer)
		records = append(records, graph.ImportRecord{
			Importer: importer,
			Imports:  st.Imports,
			Target:   target.Path,
			Resolved: target.IsResolved(),
		})
	}
	return records
}
