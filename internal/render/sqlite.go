package render

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mvp-joe/depgraph/internal/graph"
)

// SQLiteFileName is the name of the snapshot database.
const SQLiteFileName = "depgraph.db"

// schemaStatements create the snapshot tables. Each run appends a snapshot;
// earlier runs are kept so graphs can be compared over time.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS nodes (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		label TEXT NOT NULL,
		color TEXT,
		PRIMARY KEY (run_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		imports TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(run_id, from_id)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(run_id, to_id)`,
}

// sqliteWriter appends a graph snapshot to depgraph.db.
type sqliteWriter struct{}

func (w *sqliteWriter) Format() string { return "sqlite" }

func (w *sqliteWriter) Write(ctx context.Context, outDir string, g *graph.Graph) ([]string, error) {
	path := filepath.Join(outDir, SQLiteFileName)

	db, err := OpenSnapshotDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := WriteSnapshot(ctx, db, g); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// OpenSnapshotDB opens (or creates) the snapshot database and its schema.
func OpenSnapshotDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return db, nil
}

// WriteSnapshot stores g as a new run in a single transaction and returns the run id.
func WriteSnapshot(ctx context.Context, db *sql.DB, g *graph.Graph) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	runID := uuid.NewString()
	_, err = sq.Insert("runs").
		Columns("id", "generated_at", "node_count", "edge_count").
		Values(runID, time.Now().UTC().Format(time.RFC3339), len(g.Nodes), len(g.Edges)).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for i, n := range g.Nodes {
		_, err := sq.Insert("nodes").
			Columns("run_id", "position", "id", "label", "color").
			Values(runID, i, n.ID, n.Label, nullable(n.Color)).
			RunWith(tx).
			Exec()
		if err != nil {
			return "", fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range g.Edges {
		_, err := sq.Insert("edges").
			Columns("run_id", "position", "from_id", "to_id", "imports").
			Values(runID, i, e.From, e.To, strings.Join(e.Imports, ",")).
			RunWith(tx).
			Exec()
		if err != nil {
			return "", fmt.Errorf("failed to insert edge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// LatestRun returns the id of the most recent snapshot.
func LatestRun(db *sql.DB) (string, error) {
	var runID string
	err := sq.Select("id").
		From("runs").
		OrderBy("generated_at DESC", "rowid DESC").
		Limit(1).
		RunWith(db).
		QueryRow().
		Scan(&runID)
	if err != nil {
		return "", fmt.Errorf("failed to read latest run: %w", err)
	}
	return runID, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
