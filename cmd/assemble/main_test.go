package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/biograph/internal/config"
	"github.com/OFFIS-RIT/biograph/pkg/graph"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRunFromStatementsFile(t *testing.T) {
	path := writeFile(t, "stmts.json", `[
		{"type": "Activation", "subj": {"name": "A"}, "obj": {"name": "B"}, "matches_hash": 1},
		{"type": "Complex", "members": [{"name": "B"}, {"name": "C"}], "matches_hash": 2}
	]`)
	cfg := config.Config{Source: config.SourceFile, Path: path}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRunReturnsErrors(t *testing.T) {
	if err := run(context.Background(), config.Config{Source: config.SourceFile}); err == nil {
		t.Fatal("run() without STATEMENTS_PATH returned nil error")
	}

	path := writeFile(t, "rows.tsv", "agA_name\tagB_name\nA\tB\n")
	err := run(context.Background(), config.Config{RowTablePath: path})
	var schemaErr *graph.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("run() error = %v, want *graph.SchemaError", err)
	}
}
