package io

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStatementLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stmts.json")
	data := `[{"type": "Activation", "subj": {"name": "A"}, "obj": {"name": "B"}, "matches_hash": 1}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l := NewFileStatementLoader(path)
	stmts, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stmts) != 1 || stmts[0].Hash != 1 {
		t.Fatalf("Load() = %+v", stmts)
	}

	// Served from cache after the file is gone.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	again, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("cached Load() error = %v", err)
	}
	if len(again) != 1 {
		t.Fatalf("cached Load() = %+v", again)
	}
}

func TestFileStatementLoaderMissing(t *testing.T) {
	l := NewFileStatementLoader(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatalf("Load() error = nil, want error")
	}
}
