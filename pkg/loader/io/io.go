package io

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// FileStatementLoader loads a JSON statement dump from the local
// filesystem. Decoded statements are cached per path.
type FileStatementLoader struct {
	path string

	cache   map[string][]*common.Statement
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewFileStatementLoader creates a loader for the JSON file at path.
func NewFileStatementLoader(path string) *FileStatementLoader {
	return &FileStatementLoader{
		path:  path,
		cache: make(map[string][]*common.Statement),
	}
}

// Load reads and decodes the file. It implements loader.StatementLoader.
// Concurrent calls share a single read.
func (l *FileStatementLoader) Load(ctx context.Context) ([]*common.Statement, error) {
	l.cacheMu.RLock()
	if cached, ok := l.cache[l.path]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(l.path, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read statements file: %w", err)
		}
		stmts, err := loader.ParseStatements(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", l.path, err)
		}

		l.cacheMu.Lock()
		l.cache[l.path] = stmts
		l.cacheMu.Unlock()

		return stmts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*common.Statement), nil
}
