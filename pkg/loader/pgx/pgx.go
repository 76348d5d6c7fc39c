package pgx

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/loader"
	"github.com/OFFIS-RIT/biograph/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidwall/gjson"
)

// DefaultQuery selects one JSON statement per row.
const DefaultQuery = "SELECT stmt FROM statements ORDER BY id"

// Querier is the subset of pgxpool.Pool used by the loader.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStatementLoader reads statements stored as json or jsonb, one
// per row, from the first column of a query.
type PostgresStatementLoader struct {
	db    Querier
	query string
	args  []any
}

// NewPostgresStatementLoader creates a loader. An empty query falls back to
// DefaultQuery.
func NewPostgresStatementLoader(db Querier, query string, args ...any) *PostgresStatementLoader {
	if query == "" {
		query = DefaultQuery
	}
	return &PostgresStatementLoader{db: db, query: query, args: args}
}

// NewPool opens a connection pool for the given database URL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// Load runs the query and decodes every row. Rows that are not valid
// statements are skipped.
func (l *PostgresStatementLoader) Load(ctx context.Context) ([]*common.Statement, error) {
	rows, err := l.db.Query(ctx, l.query, l.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	stmts := make([]*common.Statement, 0)
	skipped := 0
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		if !gjson.ValidBytes(raw) {
			skipped++
			continue
		}
		stmt, err := loader.ParseStatement(gjson.ParseBytes(raw))
		if err != nil {
			logger.Debug("[Loader] skipping row", "err", err)
			skipped++
			continue
		}
		stmts = append(stmts, stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read statements: %w", err)
	}

	if skipped > 0 {
		logger.Warn("[Loader] skipped undecodable rows", "count", skipped)
	}
	return stmts, nil
}
