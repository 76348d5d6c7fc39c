package pgx

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRows struct {
	data [][]byte
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*[]byte)) = r.data[r.pos-1]
	return nil
}

type fakeDB struct {
	rows      *fakeRows
	err       error
	lastQuery string
	lastArgs  []any
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.lastQuery = sql
	db.lastArgs = args
	if db.err != nil {
		return nil, db.err
	}
	return db.rows, nil
}

func TestPostgresStatementLoader(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]byte{
		[]byte(`{"type": "Activation", "subj": {"name": "A"}, "obj": {"name": "B"}, "matches_hash": 1}`),
		[]byte(`broken`),
		[]byte(`{"no_type": 1}`),
		[]byte(`{"type": "Complex", "members": [{"name": "A"}, {"name": "C"}], "matches_hash": 2}`),
	}}}

	l := NewPostgresStatementLoader(db, "", "corpus")
	stmts, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stmts) != 2 || stmts[0].Hash != 1 || stmts[1].Hash != 2 {
		t.Fatalf("Load() = %+v", stmts)
	}
	if db.lastQuery != DefaultQuery {
		t.Fatalf("query = %q, want %q", db.lastQuery, DefaultQuery)
	}
	if len(db.lastArgs) != 1 || db.lastArgs[0] != "corpus" {
		t.Fatalf("args = %v", db.lastArgs)
	}
}

func TestPostgresStatementLoaderErrors(t *testing.T) {
	queryErr := errors.New("connection refused")
	l := NewPostgresStatementLoader(&fakeDB{err: queryErr}, "SELECT 1")
	if _, err := l.Load(context.Background()); !errors.Is(err, queryErr) {
		t.Fatalf("Load() error = %v, want %v", err, queryErr)
	}

	rowsErr := errors.New("stream reset")
	l = NewPostgresStatementLoader(&fakeDB{rows: &fakeRows{err: rowsErr}}, "SELECT 1")
	if _, err := l.Load(context.Background()); !errors.Is(err, rowsErr) {
		t.Fatalf("Load() error = %v, want %v", err, rowsErr)
	}
}
