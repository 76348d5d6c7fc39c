package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/biograph/internal/config"
	"github.com/OFFIS-RIT/biograph/pkg/table"

	"github.com/tidwall/gjson"
)

func newTestConfig() config.Config {
	return config.Config{Table: table.DefaultConfig()}
}

func do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := New(newTestConfig())
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := gjson.Get(rec.Body.String(), "status").String(); got != "ok" {
		t.Fatalf("status field = %q, want ok", got)
	}
}

func TestSchema(t *testing.T) {
	rec := do(t, http.MethodGet, "/schema", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, prop := range []string{"statements", "exclude_types", "max_complex_size", "sign_table", "scorers"} {
		if !gjson.Get(body, "properties."+prop).Exists() {
			t.Fatalf("schema lacks property %q: %s", prop, body)
		}
	}
}

const assembleRequest = `{
  "statements": [
    {"type": "Activation", "subj": {"name": "A", "db_refs": {"HGNC": "1"}}, "obj": {"name": "B", "db_refs": {"HGNC": "2"}}, "belief": 0.9, "matches_hash": 1,
     "evidence": [{"source_api": "reach"}]},
    {"type": "Inhibition", "subj": {"name": "A"}, "obj": {"name": "B"}, "belief": 0.5, "matches_hash": 2},
    {"type": "Complex", "members": [{"name": "B"}, {"name": "C"}], "matches_hash": 3}
  ],
  "scorers": ["belief", "evidence_count"]
}`

func TestAssemble(t *testing.T) {
	rec := do(t, http.MethodPost, "/assemble", assembleRequest)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := rec.Body.String()

	checks := map[string]int64{
		"statements":              3,
		"nodes":                   3,
		"edges":                   4,
		"digraph_edges":           3,
		"signed_edges":            2,
		"table_stats.rows":        4,
		"graph_stats.rows":        4,
		"graph_stats.nodes_added": 3,
	}
	for path, want := range checks {
		if got := gjson.Get(body, path).Int(); got != want {
			t.Fatalf("%s = %d, want %d (%s)", path, got, want, body)
		}
	}
	if gjson.Get(body, "network_id").String() == "" {
		t.Fatalf("network_id missing: %s", body)
	}
}

func TestAssembleOverrides(t *testing.T) {
	req := `{
	  "statements": [
	    {"type": "Activation", "subj": {"name": "A"}, "obj": {"name": "B"}, "matches_hash": 1},
	    {"type": "Complex", "members": [{"name": "B"}, {"name": "C"}], "matches_hash": 3}
	  ],
	  "exclude_types": ["Complex"],
	  "sign_table": {"Activation": 1}
	}`
	rec := do(t, http.MethodPost, "/assemble", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := rec.Body.String()
	if got := gjson.Get(body, "edges").Int(); got != 1 {
		t.Fatalf("edges = %d, want 1", got)
	}
	if got := gjson.Get(body, "table_stats.excluded").Int(); got != 1 {
		t.Fatalf("excluded = %d, want 1", got)
	}
	if got := gjson.Get(body, "signed_edges").Int(); got != 1 {
		t.Fatalf("signed_edges = %d, want 1", got)
	}
}

func TestAssembleRejectsInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing statements", `{}`},
		{"negative complex size", `{"statements": [], "max_complex_size": -1}`},
		{"bad sign", `{"statements": [], "sign_table": {"Activation": 2}}`},
		{"unknown scorer", `{"statements": [], "scorers": ["pagerank"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, http.MethodPost, "/assemble", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestAssembleEmpty(t *testing.T) {
	rec := do(t, http.MethodPost, "/assemble", `{"statements": []}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := gjson.Get(rec.Body.String(), "nodes").Int(); got != 0 {
		t.Fatalf("nodes = %d, want 0", got)
	}
}
