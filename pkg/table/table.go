package table

import (
	"slices"

	"github.com/OFFIS-RIT/biograph/pkg/common"
)

// Column names of a relation row table.
const (
	ColAgentAName      = "agA_name"
	ColAgentBName      = "agB_name"
	ColAgentANamespace = "agA_ns"
	ColAgentAID        = "agA_id"
	ColAgentBNamespace = "agB_ns"
	ColAgentBID        = "agB_id"
	ColStatementType   = "stmt_type"
	ColEvidenceCount   = "evidence_count"
	ColHash            = "stmt_hash"
	ColBelief          = "belief"
	ColSourceCounts    = "source_counts"
	ColSign            = "initial_sign"
)

// Extra columns with these prefixes describe the A or B side node rather
// than the edge.
const (
	PrefixAgentA = "agA_"
	PrefixAgentB = "agB_"
)

// MandatoryColumns must all be present for a table to be turned into a
// network.
var MandatoryColumns = []string{
	ColAgentAName,
	ColAgentBName,
	ColAgentANamespace,
	ColAgentAID,
	ColAgentBNamespace,
	ColAgentBID,
	ColStatementType,
	ColEvidenceCount,
	ColHash,
	ColBelief,
}

// StandardColumns are the columns Build always produces.
var StandardColumns = append(slices.Clone(MandatoryColumns), ColSourceCounts, ColSign)

// Row is one directed pairwise relation derived from a statement.
type Row struct {
	AgentAName      string
	AgentANamespace string
	AgentAID        string
	AgentBName      string
	AgentBNamespace string
	AgentBID        string

	StatementType string
	EvidenceCount int
	Hash          int64
	Belief        float64
	Sign          common.Sign
	SourceCounts  map[string]int

	// Extra holds caller-defined columns keyed by column name.
	Extra map[string]any
}

// Table is an ordered sequence of rows plus the names of the columns it
// carries. Row order matters: networks are built from it front to back.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable returns an empty table with the standard columns followed by
// the given extra columns.
func NewTable(extra ...string) *Table {
	cols := slices.Clone(StandardColumns)
	for _, name := range extra {
		if !slices.Contains(cols, name) {
			cols = append(cols, name)
		}
	}
	return &Table{Columns: cols}
}

// Append adds rows at the end of the table.
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// MissingColumns returns the mandatory columns the table does not declare,
// in MandatoryColumns order.
func (t *Table) MissingColumns() []string {
	var missing []string
	for _, col := range MandatoryColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Concat joins tables in order. Columns are the union of all inputs in
// first-seen order.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		total += len(t.Rows)
		for _, col := range t.Columns {
			if !slices.Contains(out.Columns, col) {
				out.Columns = append(out.Columns, col)
			}
		}
	}
	out.Rows = make([]Row, 0, total)
	for _, t := range tables {
		if t == nil {
			continue
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}

// Stats counts what happened to each statement during Build.
type Stats struct {
	Statements       int `json:"statements"`
	Excluded         int `json:"excluded"`
	TooFewAgents     int `json:"too_few_agents"`
	OversizedComplex int `json:"oversized_complex"`
	MissingSubject   int `json:"missing_subject"`
	UnhandledArity   int `json:"unhandled_arity"`
	UnmappedSign     int `json:"unmapped_sign"`
	Rows             int `json:"rows"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Statements += o.Statements
	s.Excluded += o.Excluded
	s.TooFewAgents += o.TooFewAgents
	s.OversizedComplex += o.OversizedComplex
	s.MissingSubject += o.MissingSubject
	s.UnhandledArity += o.UnhandledArity
	s.UnmappedSign += o.UnmappedSign
	s.Rows += o.Rows
}

// Skipped returns how many statements produced no rows.
func (s Stats) Skipped() int {
	return s.Excluded + s.TooFewAgents + s.OversizedComplex + s.MissingSubject + s.UnhandledArity
}
