package graph

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/biograph/pkg/logger"
	"github.com/OFFIS-RIT/biograph/pkg/table"
)

// SchemaError reports a row table that lacks mandatory columns. It means
// the table was produced by an incompatible upstream step; no node or edge
// is inserted when it is returned.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("row table is missing mandatory columns: %s", strings.Join(e.Missing, ", "))
}

// Stats counts what happened to each row during Build or Merge.
type Stats struct {
	Rows          int `json:"rows"`
	SkippedRows   int `json:"skipped_rows"`
	NodesAdded    int `json:"nodes_added"`
	EdgesAdded    int `json:"edges_added"`
	EdgesReplaced int `json:"edges_replaced"`
}

// Build materializes a new network from a row table. It returns a
// *SchemaError before touching any row if mandatory columns are missing.
func Build(t *table.Table) (*Network, Stats, error) {
	n := NewNetwork()
	stats, err := n.Merge(t)
	if err != nil {
		return nil, stats, err
	}
	return n, stats, nil
}

// Merge applies the rows of t to the network in order. A node is created
// the first time its name is seen and keeps the attributes of that first
// row. An edge is keyed by (source, target, hash); a later row with the same
// key replaces the earlier attributes, so merging an updated table again is
// idempotent. Rows without both node names are skipped.
func (n *Network) Merge(t *table.Table) (Stats, error) {
	var stats Stats
	if t == nil {
		return stats, &SchemaError{Missing: table.MandatoryColumns}
	}
	if missing := t.MissingColumns(); len(missing) > 0 {
		return stats, &SchemaError{Missing: missing}
	}

	for i, row := range t.Rows {
		stats.Rows++
		if strings.TrimSpace(row.AgentAName) == "" || strings.TrimSpace(row.AgentBName) == "" {
			logger.Debug("[Network] Skipping row without node name", "row", i, "hash", row.Hash)
			stats.SkippedRows++
			continue
		}

		attrsA, attrsB, edgeAttrs := splitExtra(row.Extra)
		if n.AddNode(Node{Name: row.AgentAName, Namespace: row.AgentANamespace, ID: row.AgentAID, Attrs: attrsA}) {
			stats.NodesAdded++
		}
		if n.AddNode(Node{Name: row.AgentBName, Namespace: row.AgentBNamespace, ID: row.AgentBID, Attrs: attrsB}) {
			stats.NodesAdded++
		}

		replaced := n.SetEdge(Edge{
			Source:        row.AgentAName,
			Target:        row.AgentBName,
			Hash:          row.Hash,
			Type:          row.StatementType,
			EvidenceCount: row.EvidenceCount,
			Belief:        row.Belief,
			Sign:          row.Sign,
			SourceCounts:  row.SourceCounts,
			Attrs:         edgeAttrs,
		})
		if replaced {
			stats.EdgesReplaced++
		} else {
			stats.EdgesAdded++
		}
	}

	if stats.SkippedRows > 0 {
		logger.Warn("[Network] Skipped rows without node names", "skipped", stats.SkippedRows)
	}
	logger.Info("[Network] Merged row table", "network_id", n.ID, "rows", stats.Rows, "nodes", n.NumNodes(), "edges", n.NumEdges())

	return stats, nil
}

// splitExtra sorts extra row attributes into A-side node, B-side node and
// edge attributes. Side prefixes are stripped.
func splitExtra(extra map[string]any) (map[string]any, map[string]any, map[string]any) {
	if len(extra) == 0 {
		return nil, nil, nil
	}
	var a, b, e map[string]any
	for k, v := range extra {
		switch {
		case strings.HasPrefix(k, table.PrefixAgentA):
			if a == nil {
				a = make(map[string]any)
			}
			a[strings.TrimPrefix(k, table.PrefixAgentA)] = v
		case strings.HasPrefix(k, table.PrefixAgentB):
			if b == nil {
				b = make(map[string]any)
			}
			b[strings.TrimPrefix(k, table.PrefixAgentB)] = v
		default:
			if e == nil {
				e = make(map[string]any)
			}
			e[k] = v
		}
	}
	return a, b, e
}
