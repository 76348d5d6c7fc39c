package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"

	"github.com/tidwall/gjson"
)

// ReadStats reports how many data lines ReadTable accepted and rejected.
type ReadStats struct {
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
}

// ReadTable parses a delimited row table with a header line, e.g. a table
// exported by an earlier run. Known columns fill the Row fields, the
// source_counts cell is a JSON object and every other column is kept as a
// string in Row.Extra. Columns holds the header verbatim, so missing
// mandatory columns are detected later by the network builder.
//
// Lines with unparseable values are skipped and counted as malformed.
func ReadTable(r io.Reader, delimiter rune) (*Table, ReadStats, error) {
	var stats ReadStats

	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, fmt.Errorf("row table is empty")
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read row table header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t := &Table{Columns: header}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Debug("[Table] Skipping unreadable line", "line", line, "err", err)
				stats.Malformed++
				continue
			}
			return nil, stats, fmt.Errorf("failed to read row table: %w", err)
		}
		if len(record) != len(header) {
			logger.Debug("[Table] Skipping line with wrong field count", "line", line, "fields", len(record), "want", len(header))
			stats.Malformed++
			continue
		}

		row, err := parseRow(header, record)
		if err != nil {
			logger.Debug("[Table] Skipping malformed line", "line", line, "err", err)
			stats.Malformed++
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	stats.Rows = len(t.Rows)

	if stats.Malformed > 0 {
		logger.Warn("[Table] Skipped malformed lines while reading row table", "malformed", stats.Malformed, "rows", stats.Rows)
	}
	return t, stats, nil
}

func parseRow(header []string, record []string) (Row, error) {
	row := Row{Sign: common.SignNone}
	for i, col := range header {
		cell := strings.TrimSpace(record[i])
		switch col {
		case ColAgentAName:
			row.AgentAName = cell
		case ColAgentANamespace:
			row.AgentANamespace = cell
		case ColAgentAID:
			row.AgentAID = cell
		case ColAgentBName:
			row.AgentBName = cell
		case ColAgentBNamespace:
			row.AgentBNamespace = cell
		case ColAgentBID:
			row.AgentBID = cell
		case ColStatementType:
			row.StatementType = cell
		case ColEvidenceCount:
			n, err := parseCount(cell)
			if err != nil {
				return Row{}, fmt.Errorf("%s: %w", col, err)
			}
			row.EvidenceCount = n
		case ColHash:
			h, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return Row{}, fmt.Errorf("%s: %w", col, err)
			}
			row.Hash = h
		case ColBelief:
			b, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Row{}, fmt.Errorf("%s: %w", col, err)
			}
			row.Belief = b
		case ColSign:
			s, err := ParseSign(cell)
			if err != nil {
				return Row{}, fmt.Errorf("%s: %w", col, err)
			}
			row.Sign = s
		case ColSourceCounts:
			counts, err := parseSourceCounts(cell)
			if err != nil {
				return Row{}, fmt.Errorf("%s: %w", col, err)
			}
			row.SourceCounts = counts
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]any)
			}
			row.Extra[col] = cell
		}
	}
	return row, nil
}

// parseCount accepts integers and integral floats such as "3.0".
func parseCount(cell string) (int, error) {
	if n, err := strconv.Atoi(cell); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid count %q", cell)
	}
	return int(f), nil
}

// ParseSign reads a sign cell. Empty, "nan" and "none" mean SignNone.
func ParseSign(cell string) (common.Sign, error) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "nan", "none", "null":
		return common.SignNone, nil
	case "0", "0.0":
		return common.SignPositive, nil
	case "1", "1.0":
		return common.SignNegative, nil
	}
	return common.SignNone, fmt.Errorf("invalid sign %q", cell)
}

func parseSourceCounts(cell string) (map[string]int, error) {
	if cell == "" {
		return nil, nil
	}
	if !gjson.Valid(cell) {
		return nil, fmt.Errorf("invalid JSON %q", cell)
	}
	res := gjson.Parse(cell)
	if !res.IsObject() {
		return nil, fmt.Errorf("expected object, got %q", cell)
	}
	counts := make(map[string]int)
	res.ForEach(func(key, value gjson.Result) bool {
		counts[key.String()] = int(value.Int())
		return true
	})
	return counts, nil
}
