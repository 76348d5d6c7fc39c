package loader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a statement payload is not valid JSON or
// is neither a statement object nor an array of them.
var ErrInvalidJSON = errors.New("invalid statement JSON")

// StatementLoader retrieves statements from an upstream source.
// Implementations may read local files, cloud storage or databases.
type StatementLoader interface {
	Load(ctx context.Context) ([]*common.Statement, error)
}

// ParseStatements decodes a JSON array of statements (a single statement
// object is accepted too). Entries that cannot be decoded are skipped and
// logged; the order of the remaining statements is preserved.
func ParseStatements(data []byte) ([]*common.Statement, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	res := gjson.ParseBytes(data)
	switch {
	case res.IsObject():
		stmt, err := ParseStatement(res)
		if err != nil {
			return nil, err
		}
		return []*common.Statement{stmt}, nil
	case res.IsArray():
	default:
		return nil, ErrInvalidJSON
	}

	var stmts []*common.Statement
	skipped := 0
	idx := 0
	res.ForEach(func(_, value gjson.Result) bool {
		stmt, err := ParseStatement(value)
		if err != nil {
			logger.Debug("[Loader] Skipping undecodable statement", "index", idx, "err", err)
			skipped++
		} else {
			stmts = append(stmts, stmt)
		}
		idx++
		return true
	})
	if skipped > 0 {
		logger.Warn("[Loader] Skipped undecodable statements", "skipped", skipped, "decoded", len(stmts))
	}
	return stmts, nil
}

// ParseStatement decodes one statement object. Agent fields are read from
// the keys used by the statement type: subj/obj for regulations, enz/sub
// for modifications, gef/ras and gap/ras for GTPase regulators, members for
// complexes, subj/obj events with a delta polarity for influences and
// subj/obj_from/obj_to for conversions.
//
// A missing belief defaults to 1. A missing matches_hash is replaced by a
// hash of the compacted statement JSON.
func ParseStatement(res gjson.Result) (*common.Statement, error) {
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: statement is not an object", ErrInvalidJSON)
	}
	stmtType := res.Get("type").String()
	if stmtType == "" {
		return nil, fmt.Errorf("%w: statement has no type", ErrInvalidJSON)
	}

	stmt := &common.Statement{
		Type:   stmtType,
		Belief: 1,
		Hash:   parseHash(res),
	}
	if b := res.Get("belief"); b.Exists() {
		stmt.Belief = b.Float()
	}
	res.Get("evidence").ForEach(func(_, ev gjson.Result) bool {
		stmt.Evidence = append(stmt.Evidence, common.Evidence{
			SourceAPI: ev.Get("source_api").String(),
			Text:      ev.Get("text").String(),
			PMID:      ev.Get("pmid").String(),
		})
		return true
	})

	switch common.CategoryOf(stmtType) {
	case common.CategoryDirected:
		subjKey, objKey := directedKeys(stmtType)
		stmt.Subject = parseAgent(res.Get(subjKey))
		stmt.Objects = []*common.Agent{parseAgent(res.Get(objKey))}
	case common.CategoryComplex:
		stmt.Members = parseAgents(res.Get("members"))
	case common.CategoryInfluence:
		subj := res.Get("subj")
		stmt.Subject = parseAgent(subj)
		stmt.SubjectPolarity = parsePolarity(subj, res.Get("subj_delta"))
		obj := res.Get("obj")
		stmt.Objects = parseAgents(obj)
		if obj.IsArray() {
			if first := obj.Array(); len(first) > 0 {
				stmt.ObjectPolarity = parsePolarity(first[0], res.Get("obj_delta"))
			}
		} else {
			stmt.ObjectPolarity = parsePolarity(obj, res.Get("obj_delta"))
		}
	case common.CategoryConversion:
		stmt.Subject = parseAgent(res.Get("subj"))
		stmt.From = parseAgents(res.Get("obj_from"))
		stmt.To = parseAgents(res.Get("obj_to"))
	case common.CategoryGeneric:
		for _, key := range genericKeys {
			stmt.Members = append(stmt.Members, parseAgents(res.Get(key))...)
		}
	}

	return stmt, nil
}

var genericKeys = []string{"subj", "enz", "agent", "gef", "gap", "obj", "sub", "ras", "members"}

func directedKeys(stmtType string) (string, string) {
	switch {
	case stmtType == "Gef":
		return "gef", "ras"
	case stmtType == "Gap":
		return "gap", "ras"
	case common.IsModification(stmtType):
		return "enz", "sub"
	default:
		return "subj", "obj"
	}
}

// parseHash reads matches_hash as a JSON integer or a decimal string.
// Missing or unparseable values fall back to a content hash, so distinct
// statements never collapse onto a shared zero hash.
func parseHash(res gjson.Result) int64 {
	h := res.Get("matches_hash")
	switch h.Type {
	case gjson.Number:
		if v, err := strconv.ParseInt(h.Raw, 10, 64); err == nil {
			return v
		}
		logger.Debug("[Loader] Unparseable matches_hash, using content hash", "value", h.Raw)
	case gjson.String:
		if v, err := strconv.ParseInt(strings.TrimSpace(h.Str), 10, 64); err == nil {
			return v
		}
		logger.Debug("[Loader] Unparseable matches_hash, using content hash", "value", h.Str)
	case gjson.Null:
	default:
		if h.Exists() {
			logger.Debug("[Loader] Unsupported matches_hash type, using content hash", "value", h.Raw)
		}
	}
	return int64(xxhash.Sum64String(res.Get("@ugly").Raw))
}

// parseAgents reads an agent or an array of agents. JSON null entries are
// kept as nil agents.
func parseAgents(res gjson.Result) []*common.Agent {
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	if !res.IsArray() {
		return []*common.Agent{parseAgent(res)}
	}
	var agents []*common.Agent
	for _, item := range res.Array() {
		agents = append(agents, parseAgent(item))
	}
	return agents
}

// parseAgent reads an agent object. Events wrap their agent in "concept".
func parseAgent(res gjson.Result) *common.Agent {
	if !res.IsObject() {
		return nil
	}
	if concept := res.Get("concept"); concept.IsObject() {
		res = concept
	}

	ag := &common.Agent{
		Name:   res.Get("name").String(),
		DBRefs: make(map[string][]common.Grounding),
	}
	res.Get("db_refs").ForEach(func(ns, value gjson.Result) bool {
		if refs := parseGroundings(value); len(refs) > 0 {
			ag.DBRefs[ns.String()] = refs
		}
		return true
	})
	return ag
}

// parseGroundings accepts a scalar identifier, a list of identifiers or a
// list of [identifier, score] pairs.
func parseGroundings(value gjson.Result) []common.Grounding {
	switch {
	case value.Type == gjson.Null:
		return nil
	case value.IsArray():
		var refs []common.Grounding
		for _, entry := range value.Array() {
			if entry.IsArray() {
				pair := entry.Array()
				if len(pair) == 0 {
					continue
				}
				g := common.Grounding{ID: pair[0].String()}
				if len(pair) > 1 {
					g.Score = pair[1].Float()
				}
				refs = append(refs, g)
				continue
			}
			if entry.Type != gjson.Null {
				refs = append(refs, common.Grounding{ID: entry.String()})
			}
		}
		return refs
	default:
		return []common.Grounding{{ID: value.String()}}
	}
}

// parsePolarity reads the delta polarity of an event, falling back to a
// statement-level delta object used by older serializations.
func parsePolarity(event gjson.Result, legacyDelta gjson.Result) common.Polarity {
	p := event.Get("delta.polarity")
	if !p.Exists() || p.Type == gjson.Null {
		p = legacyDelta.Get("polarity")
	}
	if !p.Exists() || p.Type == gjson.Null {
		return common.PolarityUnknown
	}
	switch v := p.Int(); {
	case v > 0:
		return common.PolarityPositive
	case v < 0:
		return common.PolarityNegative
	default:
		return common.PolarityUnknown
	}
}
