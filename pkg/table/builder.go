package table

import (
	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"
)

type builder struct {
	cfg      Config
	excluded map[string]struct{}
	warned   map[string]struct{}
	table    *Table
	stats    Stats
}

// Build converts statements into relation rows. Statements are processed
// in order and rows keep that order. Defective statements are skipped and
// counted in the returned Stats; Build never fails.
func Build(stmts []*common.Statement, cfg Config) (*Table, Stats) {
	cfg = cfg.Normalize()
	b := &builder{
		cfg:      cfg,
		excluded: make(map[string]struct{}, len(cfg.ExcludeTypes)),
		warned:   make(map[string]struct{}),
		table:    NewTable(cfg.ExtraColumnNames()...),
	}
	for _, t := range cfg.ExcludeTypes {
		b.excluded[t] = struct{}{}
	}

	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}
		b.add(stmt)
	}
	b.stats.Rows = len(b.table.Rows)

	logger.Debug("[Table] Built relation rows", "statements", b.stats.Statements, "rows", b.stats.Rows, "skipped", b.stats.Skipped())
	return b.table, b.stats
}

func (b *builder) add(stmt *common.Statement) {
	b.stats.Statements++
	if _, ok := b.excluded[stmt.Type]; ok {
		b.stats.Excluded++
		return
	}

	agents := presentAgents(stmt.AgentList())
	if len(agents) < 2 {
		b.stats.TooFewAgents++
		return
	}

	switch stmt.Category() {
	case common.CategoryDirected:
		if stmt.Subject == nil || len(agents) != 2 {
			b.unhandled(stmt, len(agents))
			return
		}
		b.emit(stmt, agents[0], agents[1], b.directedSign(stmt.Type))

	case common.CategoryComplex:
		if len(agents) > b.cfg.MaxComplexSize {
			logger.Debug("[Table] Skipping oversized complex", "hash", stmt.Hash, "members", len(agents), "max", b.cfg.MaxComplexSize)
			b.stats.OversizedComplex++
			return
		}
		for i, agA := range agents {
			for j, agB := range agents {
				if i == j {
					continue
				}
				b.emit(stmt, agA, agB, common.SignNone)
			}
		}

	case common.CategoryInfluence:
		if stmt.Subject == nil {
			b.stats.MissingSubject++
			return
		}
		sign := common.SignFromPolarity(stmt.OverallPolarity())
		for _, obj := range stmt.Objects {
			if obj == nil {
				continue
			}
			b.emit(stmt, stmt.Subject, obj, sign)
		}

	case common.CategoryConversion:
		if stmt.Subject == nil {
			b.stats.MissingSubject++
			return
		}
		for _, obj := range stmt.From {
			if obj == nil {
				continue
			}
			b.emit(stmt, stmt.Subject, obj, common.SignNegative)
		}
		for _, obj := range stmt.To {
			if obj == nil {
				continue
			}
			b.emit(stmt, stmt.Subject, obj, common.SignPositive)
		}

	case common.CategoryGeneric:
		if len(agents) != 2 {
			b.unhandled(stmt, len(agents))
			return
		}
		b.emit(stmt, agents[0], agents[1], common.SignNone)
	}
}

func (b *builder) unhandled(stmt *common.Statement, agents int) {
	logger.Debug("[Table] Unhandled statement arity", "type", stmt.Type, "hash", stmt.Hash, "agents", agents)
	b.stats.UnhandledArity++
}

func (b *builder) directedSign(stmtType string) common.Sign {
	if sign, ok := b.cfg.SignTable[stmtType]; ok {
		return sign
	}
	b.stats.UnmappedSign++
	if _, ok := b.warned[stmtType]; !ok {
		b.warned[stmtType] = struct{}{}
		logger.Warn("[Table] No sign mapping for statement type, using neutral sign", "type", stmtType)
	}
	return common.SignNone
}

func (b *builder) emit(stmt *common.Statement, agA, agB *common.Agent, sign common.Sign) {
	nsA, idA := ResolveNamespace(agA, b.cfg.NamespacePriority)
	nsB, idB := ResolveNamespace(agB, b.cfg.NamespacePriority)

	row := Row{
		AgentAName:      agA.Name,
		AgentANamespace: nsA,
		AgentAID:        idA,
		AgentBName:      agB.Name,
		AgentBNamespace: nsB,
		AgentBID:        idB,
		StatementType:   stmt.Type,
		EvidenceCount:   len(stmt.Evidence),
		Hash:            stmt.Hash,
		Belief:          stmt.Belief,
		Sign:            sign,
		SourceCounts:    stmt.SourceCounts(),
	}
	if len(b.cfg.ExtraColumns) > 0 {
		row.Extra = make(map[string]any, len(b.cfg.ExtraColumns))
		for _, col := range b.cfg.ExtraColumns {
			row.Extra[col.Name] = col.Value(stmt)
		}
	}
	b.table.Append(row)
}

func presentAgents(agents []*common.Agent) []*common.Agent {
	out := make([]*common.Agent, 0, len(agents))
	for _, ag := range agents {
		if ag != nil {
			out = append(out, ag)
		}
	}
	return out
}

