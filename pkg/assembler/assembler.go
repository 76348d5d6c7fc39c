package assembler

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/graph"
	"github.com/OFFIS-RIT/biograph/pkg/logger"
	"github.com/OFFIS-RIT/biograph/pkg/table"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize       = 10000
	defaultParallelBatches = 4
)

// Assembler turns statements into a Network. Row construction runs
// concurrently over independent batches of statements; the rows are then
// merged into the network sequentially in input order, so the result is
// identical to a single-threaded build.
//
// An Assembler should be created using NewAssembler.
type Assembler struct {
	config          table.Config
	batchSize       int
	parallelBatches int
}

// NewAssemblerParams defines the configuration parameters for creating a
// new Assembler.
//
// Config controls statement-to-row conversion.
// BatchSize is the number of statements per row-construction batch.
// ParallelBatches bounds how many batches are converted at the same time.
type NewAssemblerParams struct {
	Config          table.Config
	BatchSize       int
	ParallelBatches int
}

// NewAssembler creates an Assembler. Non-positive sizes fall back to
// defaults.
//
// Example:
//
//	a := assembler.NewAssembler(assembler.NewAssemblerParams{
//		Config:          table.Config{MaxComplexSize: 4},
//		ParallelBatches: 8,
//	})
//	res, err := a.Assemble(ctx, statements)
func NewAssembler(params NewAssemblerParams) *Assembler {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	parallel := params.ParallelBatches
	if parallel <= 0 {
		parallel = defaultParallelBatches
	}
	return &Assembler{
		config:          params.Config.Normalize(),
		batchSize:       batchSize,
		parallelBatches: parallel,
	}
}

// Result is the outcome of one assembly run.
type Result struct {
	Network    *graph.Network
	Table      *table.Table
	TableStats table.Stats
	GraphStats graph.Stats
}

// Assemble builds a network from statements. It fails only if ctx is
// cancelled or the produced table is structurally invalid.
func (a *Assembler) Assemble(ctx context.Context, stmts []*common.Statement) (*Result, error) {
	tbl, tableStats, err := a.BuildTable(ctx, stmts)
	if err != nil {
		return nil, err
	}

	network, graphStats, err := graph.Build(tbl)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}

	logger.Info("[Assembler] Assembly completed",
		"network_id", network.ID,
		"statements", tableStats.Statements,
		"rows", tableStats.Rows,
		"nodes", network.NumNodes(),
		"edges", network.NumEdges(),
	)

	return &Result{
		Network:    network,
		Table:      tbl,
		TableStats: tableStats,
		GraphStats: graphStats,
	}, nil
}

// BuildTable converts statements into one row table, processing batches
// concurrently. Rows keep the order of the input statements.
func (a *Assembler) BuildTable(ctx context.Context, stmts []*common.Statement) (*table.Table, table.Stats, error) {
	batches := split(stmts, a.batchSize)
	tables := make([]*table.Table, len(batches))
	stats := make([]table.Stats, len(batches))

	logger.Info("[Assembler] Building relation rows", "statements", len(stmts), "batches", len(batches))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.parallelBatches)
	for i, batch := range batches {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			tables[i], stats[i] = table.Build(batch, a.config)
			logger.Debug("[Assembler] Batch converted", "batch", i+1, "rows", tables[i].Len())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, table.Stats{}, fmt.Errorf("failed to build relation rows: %w", err)
	}

	var total table.Stats
	for _, s := range stats {
		total.Add(s)
	}
	out := table.Concat(tables...)
	if len(out.Columns) == 0 {
		out = table.NewTable(a.config.ExtraColumnNames()...)
	}
	return out, total, nil
}

func split(stmts []*common.Statement, size int) [][]*common.Statement {
	var batches [][]*common.Statement
	for start := 0; start < len(stmts); start += size {
		end := min(start+size, len(stmts))
		batches = append(batches, stmts[start:end])
	}
	return batches
}
