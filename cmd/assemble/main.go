package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/OFFIS-RIT/biograph/internal/config"
	"github.com/OFFIS-RIT/biograph/internal/util"
	"github.com/OFFIS-RIT/biograph/pkg/assembler"
	"github.com/OFFIS-RIT/biograph/pkg/graph"
	"github.com/OFFIS-RIT/biograph/pkg/loader"
	fileloader "github.com/OFFIS-RIT/biograph/pkg/loader/io"
	pgloader "github.com/OFFIS-RIT/biograph/pkg/loader/pgx"
	s3loader "github.com/OFFIS-RIT/biograph/pkg/loader/s3"
	"github.com/OFFIS-RIT/biograph/pkg/logger"
	"github.com/OFFIS-RIT/biograph/pkg/logger/console"
	"github.com/OFFIS-RIT/biograph/pkg/table"
)

func main() {
	util.LoadEnv()
	cfg := config.Load()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		logger.Fatal("Assembly failed", "err", err)
	}
}

// run builds the network from the configured input and flattens it.
func run(ctx context.Context, cfg config.Config) error {
	var (
		network *graph.Network
		err     error
	)
	if cfg.RowTablePath != "" {
		network, err = networkFromRowTable(cfg.RowTablePath)
	} else {
		network, err = networkFromStatements(ctx, cfg)
	}
	if err != nil {
		return err
	}

	tableCfg := cfg.Table.Normalize()
	opts := []graph.FlattenOption{
		graph.WithScorer(graph.ComplementaryBelief()),
		graph.WithScorer(graph.EvidenceTotal()),
		graph.WithWeightMapping(graph.NegLogWeight("belief")),
	}
	digraph := graph.ToDiGraph(network, opts...)
	logger.Info("[Flatten] Directed graph ready", "nodes", digraph.NumNodes(), "edges", digraph.NumEdges())
	signed := graph.ToSignedGraph(network, tableCfg.SignTable, opts...)
	logger.Info("[Flatten] Signed graph ready", "nodes", signed.NumNodes(), "edges", signed.NumEdges())
	return nil
}

func networkFromStatements(ctx context.Context, cfg config.Config) (*graph.Network, error) {
	l, cleanup, err := newLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	stmts, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load statements: %w", err)
	}
	logger.Info("[Loader] Statements loaded", "source", cfg.Source, "count", len(stmts))

	a := assembler.NewAssembler(assembler.NewAssemblerParams{
		Config:          cfg.Table,
		BatchSize:       cfg.BatchSize,
		ParallelBatches: cfg.ParallelBatches,
	})
	res, err := a.Assemble(ctx, stmts)
	if err != nil {
		return nil, err
	}
	logger.Info("[Table] Row statistics",
		"statements", res.TableStats.Statements,
		"rows", res.TableStats.Rows,
		"skipped", res.TableStats.Skipped(),
		"unmapped_sign", res.TableStats.UnmappedSign,
	)
	return res.Network, nil
}

func newLoader(ctx context.Context, cfg config.Config) (loader.StatementLoader, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case config.SourceS3:
		l, err := s3loader.NewS3StatementLoader(ctx, s3loader.NewS3StatementLoaderParams{
			Bucket:    cfg.AWSBucket,
			Key:       cfg.Path,
			Endpoint:  cfg.AWSEndpoint,
			Region:    cfg.AWSRegion,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create s3 loader: %w", err)
		}
		return l, noop, nil
	case config.SourcePostgres:
		pool, err := pgloader.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return pgloader.NewPostgresStatementLoader(pool, cfg.Query), pool.Close, nil
	default:
		if cfg.Path == "" {
			return nil, noop, errors.New("STATEMENTS_PATH is not set")
		}
		return fileloader.NewFileStatementLoader(cfg.Path), noop, nil
	}
}

func networkFromRowTable(path string) (*graph.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open row table: %w", err)
	}
	defer f.Close()

	delimiter := ','
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".tsv" || ext == ".tab" {
		delimiter = '\t'
	}
	t, stats, err := table.ReadTable(f, delimiter)
	if err != nil {
		return nil, err
	}
	logger.Info("[Table] Row table read", "path", path, "rows", stats.Rows, "malformed", stats.Malformed)

	network, graphStats, err := graph.Build(t)
	if err != nil {
		return nil, err
	}
	logger.Info("[Network] Network built",
		"network_id", network.ID,
		"nodes", network.NumNodes(),
		"edges", network.NumEdges(),
		"skipped_rows", graphStats.SkippedRows,
	)
	return network, nil
}
