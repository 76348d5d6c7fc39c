package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/biograph/internal/server/middleware"
	"github.com/OFFIS-RIT/biograph/pkg/assembler"
	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/graph"
	"github.com/OFFIS-RIT/biograph/pkg/loader"
	"github.com/OFFIS-RIT/biograph/pkg/logger"
	"github.com/OFFIS-RIT/biograph/pkg/table"

	"github.com/labstack/echo/v4"
)

// AssembleBody is the request body of POST /assemble. Options left unset
// fall back to the server configuration.
type AssembleBody struct {
	Statements     []json.RawMessage `json:"statements" validate:"required" jsonschema_description:"Statements in the upstream JSON serialization."`
	ExcludeTypes   []string          `json:"exclude_types,omitempty" validate:"dive,required" jsonschema_description:"Statement types to ignore."`
	MaxComplexSize int               `json:"max_complex_size,omitempty" validate:"omitempty,gte=1" jsonschema_description:"Largest complex expanded into pairwise edges."`
	SignTable      map[string]int    `json:"sign_table,omitempty" validate:"dive,oneof=0 1" jsonschema_description:"Statement type to sign (0 positive, 1 negative)."`
	Scorers        []string          `json:"scorers,omitempty" validate:"dive,oneof=belief max_belief evidence_count" jsonschema_description:"Edge scorers applied to the flattened graphs."`
}

type assembleResponse struct {
	Message      string       `json:"message,omitempty"`
	NetworkID    string       `json:"network_id,omitempty"`
	Statements   int          `json:"statements"`
	Nodes        int          `json:"nodes"`
	Edges        int          `json:"edges"`
	DiGraphEdges int          `json:"digraph_edges"`
	SignedEdges  int          `json:"signed_edges"`
	TableStats   *table.Stats `json:"table_stats,omitempty"`
	GraphStats   *graph.Stats `json:"graph_stats,omitempty"`
}

// AssembleHandler assembles the posted statements and reports the shape
// of the resulting network. The network itself is not returned.
func AssembleHandler(c echo.Context) error {
	data := new(AssembleBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, assembleResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, assembleResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	cfg := app.Config.Table
	if data.ExcludeTypes != nil {
		cfg.ExcludeTypes = data.ExcludeTypes
	}
	if data.MaxComplexSize != 0 {
		cfg.MaxComplexSize = data.MaxComplexSize
	}
	if data.SignTable != nil {
		cfg.SignTable = make(map[string]common.Sign, len(data.SignTable))
		for name, sign := range data.SignTable {
			cfg.SignTable[name] = common.Sign(sign)
		}
	}
	cfg = cfg.Normalize()

	raw, err := json.Marshal(data.Statements)
	if err != nil {
		return c.JSON(http.StatusBadRequest, assembleResponse{
			Message: "Invalid statements",
		})
	}
	stmts, err := loader.ParseStatements(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, assembleResponse{
			Message: "Invalid statements",
		})
	}

	ctx := c.Request().Context()
	a := assembler.NewAssembler(assembler.NewAssemblerParams{
		Config:          cfg,
		BatchSize:       app.Config.BatchSize,
		ParallelBatches: app.Config.ParallelBatches,
	})
	res, err := a.Assemble(ctx, stmts)
	if err != nil {
		var schemaErr *graph.SchemaError
		if errors.As(err, &schemaErr) {
			return c.JSON(http.StatusUnprocessableEntity, assembleResponse{
				Message: err.Error(),
			})
		}
		logger.Error("[Server] Assembly failed", "err", err)
		return c.JSON(http.StatusInternalServerError, assembleResponse{
			Message: "Internal server error",
		})
	}

	var opts []graph.FlattenOption
	for _, name := range data.Scorers {
		if s, ok := graph.ScorerByName(name); ok {
			opts = append(opts, graph.WithScorer(s))
		}
	}
	digraph := graph.ToDiGraph(res.Network, opts...)
	signed := graph.ToSignedGraph(res.Network, cfg.SignTable, opts...)

	return c.JSON(http.StatusOK, assembleResponse{
		NetworkID:    res.Network.ID,
		Statements:   len(stmts),
		Nodes:        res.Network.NumNodes(),
		Edges:        res.Network.NumEdges(),
		DiGraphEdges: digraph.NumEdges(),
		SignedEdges:  signed.NumEdges(),
		TableStats:   &res.TableStats,
		GraphStats:   &res.GraphStats,
	})
}
