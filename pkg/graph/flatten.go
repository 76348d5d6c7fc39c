package graph

import (
	"maps"
	"slices"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FlatKey identifies an aggregated edge. Sign is common.SignNone in a
// plain digraph.
type FlatKey struct {
	Source string
	Target string
	Sign   common.Sign
}

// FlatEdge aggregates all network edges that share its key. Relations holds
// the constituent edges in network insertion order; Attrs holds values
// derived by scorers and weight mappings.
type FlatEdge struct {
	Source    string
	Target    string
	Sign      common.Sign
	Relations []Edge
	Attrs     map[string]float64
}

// Key returns the flattened key of the edge.
func (e FlatEdge) Key() FlatKey {
	return FlatKey{Source: e.Source, Target: e.Target, Sign: e.Sign}
}

func cloneFlatEdge(e FlatEdge) FlatEdge {
	e.Relations = slices.Clone(e.Relations)
	e.Attrs = maps.Clone(e.Attrs)
	return e
}

// FlatGraph is a simplified view of a Network: a digraph with one edge per
// ordered node pair, or, when Signed is set, a signed graph with at most one
// edge per ordered pair and sign.
type FlatGraph struct {
	Signed bool

	nodes *orderedmap.OrderedMap[string, Node]
	edges *orderedmap.OrderedMap[FlatKey, *FlatEdge]
	adj   adjacency
}

func newFlatGraph(signed bool, n *Network) *FlatGraph {
	g := &FlatGraph{
		Signed: signed,
		nodes:  orderedmap.New[string, Node](),
		edges:  orderedmap.New[FlatKey, *FlatEdge](),
		adj:    newAdjacency(),
	}
	for pair := n.nodes.Oldest(); pair != nil; pair = pair.Next() {
		g.nodes.Set(pair.Key, cloneNode(*pair.Value))
	}
	return g
}

func (g *FlatGraph) group(key FlatKey, e *Edge) {
	fe, ok := g.edges.Get(key)
	if !ok {
		fe = &FlatEdge{Source: key.Source, Target: key.Target, Sign: key.Sign}
		g.edges.Set(key, fe)
		g.adj.link(key.Source, key.Target)
	}
	fe.Relations = append(fe.Relations, cloneEdge(*e))
}

// NumNodes returns the number of nodes.
func (g *FlatGraph) NumNodes() int {
	return g.nodes.Len()
}

// NumEdges returns the number of aggregated edges.
func (g *FlatGraph) NumEdges() int {
	return g.edges.Len()
}

// Nodes returns copies of all nodes in network insertion order.
func (g *FlatGraph) Nodes() []Node {
	out := make([]Node, 0, g.nodes.Len())
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, cloneNode(pair.Value))
	}
	return out
}

// HasNode reports whether a node with the given name exists.
func (g *FlatGraph) HasNode(name string) bool {
	_, ok := g.nodes.Get(name)
	return ok
}

// Edge returns a copy of the aggregated edge with the given key.
func (g *FlatGraph) Edge(key FlatKey) (FlatEdge, bool) {
	fe, ok := g.edges.Get(key)
	if !ok {
		return FlatEdge{}, false
	}
	return cloneFlatEdge(*fe), true
}

// Edges returns copies of all aggregated edges in order of first
// appearance in the network.
func (g *FlatGraph) Edges() []FlatEdge {
	out := make([]FlatEdge, 0, g.edges.Len())
	for pair := g.edges.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, cloneFlatEdge(*pair.Value))
	}
	return out
}

// Keys returns the keys of all aggregated edges in order.
func (g *FlatGraph) Keys() []FlatKey {
	out := make([]FlatKey, 0, g.edges.Len())
	for pair := g.edges.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// EdgesBetween returns the aggregated edges from u to v. A signed graph
// returns up to two edges, positive first.
func (g *FlatGraph) EdgesBetween(u, v string) []FlatEdge {
	signs := []common.Sign{common.SignNone}
	if g.Signed {
		signs = []common.Sign{common.SignPositive, common.SignNegative}
	}
	var out []FlatEdge
	for _, s := range signs {
		if fe, ok := g.edges.Get(FlatKey{Source: u, Target: v, Sign: s}); ok {
			out = append(out, cloneFlatEdge(*fe))
		}
	}
	return out
}

// Successors returns the distinct targets of edges leaving name.
func (g *FlatGraph) Successors(name string) []string {
	return g.adj.successors(name)
}

// Predecessors returns the distinct sources of edges entering name.
func (g *FlatGraph) Predecessors(name string) []string {
	return g.adj.predecessors(name)
}

// Attr returns a derived attribute of an aggregated edge.
func (g *FlatGraph) Attr(key FlatKey, name string) (float64, bool) {
	fe, ok := g.edges.Get(key)
	if !ok {
		return 0, false
	}
	v, ok := fe.Attrs[name]
	return v, ok
}

// SetAttr stores a derived attribute on an aggregated edge. It reports
// false if no edge has the key.
func (g *FlatGraph) SetAttr(key FlatKey, name string, value float64) bool {
	fe, ok := g.edges.Get(key)
	if !ok {
		return false
	}
	if fe.Attrs == nil {
		fe.Attrs = make(map[string]float64)
	}
	fe.Attrs[name] = value
	return true
}

type flattenOptions struct {
	scorers        []Scorer
	weightMappings []func(g *FlatGraph)
}

// FlattenOption configures ToDiGraph and ToSignedGraph.
type FlattenOption func(*flattenOptions)

// WithScorer adds a scorer that derives the attribute s.Name() for every
// aggregated edge. Scorers run in the order they are given, after
// grouping, so a scorer may read values written by an earlier one.
func WithScorer(s Scorer) FlattenOption {
	return func(o *flattenOptions) {
		if s != nil {
			o.scorers = append(o.scorers, s)
		}
	}
}

// WithWeightMapping adds a function that runs on the finished graph after
// all scorers, typically to turn a score into a path weight.
func WithWeightMapping(fn func(g *FlatGraph)) FlattenOption {
	return func(o *flattenOptions) {
		if fn != nil {
			o.weightMappings = append(o.weightMappings, fn)
		}
	}
}

func (g *FlatGraph) finish(opts []FlattenOption) {
	var o flattenOptions
	for _, opt := range opts {
		opt(&o)
	}
	for _, s := range o.scorers {
		name := s.Name()
		for pair := g.edges.Oldest(); pair != nil; pair = pair.Next() {
			g.SetAttr(pair.Key, name, s.Score(g, pair.Key))
		}
	}
	for _, fn := range o.weightMappings {
		fn(g)
	}
}

// ToDiGraph groups all parallel edges of the network by ordered node pair.
// Each resulting edge lists every constituent edge; nothing is discarded.
func ToDiGraph(n *Network, opts ...FlattenOption) *FlatGraph {
	g := newFlatGraph(false, n)
	n.forEachEdge(func(e *Edge) {
		g.group(FlatKey{Source: e.Source, Target: e.Target, Sign: common.SignNone}, e)
	})
	g.finish(opts)

	logger.Debug("[Flatten] Built digraph", "network_id", n.ID, "edges", g.NumEdges(), "relations", n.NumEdges())
	return g
}

// ToSignedGraph groups the network edges by ordered node pair and sign.
// Edges whose type is not a key of signTable are dropped. An edge keeps its
// own sign when it has one, otherwise it takes the sign of its type.
// Entries of signTable that are not a binary sign are ignored. An empty
// table yields an empty signed graph.
func ToSignedGraph(n *Network, signTable map[string]common.Sign, opts ...FlattenOption) *FlatGraph {
	signs := make(map[string]common.Sign, len(signTable))
	for t, s := range signTable {
		if !s.Known() {
			logger.Warn("[Flatten] Ignoring sign table entry with invalid sign", "type", t, "sign", int(s))
			continue
		}
		signs[t] = s
	}

	g := newFlatGraph(true, n)
	dropped := 0
	n.forEachEdge(func(e *Edge) {
		typeSign, ok := signs[e.Type]
		if !ok {
			dropped++
			return
		}
		sign := e.Sign
		if !sign.Known() {
			sign = typeSign
		}
		g.group(FlatKey{Source: e.Source, Target: e.Target, Sign: sign}, e)
	})
	g.finish(opts)

	logger.Debug("[Flatten] Built signed graph", "network_id", n.ID, "edges", g.NumEdges(), "dropped", dropped)
	return g
}
