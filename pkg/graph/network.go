package graph

import (
	"maps"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a network vertex. Nodes are keyed by display name, so distinct
// agents that share a name are represented by a single node.
type Node struct {
	Name      string
	Namespace string
	ID        string
	Attrs     map[string]any
}

// EdgeKey identifies one parallel edge of the multigraph.
type EdgeKey struct {
	Source string
	Target string
	Hash   int64
}

// Edge is one relation between two nodes, derived from a single statement.
type Edge struct {
	Source        string
	Target        string
	Hash          int64
	Type          string
	EvidenceCount int
	Belief        float64
	Sign          common.Sign
	SourceCounts  map[string]int
	Attrs         map[string]any
}

// Key returns the multigraph key of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Hash: e.Hash}
}

func cloneEdge(e Edge) Edge {
	e.SourceCounts = maps.Clone(e.SourceCounts)
	e.Attrs = maps.Clone(e.Attrs)
	return e
}

func cloneNode(n Node) Node {
	n.Attrs = maps.Clone(n.Attrs)
	return n
}

// Network is a directed multigraph of statement relations. Nodes and edges
// are kept in insertion order; replacing an edge keeps its position.
//
// A Network is not safe for concurrent modification.
type Network struct {
	ID string

	nodes *orderedmap.OrderedMap[string, *Node]
	edges *orderedmap.OrderedMap[EdgeKey, *Edge]
	adj   adjacency
}

// NewNetwork returns an empty network with a fresh ID.
func NewNetwork() *Network {
	id, err := gonanoid.New()
	if err != nil {
		logger.Warn("[Network] Could not generate network ID", "err", err)
	}
	return &Network{
		ID:    id,
		nodes: orderedmap.New[string, *Node](),
		edges: orderedmap.New[EdgeKey, *Edge](),
		adj:   newAdjacency(),
	}
}

// AddNode inserts a node unless one with the same name exists. Existing
// nodes are left untouched. It reports whether the node was inserted.
func (n *Network) AddNode(node Node) bool {
	if _, ok := n.nodes.Get(node.Name); ok {
		return false
	}
	node = cloneNode(node)
	n.nodes.Set(node.Name, &node)
	return true
}

// SetEdge inserts the edge or replaces the attributes of the edge with the
// same key. Missing endpoints are added as bare nodes. It reports whether
// an existing edge was replaced.
func (n *Network) SetEdge(e Edge) bool {
	n.AddNode(Node{Name: e.Source})
	n.AddNode(Node{Name: e.Target})

	e = cloneEdge(e)
	_, replaced := n.edges.Set(e.Key(), &e)
	if !replaced {
		n.adj.link(e.Source, e.Target)
	}
	return replaced
}

// NumNodes returns the number of nodes.
func (n *Network) NumNodes() int {
	return n.nodes.Len()
}

// NumEdges returns the number of parallel edges.
func (n *Network) NumEdges() int {
	return n.edges.Len()
}

// HasNode reports whether a node with the given name exists.
func (n *Network) HasNode(name string) bool {
	_, ok := n.nodes.Get(name)
	return ok
}

// Node returns a copy of the named node.
func (n *Network) Node(name string) (Node, bool) {
	node, ok := n.nodes.Get(name)
	if !ok {
		return Node{}, false
	}
	return cloneNode(*node), true
}

// Nodes returns copies of all nodes in insertion order.
func (n *Network) Nodes() []Node {
	out := make([]Node, 0, n.nodes.Len())
	for pair := n.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, cloneNode(*pair.Value))
	}
	return out
}

// Edge returns a copy of the edge with the given key.
func (n *Network) Edge(key EdgeKey) (Edge, bool) {
	e, ok := n.edges.Get(key)
	if !ok {
		return Edge{}, false
	}
	return cloneEdge(*e), true
}

// Edges returns copies of all edges in insertion order.
func (n *Network) Edges() []Edge {
	out := make([]Edge, 0, n.edges.Len())
	for pair := n.edges.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, cloneEdge(*pair.Value))
	}
	return out
}

// EdgesBetween returns the parallel edges from u to v in insertion order.
func (n *Network) EdgesBetween(u, v string) []Edge {
	var out []Edge
	for pair := n.edges.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key.Source == u && pair.Key.Target == v {
			out = append(out, cloneEdge(*pair.Value))
		}
	}
	return out
}

// Successors returns the distinct targets of edges leaving name.
func (n *Network) Successors(name string) []string {
	return n.adj.successors(name)
}

// Predecessors returns the distinct sources of edges entering name.
func (n *Network) Predecessors(name string) []string {
	return n.adj.predecessors(name)
}

// forEachEdge visits the stored edges in insertion order without copying.
func (n *Network) forEachEdge(fn func(e *Edge)) {
	for pair := n.edges.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Value)
	}
}

// adjacency tracks distinct neighbours in first-seen order.
type adjacency struct {
	out map[string]*orderedmap.OrderedMap[string, struct{}]
	in  map[string]*orderedmap.OrderedMap[string, struct{}]
}

func newAdjacency() adjacency {
	return adjacency{
		out: make(map[string]*orderedmap.OrderedMap[string, struct{}]),
		in:  make(map[string]*orderedmap.OrderedMap[string, struct{}]),
	}
}

func (a adjacency) link(u, v string) {
	if _, ok := a.out[u]; !ok {
		a.out[u] = orderedmap.New[string, struct{}]()
	}
	if _, ok := a.in[v]; !ok {
		a.in[v] = orderedmap.New[string, struct{}]()
	}
	a.out[u].Set(v, struct{}{})
	a.in[v].Set(u, struct{}{})
}

func (a adjacency) successors(u string) []string {
	return keys(a.out[u])
}

func (a adjacency) predecessors(v string) []string {
	return keys(a.in[v])
}

func keys(m *orderedmap.OrderedMap[string, struct{}]) []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
