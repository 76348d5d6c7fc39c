package graph

import "math"

// Scorer derives one scalar attribute for an aggregated edge from the
// flattened graph, usually from the edge's Relations.
type Scorer interface {
	Name() string
	Score(g *FlatGraph, key FlatKey) float64
}

// ScoreFunc is the signature shared by all scoring strategies.
type ScoreFunc func(g *FlatGraph, key FlatKey) float64

type funcScorer struct {
	name string
	fn   ScoreFunc
}

func (s funcScorer) Name() string { return s.name }

func (s funcScorer) Score(g *FlatGraph, key FlatKey) float64 { return s.fn(g, key) }

// NewScorer wraps fn as a Scorer writing the attribute name.
func NewScorer(name string, fn ScoreFunc) Scorer {
	return funcScorer{name: name, fn: fn}
}

// ComplementaryBelief scores an edge as the probability that at least one
// constituent relation is correct: 1 - prod(1 - belief). The attribute is
// "belief".
func ComplementaryBelief() Scorer {
	return NewScorer("belief", func(g *FlatGraph, key FlatKey) float64 {
		fe, ok := g.edges.Get(key)
		if !ok || len(fe.Relations) == 0 {
			return 0
		}
		miss := 1.0
		for _, rel := range fe.Relations {
			miss *= 1 - clamp01(rel.Belief)
		}
		return 1 - miss
	})
}

// MaxBelief scores an edge with the highest belief of its relations. The
// attribute is "max_belief".
func MaxBelief() Scorer {
	return NewScorer("max_belief", func(g *FlatGraph, key FlatKey) float64 {
		fe, ok := g.edges.Get(key)
		if !ok {
			return 0
		}
		best := 0.0
		for _, rel := range fe.Relations {
			best = math.Max(best, rel.Belief)
		}
		return best
	})
}

// EvidenceTotal scores an edge with the summed evidence count of its
// relations. The attribute is "evidence_count".
func EvidenceTotal() Scorer {
	return NewScorer("evidence_count", func(g *FlatGraph, key FlatKey) float64 {
		fe, ok := g.edges.Get(key)
		if !ok {
			return 0
		}
		total := 0
		for _, rel := range fe.Relations {
			total += rel.EvidenceCount
		}
		return float64(total)
	})
}

var builtinScorers = map[string]func() Scorer{
	"belief":         ComplementaryBelief,
	"max_belief":     MaxBelief,
	"evidence_count": EvidenceTotal,
}

// ScorerByName returns the built-in scorer whose attribute is name.
func ScorerByName(name string) (Scorer, bool) {
	ctor, ok := builtinScorers[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// minWeightInput keeps -ln finite for zero scores.
const minWeightInput = 1e-15

// NegLogWeight returns a weight mapping that sets "weight" to -ln(attr)
// for every edge carrying attr, so that shortest paths maximize the
// product of scores. Scores are clamped to [minWeightInput, 1].
func NegLogWeight(attr string) func(g *FlatGraph) {
	return func(g *FlatGraph) {
		for pair := g.edges.Oldest(); pair != nil; pair = pair.Next() {
			v, ok := pair.Value.Attrs[attr]
			if !ok {
				continue
			}
			v = math.Max(minWeightInput, math.Min(1, v))
			g.SetAttr(pair.Key, "weight", -math.Log(v))
		}
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
