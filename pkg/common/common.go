package common

// Statement represents a relational assertion between biological entities
// as produced by an upstream reader or database. Which agent fields are
// populated depends on the statement's Category:
//   - Directed: Subject and exactly one entry in Objects
//   - Influence: Subject and one or more Objects, plus the polarities
//   - Complex and Generic: Members
//   - Conversion: Subject, From and To
//
// Agents may be nil when the upstream source could not ground a participant.
type Statement struct {
	Type     string
	Subject  *Agent
	Objects  []*Agent
	Members  []*Agent
	From     []*Agent
	To       []*Agent
	Evidence []Evidence
	Belief   float64
	Hash     int64

	SubjectPolarity Polarity
	ObjectPolarity  Polarity
}

// Category returns the assembly category of the statement's type.
func (s *Statement) Category() Category {
	return CategoryOf(s.Type)
}

// AgentList returns the ordered participants of the statement. Nil agents
// are kept in place so callers can decide how to treat them.
func (s *Statement) AgentList() []*Agent {
	switch s.Category() {
	case CategoryDirected, CategoryInfluence:
		agents := make([]*Agent, 0, len(s.Objects)+1)
		agents = append(agents, s.Subject)
		return append(agents, s.Objects...)
	case CategoryConversion:
		agents := make([]*Agent, 0, len(s.From)+len(s.To)+1)
		agents = append(agents, s.Subject)
		agents = append(agents, s.From...)
		return append(agents, s.To...)
	default:
		agents := make([]*Agent, len(s.Members))
		copy(agents, s.Members)
		return agents
	}
}

// OverallPolarity combines subject and object polarity of an influence.
// An unknown side defers to the other one; two known sides multiply.
func (s *Statement) OverallPolarity() Polarity {
	switch {
	case s.SubjectPolarity == PolarityUnknown && s.ObjectPolarity == PolarityUnknown:
		return PolarityUnknown
	case s.ObjectPolarity == PolarityUnknown:
		return s.SubjectPolarity
	case s.SubjectPolarity == PolarityUnknown:
		return s.ObjectPolarity
	default:
		return s.SubjectPolarity * s.ObjectPolarity
	}
}

// SourceCounts returns how many evidence items each source contributed.
func (s *Statement) SourceCounts() map[string]int {
	counts := make(map[string]int)
	for _, ev := range s.Evidence {
		counts[ev.SourceAPI]++
	}
	return counts
}

// Agent is a named participant of a statement with cross-referenced
// database identifiers. DBRefs maps a namespace such as "HGNC" to one or
// more groundings; list-valued references keep their upstream order.
type Agent struct {
	Name   string
	DBRefs map[string][]Grounding
}

// Grounding is one identifier within a namespace, optionally scored.
type Grounding struct {
	ID    string  `json:"id"`
	Score float64 `json:"score,omitempty"`
}

// Evidence is a single supporting text item.
type Evidence struct {
	SourceAPI string `json:"source_api"`
	Text      string `json:"text,omitempty"`
	PMID      string `json:"pmid,omitempty"`
}

// Polarity of an influence side: +1, -1 or unknown (0).
type Polarity int8

const (
	PolarityUnknown  Polarity = 0
	PolarityPositive Polarity = 1
	PolarityNegative Polarity = -1
)

// Sign is the binary polarity label of a relation used for signed-graph
// reasoning. SignNone marks a neutral or unknown sign.
type Sign int8

const (
	SignNone     Sign = -1
	SignPositive Sign = 0
	SignNegative Sign = 1
)

// Known reports whether s is one of the two binary signs.
func (s Sign) Known() bool {
	return s == SignPositive || s == SignNegative
}

func (s Sign) String() string {
	switch s {
	case SignPositive:
		return "0"
	case SignNegative:
		return "1"
	default:
		return ""
	}
}

// SignFromPolarity maps +1 to SignPositive, -1 to SignNegative and anything
// else to SignNone.
func SignFromPolarity(p Polarity) Sign {
	switch p {
	case PolarityPositive:
		return SignPositive
	case PolarityNegative:
		return SignNegative
	default:
		return SignNone
	}
}
