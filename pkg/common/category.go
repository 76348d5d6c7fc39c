package common

// Category is the closed set of statement shapes the table builder knows
// how to turn into pairwise relations.
type Category int

const (
	// CategoryGeneric covers any statement without a dedicated shape.
	CategoryGeneric Category = iota
	// CategoryDirected is a subject -> object relation.
	CategoryDirected
	// CategoryComplex is a symmetric multi-member binding.
	CategoryComplex
	// CategoryInfluence derives its sign from the statement's polarity.
	CategoryInfluence
	// CategoryConversion turns a set of objects into another set.
	CategoryConversion
)

func (c Category) String() string {
	switch c {
	case CategoryDirected:
		return "directed"
	case CategoryComplex:
		return "complex"
	case CategoryInfluence:
		return "influence"
	case CategoryConversion:
		return "conversion"
	default:
		return "generic"
	}
}

var categories = map[string]Category{
	"Activation":     CategoryDirected,
	"Inhibition":     CategoryDirected,
	"GtpActivation":  CategoryDirected,
	"IncreaseAmount": CategoryDirected,
	"DecreaseAmount": CategoryDirected,
	"Gef":            CategoryDirected,
	"Gap":            CategoryDirected,

	"Phosphorylation":       CategoryDirected,
	"Dephosphorylation":     CategoryDirected,
	"Ubiquitination":        CategoryDirected,
	"Deubiquitination":      CategoryDirected,
	"Sumoylation":           CategoryDirected,
	"Desumoylation":         CategoryDirected,
	"Hydroxylation":         CategoryDirected,
	"Dehydroxylation":       CategoryDirected,
	"Acetylation":           CategoryDirected,
	"Deacetylation":         CategoryDirected,
	"Glycosylation":         CategoryDirected,
	"Deglycosylation":       CategoryDirected,
	"Farnesylation":         CategoryDirected,
	"Defarnesylation":       CategoryDirected,
	"Geranylgeranylation":   CategoryDirected,
	"Degeranylgeranylation": CategoryDirected,
	"Palmitoylation":        CategoryDirected,
	"Depalmitoylation":      CategoryDirected,
	"Myristoylation":        CategoryDirected,
	"Demyristoylation":      CategoryDirected,
	"Ribosylation":          CategoryDirected,
	"Deribosylation":        CategoryDirected,
	"Methylation":           CategoryDirected,
	"Demethylation":         CategoryDirected,

	"Complex":     CategoryComplex,
	"Association": CategoryComplex,
	"Influence":   CategoryInfluence,
	"Conversion":  CategoryConversion,
}

// CategoryOf returns the category registered for a statement type name.
// Unregistered types are generic.
func CategoryOf(stmtType string) Category {
	if c, ok := categories[stmtType]; ok {
		return c
	}
	return CategoryGeneric
}

// IsModification reports whether the type is a post-translational
// modification, which upstream sources encode as enz/sub instead of subj/obj.
func IsModification(stmtType string) bool {
	if CategoryOf(stmtType) != CategoryDirected {
		return false
	}
	switch stmtType {
	case "Activation", "Inhibition", "GtpActivation", "IncreaseAmount", "DecreaseAmount", "Gef", "Gap":
		return false
	}
	return true
}
