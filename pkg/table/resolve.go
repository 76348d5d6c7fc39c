package table

import "github.com/OFFIS-RIT/biograph/pkg/common"

// RawTextNamespace is used when none of the priority namespaces ground an
// agent; the identifier is then the agent's display name.
const RawTextNamespace = "TEXT"

// DefaultNamespacePriority is tried in order when resolving an agent's
// namespace and identifier: gene symbols, proteins, chemicals, generic
// compound ids, ontology terms and diseases.
var DefaultNamespacePriority = []string{"HGNC", "UP", "CHEBI", "PUBCHEM", "GO", "MESH"}

// ResolveNamespace returns the first namespace in priority that grounds the
// agent together with its identifier. List-valued references use their
// first entry. Without a match it falls back to (RawTextNamespace, name).
func ResolveNamespace(ag *common.Agent, priority []string) (string, string) {
	if ag == nil {
		return RawTextNamespace, ""
	}
	for _, ns := range priority {
		refs, ok := ag.DBRefs[ns]
		if !ok || len(refs) == 0 || refs[0].ID == "" {
			continue
		}
		return ns, refs[0].ID
	}
	return RawTextNamespace, ag.Name
}
