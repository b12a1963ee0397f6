package compare

// Field names with special meaning inside a node record
const (
	FieldNodeID      = "nodeid"
	FieldName        = "name"
	FieldNodegroupID = "nodegroup_id"
	FieldAlias       = "alias"
)

// Unknown is displayed when a node has no name or nodegroup
const Unknown = "Unknown"

// DefaultIdentityFields are the fields normalized to strings before diffing
var DefaultIdentityFields = []string{FieldNodeID, FieldNodegroupID, FieldAlias}

// Document is a decoded model document: map[string]any, []any, string,
// json.Number, bool or nil, nested arbitrarily. Plain float64 and int
// values are accepted as numbers too.
type Document = any

// Node is a single node record from a graph's nodes list
type Node = map[string]any

// NodeIndex maps a normalized nodeid to its node
type NodeIndex map[string]Node

// IDs returns the nodeids of the index in no particular order
func (idx NodeIndex) IDs() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	return ids
}

// NodeSummary is the display record of a node
type NodeSummary struct {
	NodeID      string `json:"nodeid" yaml:"nodeid"`
	Name        string `json:"name" yaml:"name"`
	NodegroupID string `json:"nodegroup_id" yaml:"nodegroup_id"`
}

// FieldDiff holds the two sides of a differing field. A field missing on
// one side is nil there.
type FieldDiff struct {
	First  any `json:"first_file" yaml:"first_file"`
	Second any `json:"second_file" yaml:"second_file"`
}

// Summary holds the counts of a comparison
type Summary struct {
	TotalFirst     int `json:"total_nodes_file1" yaml:"total_nodes_file1"`
	TotalSecond    int `json:"total_nodes_file2" yaml:"total_nodes_file2"`
	OnlyFirst      int `json:"only_in_file1_count" yaml:"only_in_file1_count"`
	OnlySecond     int `json:"only_in_file2_count" yaml:"only_in_file2_count"`
	Common         int `json:"common_nodes_count" yaml:"common_nodes_count"`
	WithDifference int `json:"nodes_with_differences" yaml:"nodes_with_differences"`
}

// Result is the outcome of diffing two node indexes
type Result struct {
	OnlyInFirst     []NodeSummary                   `json:"only_in_first_file" yaml:"only_in_first_file"`
	OnlyInSecond    []NodeSummary                   `json:"only_in_second_file" yaml:"only_in_second_file"`
	PresentInBoth   []NodeSummary                   `json:"present_in_both" yaml:"present_in_both"`
	DifferingFields map[string]map[string]FieldDiff `json:"differing_fields" yaml:"differing_fields"`
	Summary         Summary                         `json:"summary" yaml:"summary"`
}

// Identical reports whether both documents hold the same nodes with equal fields
func (r *Result) Identical() bool {
	return len(r.OnlyInFirst) == 0 && len(r.OnlyInSecond) == 0 && len(r.DifferingFields) == 0
}

// Differs reports whether the shared node with the given id has field differences
func (r *Result) Differs(nodeID string) bool {
	_, ok := r.DifferingFields[nodeID]
	return ok
}
