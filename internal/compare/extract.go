package compare

import (
	"github.com/Jeffail/gabs"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Extractor builds a NodeIndex from a document. The zero value normalizes
// the default identity fields and logs nothing.
type Extractor struct {
	// Logger receives debug lines for skipped entries
	Logger log.Logger
	// IdentityFields overrides DefaultIdentityFields when non-empty
	IdentityFields []string
	// Raw disables identity field normalization; only the index key is
	// converted to a string.
	Raw bool
}

// Extract indexes the nodes of doc with a default Extractor
func Extract(doc Document) NodeIndex {
	return Extractor{}.Extract(doc)
}

// Extract walks graph[].nodes[] of doc and indexes every node carrying a
// nodeid. Off-shape sections are skipped rather than reported: a missing
// graph yields an empty index, a single graph object is treated like a
// one-element list, and non-object graphs or nodes are ignored. When two
// nodes share a nodeid the later one wins.
func (e Extractor) Extract(doc Document) NodeIndex {
	logger := e.logger()
	index := NodeIndex{}

	root, err := gabs.Consume(doc)
	if err != nil {
		level.Debug(logger).Log("msg", "document not consumable", "err", err)
		return index
	}
	// Search flattens arrays, so the root must be an object before we look up graph
	if _, ok := root.Data().(map[string]any); !ok {
		level.Debug(logger).Log("msg", "document root is not an object, no nodes extracted")
		return index
	}

	for gi, graph := range graphsOf(root) {
		if _, ok := graph.Data().(map[string]any); !ok {
			level.Debug(logger).Log("msg", "skipping graph", "index", gi, "reason", "not an object")
			continue
		}
		nodes, ok := graph.Search("nodes").Data().([]any)
		if !ok {
			level.Debug(logger).Log("msg", "skipping graph", "index", gi, "reason", "nodes missing or not a list")
			continue
		}
		for ni, raw := range nodes {
			node, ok := raw.(map[string]any)
			if !ok {
				level.Debug(logger).Log("msg", "skipping node", "graph", gi, "index", ni, "reason", "not an object")
				continue
			}
			id, ok := nodeID(node)
			if !ok {
				level.Debug(logger).Log("msg", "skipping node", "graph", gi, "index", ni, "reason", "no nodeid")
				continue
			}
			if _, dup := index[id]; dup {
				level.Debug(logger).Log("msg", "duplicate nodeid, keeping later node", "nodeid", id)
			}
			if e.Raw {
				index[id] = node
			} else {
				index[id] = NormalizeFields(node, e.identityFields())
			}
		}
	}

	return index
}

// graphsOf returns the graph containers of root. A list is expanded, any
// other present value is wrapped as a single graph.
func graphsOf(root *gabs.Container) []*gabs.Container {
	graph := root.Search("graph")
	switch graph.Data().(type) {
	case nil:
		return nil
	case []any:
		children, err := graph.Children()
		if err != nil {
			return nil
		}
		return children
	default:
		return []*gabs.Container{graph}
	}
}

// nodeID returns the string key of node, false when it has no usable nodeid
func nodeID(node Node) (string, bool) {
	v, ok := node[FieldNodeID]
	if !ok || !truthy(v) {
		return "", false
	}
	return Stringify(v)
}

func (e Extractor) logger() log.Logger {
	if e.Logger == nil {
		return log.NewNopLogger()
	}
	return e.Logger
}

func (e Extractor) identityFields() []string {
	if len(e.IdentityFields) == 0 {
		return DefaultIdentityFields
	}
	return e.IdentityFields
}
