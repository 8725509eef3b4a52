// Package pass implements the graph-rewriting passes and the pipeline
// runner that applies them to call graphs.
package pass

import (
	"regexp"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// Pass is a single, self-contained graph transformation. Once
// constructed a pass never fails on graph content: unresolved names,
// missing matches and empty results are valid outcomes.
type Pass interface {
	// Name returns a human-readable pass name for diagnostics.
	Name() string
	// Run applies the pass to g in place. Node identity is not
	// necessarily preserved: passes that drop nodes renumber the rest.
	Run(g *graph.Graph[string])
}

// Pipeline is an ordered list of passes.
type Pipeline []Pass

// Run applies every pass, in order, to completion, to every graph in the
// working set before moving on to the next pass. Each graph is
// transformed independently.
func (p Pipeline) Run(graphs []*graph.Graph[string]) {
	for _, ps := range p {
		for _, g := range graphs {
			ps.Run(g)
		}
	}
}

// matchAny reports whether label matches any of the compiled patterns.
func matchAny(patterns []*regexp.Regexp, label string) bool {
	for _, re := range patterns {
		if re.MatchString(label) {
			return true
		}
	}
	return false
}

// labelIndex maps each label to the first node carrying it. Labels are
// unique for graphs loaded from DOT; for synthetic duplicates the first
// node wins.
func labelIndex(g *graph.Graph[string]) map[string]graph.NodeID {
	byName := make(map[string]graph.NodeID, g.Len())
	for v := 0; v < g.Len(); v++ {
		if _, ok := byName[g.Payload(v)]; !ok {
			byName[g.Payload(v)] = v
		}
	}
	return byName
}
