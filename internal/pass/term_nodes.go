package pass

import (
	"log"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// TerminateNodesPass makes the listed functions terminal: every outgoing
// edge of a node whose label is in the set is removed. The nodes
// themselves and their incoming edges are kept.
type TerminateNodesPass struct {
	names map[string]struct{}
}

// NewTerminateNodesPass builds the pass from a set of node labels.
func NewTerminateNodesPass(names []string) *TerminateNodesPass {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return &TerminateNodesPass{names: set}
}

func (p *TerminateNodesPass) Name() string { return "term_nodes" }

func (p *TerminateNodesPass) Run(g *graph.Graph[string]) {
	out := graph.NewWithPayloads(g.Payloads())
	for v := 0; v < g.Len(); v++ {
		if _, ok := p.names[g.Payload(v)]; ok {
			if len(g.Succs(v)) > 0 {
				log.Printf("pass %s: removing %s -> * edges", p.Name(), g.Payload(v))
			}
			continue
		}
		for _, u := range g.Succs(v) {
			out.AddEdge(v, u)
		}
	}
	*g = *out
}
