package pass

import (
	"github.com/Frankenween/dot-linker/internal/graph"
)

// UniqueEdgesPass deduplicates parallel edges: exactly one edge survives
// per ordered (source, target) pair, self-loops included. Applying it
// twice is the same as applying it once.
type UniqueEdgesPass struct{}

// NewUniqueEdgesPass returns the pass.
func NewUniqueEdgesPass() *UniqueEdgesPass { return &UniqueEdgesPass{} }

func (p *UniqueEdgesPass) Name() string { return "unique_edges" }

func (p *UniqueEdgesPass) Run(g *graph.Graph[string]) {
	out := graph.NewWithPayloads(g.Payloads())
	seen := make(map[[2]graph.NodeID]struct{}, g.NumEdges())
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Succs(v) {
			key := [2]graph.NodeID{v, u}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out.AddEdge(v, u)
		}
	}
	*g = *out
}
