package pass

import (
	"github.com/Frankenween/dot-linker/internal/graph"
)

// CutDegPass keeps only nodes whose in-degree and out-degree stay within
// the configured bounds. Degrees count parallel edges and are evaluated
// once over the original graph: removing a node does not lower its
// neighbours' counts, there is no fixed-point iteration.
type CutDegPass struct {
	maxIn  int // negative = unbounded
	maxOut int // negative = unbounded
}

// NewCutDegPass builds the pass. A negative bound means unbounded.
func NewCutDegPass(maxIn, maxOut int) *CutDegPass {
	return &CutDegPass{maxIn: maxIn, maxOut: maxOut}
}

func (p *CutDegPass) Name() string { return "cut_deg" }

func (p *CutDegPass) Run(g *graph.Graph[string]) {
	inDeg := make([]int, g.Len())
	outDeg := make([]int, g.Len())
	for v := 0; v < g.Len(); v++ {
		outDeg[v] = len(g.Succs(v))
		for _, u := range g.Succs(v) {
			inDeg[u]++
		}
	}
	keep := make([]graph.NodeID, 0, g.Len())
	for v := 0; v < g.Len(); v++ {
		if p.maxIn >= 0 && inDeg[v] > p.maxIn {
			continue
		}
		if p.maxOut >= 0 && outDeg[v] > p.maxOut {
			continue
		}
		keep = append(keep, v)
	}
	sub, _ := g.Projection(keep)
	*g = *sub
}
