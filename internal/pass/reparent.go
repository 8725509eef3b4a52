package pass

import (
	"regexp"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// ReparentGraphPass adds bypass edges around matched nodes: for every
// edge v->m into a matched node m and every edge m->c out of it, a new
// edge v->c is added. Matched nodes and all original edges are kept, so
// repeated application or chains of matched nodes produce duplicates;
// follow with UniqueEdgesPass when that matters.
type ReparentGraphPass struct {
	patterns []*regexp.Regexp
}

// NewReparentGraphPass compiles the patterns into a pass.
func NewReparentGraphPass(patterns []string) (*ReparentGraphPass, error) {
	res, err := compileAll(patterns)
	if err != nil {
		return nil, err
	}
	return &ReparentGraphPass{patterns: res}, nil
}

func (p *ReparentGraphPass) Name() string { return "reparent" }

func (p *ReparentGraphPass) Run(g *graph.Graph[string]) {
	matched := make([]bool, g.Len())
	for v := 0; v < g.Len(); v++ {
		matched[v] = matchAny(p.patterns, g.Payload(v))
	}
	// Snapshot the original adjacency so edges added below do not feed
	// back into the scan.
	orig := make([][]graph.NodeID, g.Len())
	for v := 0; v < g.Len(); v++ {
		orig[v] = append([]graph.NodeID(nil), g.Succs(v)...)
	}
	for v, next := range orig {
		for _, m := range next {
			if !matched[m] {
				continue
			}
			for _, c := range orig[m] {
				g.AddEdge(v, c)
			}
		}
	}
}
