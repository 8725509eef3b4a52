package pass

import (
	"github.com/Frankenween/dot-linker/internal/graph"
)

// ReverseGraphPass reverses the direction of every edge. Node identities
// are unchanged.
type ReverseGraphPass struct{}

// NewReverseGraphPass returns the pass.
func NewReverseGraphPass() *ReverseGraphPass { return &ReverseGraphPass{} }

func (p *ReverseGraphPass) Name() string { return "reverse" }

func (p *ReverseGraphPass) Run(g *graph.Graph[string]) {
	*g = *g.Inverse()
}
