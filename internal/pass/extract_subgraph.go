package pass

import (
	"log"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// SubgraphExtractionPass keeps only the nodes forward-reachable from the
// tagged seed nodes (seeds included) and the edges between survivors.
// Tags naming no node are reported and skipped.
type SubgraphExtractionPass struct {
	tags map[string]struct{}
}

// NewSubgraphExtractionPass builds the pass from a set of node labels.
func NewSubgraphExtractionPass(tags []string) *SubgraphExtractionPass {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return &SubgraphExtractionPass{tags: set}
}

func (p *SubgraphExtractionPass) Name() string { return "extract_subgraph" }

func (p *SubgraphExtractionPass) Run(g *graph.Graph[string]) {
	var seeds []graph.NodeID
	found := make(map[string]struct{}, len(p.tags))
	for v := 0; v < g.Len(); v++ {
		if _, ok := p.tags[g.Payload(v)]; ok {
			seeds = append(seeds, v)
			found[g.Payload(v)] = struct{}{}
		}
	}
	for tag := range p.tags {
		if _, ok := found[tag]; !ok {
			log.Printf("pass %s: node %q not found, skipping", p.Name(), tag)
		}
	}
	sub, _ := g.Projection(g.Reachable(seeds))
	*g = *sub
}
