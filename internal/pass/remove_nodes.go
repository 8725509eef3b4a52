package pass

import (
	"fmt"
	"regexp"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// RemoveNodePass removes every node whose label matches any of its
// patterns, together with all edges touching it. Surviving nodes keep
// their labels but are renumbered.
type RemoveNodePass struct {
	patterns []*regexp.Regexp
}

// NewRemoveNodePass compiles the patterns into a pass.
func NewRemoveNodePass(patterns []string) (*RemoveNodePass, error) {
	res, err := compileAll(patterns)
	if err != nil {
		return nil, err
	}
	return &RemoveNodePass{patterns: res}, nil
}

func (p *RemoveNodePass) Name() string { return "remove_nodes" }

func (p *RemoveNodePass) Run(g *graph.Graph[string]) {
	keep := make([]graph.NodeID, 0, g.Len())
	for v := 0; v < g.Len(); v++ {
		if !matchAny(p.patterns, g.Payload(v)) {
			keep = append(keep, v)
		}
	}
	sub, _ := g.Projection(keep)
	*g = *sub
}

// compileAll compiles every pattern, reporting the first bad one.
func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}
