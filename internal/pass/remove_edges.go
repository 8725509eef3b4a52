package pass

import (
	"fmt"
	"regexp"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// edgeSep joins the two endpoint labels into one matchable string. It is
// non-printable, so it cannot appear in a DOT identifier.
const edgeSep = "\x00"

// RemoveEdgesPass removes edges whose joined endpoint labels
// "<from>\x00<to>" match any of its rules. Each rule is ONE regex built
// by concatenating the from-pattern and to-pattern with the separator,
// not two independent matches; patterns that are not anchored can bleed
// across the separator. That quirk is intentional and preserved.
type RemoveEdgesPass struct {
	rules []*regexp.Regexp
}

// NewRemoveEdgesPass compiles each (from, to) pattern pair into its
// combined rule.
func NewRemoveEdgesPass(rules [][2]string) (*RemoveEdgesPass, error) {
	res := make([]*regexp.Regexp, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule[0] + edgeSep + rule[1])
		if err != nil {
			return nil, fmt.Errorf("compiling edge pattern %q -> %q: %w", rule[0], rule[1], err)
		}
		res = append(res, re)
	}
	return &RemoveEdgesPass{rules: res}, nil
}

func (p *RemoveEdgesPass) Name() string { return "remove_edges" }

func (p *RemoveEdgesPass) Run(g *graph.Graph[string]) {
	out := graph.NewWithPayloads(g.Payloads())
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Succs(v) {
			joined := g.Payload(v) + edgeSep + g.Payload(u)
			if !matchAny(p.rules, joined) {
				out.AddEdge(v, u)
			}
		}
	}
	*g = *out
}
