package pass

import (
	"fmt"
	"log"
	"regexp"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// Direction says which way RegexEdgeGenPass points the edges it adds.
type Direction uint8

const (
	// Incoming adds name -> matched node.
	Incoming Direction = iota
	// Outgoing adds matched node -> name.
	Outgoing
)

// EdgeRule generates edges between every node whose label matches
// Pattern and the explicitly named nodes.
type EdgeRule struct {
	Pattern *regexp.Regexp
	Dir     Direction
	Names   []string
}

// NewEdgeRule compiles a rule.
func NewEdgeRule(pattern string, dir Direction, names []string) (EdgeRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return EdgeRule{}, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return EdgeRule{Pattern: re, Dir: dir, Names: names}, nil
}

// RegexEdgeGenPass adds synthetic edges between regex-matched nodes and
// explicitly named ones. A node may match several rules; every
// applicable edge is added, duplicates included. Names that resolve to
// no node are reported and skipped.
type RegexEdgeGenPass struct {
	rules []EdgeRule
}

// NewRegexEdgeGenPass builds a pass from the ordered rule list.
func NewRegexEdgeGenPass(rules []EdgeRule) *RegexEdgeGenPass {
	return &RegexEdgeGenPass{rules: rules}
}

func (p *RegexEdgeGenPass) Name() string { return "regex_edge_gen" }

func (p *RegexEdgeGenPass) Run(g *graph.Graph[string]) {
	byName := labelIndex(g)
	for _, rule := range p.rules {
		var matched []graph.NodeID
		for v := 0; v < g.Len(); v++ {
			if rule.Pattern.MatchString(g.Payload(v)) {
				matched = append(matched, v)
			}
		}
		for _, name := range rule.Names {
			target, ok := byName[name]
			if !ok {
				log.Printf("pass %s: node %q not found, skipping", p.Name(), name)
				continue
			}
			for _, v := range matched {
				if rule.Dir == Incoming {
					g.AddEdge(target, v)
				} else {
					g.AddEdge(v, target)
				}
			}
		}
	}
}
