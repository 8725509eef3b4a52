// Package dotio reads and writes call graphs in Graphviz DOT format.
//
// Only the graph shape is of interest here: node statements, edge
// statements and their labels. Attributes and subgraphs are ignored.
// Chained edge statements (a -> b -> c) are rejected outright instead of
// being expanded.
package dotio

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// Parse reads one DOT graph description into a labelled graph. Repeated
// mentions of a label refer to the same node; node order follows first
// mention.
func Parse(r io.Reader) (*graph.Graph[string], error) {
	file, err := dot.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing dot: %w", err)
	}
	if len(file.Graphs) != 1 {
		return nil, fmt.Errorf("expected exactly one graph, got %d", len(file.Graphs))
	}
	return buildGraph(file.Graphs[0].Stmts)
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*graph.Graph[string], error) {
	return Parse(strings.NewReader(s))
}

func buildGraph(stmts []ast.Stmt) (*graph.Graph[string], error) {
	g := graph.New[string]()
	byName := make(map[string]graph.NodeID)
	ensure := func(label string) graph.NodeID {
		if v, ok := byName[label]; ok {
			return v
		}
		v := g.NewNode(label)
		byName[label] = v
		return v
	}

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			ensure(unquoteID(s.Node.ID))
		case *ast.EdgeStmt:
			if s.To.To != nil {
				return nil, fmt.Errorf("chained edge statements are not supported")
			}
			from, err := vertexID(s.From)
			if err != nil {
				return nil, err
			}
			to, err := vertexID(s.To.Vertex)
			if err != nil {
				return nil, err
			}
			g.AddEdge(ensure(from), ensure(to))
		default:
			// Attribute statements and subgraphs carry no call edges.
		}
	}
	return g, nil
}

func vertexID(v ast.Vertex) (string, error) {
	n, ok := v.(*ast.Node)
	if !ok {
		return "", fmt.Errorf("edge endpoint %q is not a plain node", v.String())
	}
	return unquoteID(n.ID), nil
}

// unquoteID strips the quotes of a quoted DOT identifier.
func unquoteID(id string) string {
	if len(id) >= 2 && strings.HasPrefix(id, `"`) && strings.HasSuffix(id, `"`) {
		if s, err := strconv.Unquote(id); err == nil {
			return s
		}
		return id[1 : len(id)-1]
	}
	return id
}

// bareID matches identifiers DOT accepts unquoted.
var bareID = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$|^-?(\.[0-9]+|[0-9]+(\.[0-9]*)?)$`)

func quoteID(id string) string {
	if bareID.MatchString(id) {
		return id
	}
	return strconv.Quote(id)
}

// Write serializes g as a DOT digraph: one node statement per node in ID
// order, then one edge statement per edge, parallel edges included.
func Write(w io.Writer, g *graph.Graph[string], name string) error {
	if _, err := fmt.Fprintf(w, "digraph %s {\n", quoteID(name)); err != nil {
		return err
	}
	for v := 0; v < g.Len(); v++ {
		if _, err := fmt.Fprintf(w, "\t%s;\n", quoteID(g.Payload(v))); err != nil {
			return err
		}
	}
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Succs(v) {
			if _, err := fmt.Fprintf(w, "\t%s -> %s;\n", quoteID(g.Payload(v)), quoteID(g.Payload(u))); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
