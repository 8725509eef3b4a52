package pass

import (
	"reflect"
	"sort"
	"testing"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// build constructs a labelled graph from label pairs.
func build(t *testing.T, labels []string, edges [][2]string) *graph.Graph[string] {
	t.Helper()
	g := graph.New[string]()
	ids := make(map[string]graph.NodeID, len(labels))
	for _, l := range labels {
		ids[l] = g.NewNode(l)
	}
	for _, e := range edges {
		g.AddEdge(ids[e[0]], ids[e[1]])
	}
	return g
}

func nodeLabels(g *graph.Graph[string]) []string {
	out := g.Payloads()
	sort.Strings(out)
	return out
}

// labelEdges returns the edge multiset keyed by endpoint labels.
func labelEdges(g *graph.Graph[string]) map[[2]string]int {
	edges := make(map[[2]string]int)
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Succs(v) {
			edges[[2]string{g.Payload(v), g.Payload(u)}]++
		}
	}
	return edges
}

func TestRemoveNodePass(t *testing.T) {
	g := build(t,
		[]string{"keep_a", "drop_x", "keep_b", "drop_y"},
		[][2]string{{"keep_a", "drop_x"}, {"drop_x", "keep_b"}, {"keep_a", "keep_b"}, {"drop_y", "drop_y"}},
	)
	p, err := NewRemoveNodePass([]string{"^drop_x$", "y$"})
	if err != nil {
		t.Fatalf("NewRemoveNodePass: %v", err)
	}
	p.Run(g)

	if got, want := nodeLabels(g), []string{"keep_a", "keep_b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	want := map[[2]string]int{{"keep_a", "keep_b"}: 1}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestRemoveNodePassBadPattern(t *testing.T) {
	if _, err := NewRemoveNodePass([]string{"("}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestRegexEdgeGenPass(t *testing.T) {
	g := build(t,
		[]string{"worker_1", "worker_2", "hub", "sink"},
		[][2]string{{"hub", "sink"}},
	)
	in, err := NewEdgeRule("^worker_", Incoming, []string{"hub", "missing"})
	if err != nil {
		t.Fatalf("NewEdgeRule: %v", err)
	}
	out, err := NewEdgeRule("^worker_1$", Outgoing, []string{"sink"})
	if err != nil {
		t.Fatalf("NewEdgeRule: %v", err)
	}
	NewRegexEdgeGenPass([]EdgeRule{in, out}).Run(g)

	want := map[[2]string]int{
		{"hub", "sink"}:      1,
		{"hub", "worker_1"}:  1,
		{"hub", "worker_2"}:  1,
		{"worker_1", "sink"}: 1,
	}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestCutDegPassZeroIncoming(t *testing.T) {
	g := build(t,
		[]string{"x", "y", "z"},
		[][2]string{{"y", "x"}},
	)
	NewCutDegPass(0, -1).Run(g)
	if got, want := nodeLabels(g), []string{"y", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestCutDegPassCountsParallelEdgesOnce(t *testing.T) {
	// b has two incoming parallel edges; degrees are evaluated over the
	// original graph only, removing b must not resurrect anything.
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"a", "b"}, {"b", "c"}},
	)
	NewCutDegPass(1, -1).Run(g)
	if got, want := nodeLabels(g), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	if len(labelEdges(g)) != 0 {
		t.Errorf("edges = %v, want none", labelEdges(g))
	}
}

func TestCutDegPassOutgoingBound(t *testing.T) {
	g := build(t,
		[]string{"fanout", "a", "b"},
		[][2]string{{"fanout", "a"}, {"fanout", "b"}, {"a", "b"}},
	)
	NewCutDegPass(-1, 1).Run(g)
	if got, want := nodeLabels(g), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestUniqueEdgesPassIdempotent(t *testing.T) {
	g := build(t,
		[]string{"a", "b"},
		[][2]string{{"a", "b"}, {"a", "b"}, {"a", "a"}, {"a", "a"}, {"b", "a"}},
	)
	p := NewUniqueEdgesPass()
	p.Run(g)
	once := labelEdges(g)
	want := map[[2]string]int{
		{"a", "b"}: 1,
		{"a", "a"}: 1,
		{"b", "a"}: 1,
	}
	if !reflect.DeepEqual(once, want) {
		t.Errorf("edges = %v, want %v", once, want)
	}
	p.Run(g)
	if twice := labelEdges(g); !reflect.DeepEqual(twice, once) {
		t.Errorf("second run changed edges: %v != %v", twice, once)
	}
}

func TestSubgraphExtractionPass(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"d", "e"}},
	)
	NewSubgraphExtractionPass([]string{"a", "no_such_node"}).Run(g)
	if got, want := nodeLabels(g), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	want := map[[2]string]int{
		{"a", "b"}: 1,
		{"b", "c"}: 1,
		{"c", "a"}: 1,
	}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestReverseGraphPass(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"a", "b"}},
	)
	NewReverseGraphPass().Run(g)
	want := map[[2]string]int{
		{"b", "a"}: 2,
		{"c", "b"}: 1,
	}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestReparentGraphPass(t *testing.T) {
	g := build(t,
		[]string{"n0", "n1", "r", "n2"},
		[][2]string{{"n0", "n1"}, {"n0", "r"}, {"r", "n2"}},
	)
	p, err := NewReparentGraphPass([]string{"^r$"})
	if err != nil {
		t.Fatalf("NewReparentGraphPass: %v", err)
	}
	p.Run(g)
	want := map[[2]string]int{
		{"n0", "n1"}: 1,
		{"n0", "r"}:  1,
		{"r", "n2"}:  1,
		{"n0", "n2"}: 1, // bypass edge
	}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestRemoveEdgesPass(t *testing.T) {
	g := build(t,
		[]string{"a_1", "b_2", "x"},
		[][2]string{{"a_1", "b_2"}, {"a_1", "x"}},
	)
	p, err := NewRemoveEdgesPass([][2]string{{"a_.*", "b.*"}})
	if err != nil {
		t.Fatalf("NewRemoveEdgesPass: %v", err)
	}
	p.Run(g)
	want := map[[2]string]int{{"a_1", "x"}: 1}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestRemoveEdgesPassUnanchoredHalves(t *testing.T) {
	// The rule is one combined regex over "<from>\x00<to>", matched
	// unanchored: ("1", "") hits any edge whose source label ends in 1.
	g := build(t,
		[]string{"a_1", "a_2", "x"},
		[][2]string{{"a_1", "x"}, {"a_2", "x"}},
	)
	p, err := NewRemoveEdgesPass([][2]string{{"1", ""}})
	if err != nil {
		t.Fatalf("NewRemoveEdgesPass: %v", err)
	}
	p.Run(g)
	want := map[[2]string]int{{"a_2", "x"}: 1}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestTerminateNodesPass(t *testing.T) {
	g := build(t,
		[]string{"stop", "a", "b"},
		[][2]string{{"a", "stop"}, {"stop", "b"}, {"a", "b"}},
	)
	NewTerminateNodesPass([]string{"stop"}).Run(g)
	want := map[[2]string]int{
		{"a", "stop"}: 1,
		{"a", "b"}:    1,
	}
	if got := labelEdges(g); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, terminated node must survive", g.Len())
	}
}

func TestPipelineRunsPassesInOrderOverAllGraphs(t *testing.T) {
	g1 := build(t,
		[]string{"a", "b", "drop"},
		[][2]string{{"a", "b"}, {"a", "b"}, {"a", "drop"}},
	)
	g2 := build(t,
		[]string{"drop", "c"},
		[][2]string{{"drop", "c"}, {"c", "c"}, {"c", "c"}},
	)
	rm, err := NewRemoveNodePass([]string{"^drop$"})
	if err != nil {
		t.Fatalf("NewRemoveNodePass: %v", err)
	}
	Pipeline{rm, NewUniqueEdgesPass()}.Run([]*graph.Graph[string]{g1, g2})

	if got, want := labelEdges(g1), map[[2]string]int{{"a", "b"}: 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("g1 edges = %v, want %v", got, want)
	}
	if got, want := labelEdges(g2), map[[2]string]int{{"c", "c"}: 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("g2 edges = %v, want %v", got, want)
	}
}

func TestReparentThenUniqueOnChainedMatches(t *testing.T) {
	// Two matched nodes in a chain: v -> r1 -> r2 -> c. One pass adds
	// v->r2, r1->c; the duplicates a second application would produce
	// collapse under unique_edges.
	g := build(t,
		[]string{"v", "r1", "r2", "c"},
		[][2]string{{"v", "r1"}, {"r1", "r2"}, {"r2", "c"}},
	)
	p, err := NewReparentGraphPass([]string{"^r[0-9]$"})
	if err != nil {
		t.Fatalf("NewReparentGraphPass: %v", err)
	}
	p.Run(g)
	p.Run(g)
	NewUniqueEdgesPass().Run(g)

	got := labelEdges(g)
	for e, n := range got {
		if n != 1 {
			t.Errorf("edge %v has multiplicity %d after unique_edges", e, n)
		}
	}
	if _, ok := got[[2]string{"v", "c"}]; !ok {
		t.Errorf("missing transitive bypass edge v->c: %v", got)
	}
}
