package linker

import (
	"reflect"
	"testing"

	"github.com/Frankenween/dot-linker/internal/graph"
)

func TestFromGraph(t *testing.T) {
	g := graph.New[string]()
	a := g.NewNode("a")
	b := g.NewNode("b")
	c := g.NewNode("c")
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	g.AddEdge(b, c) // parallel call site

	obj := FromGraph(g)
	if obj.NumFunctions() != 3 {
		t.Fatalf("NumFunctions() = %d, want 3", obj.NumFunctions())
	}
	for i, name := range []string{"a", "b", "c"} {
		id, ok := obj.FunctionID(name)
		if !ok || id != i {
			t.Errorf("FunctionID(%q) = %d, %v; want %d, true", name, id, ok, i)
		}
		if f, _ := obj.FunctionByName(name); f.External {
			t.Errorf("%q should be internal", name)
		}
	}
	if obj.NumCalls() != 3 {
		t.Fatalf("NumCalls() = %d, want 3", obj.NumCalls())
	}
	call := obj.CallAt(CallPtr(0))
	if call.Callee != FuncPtr(b) || call.Callsite == nil || *call.Callsite != FuncPtr(a) {
		t.Errorf("first call = %+v, want a -> b", call)
	}
}

func TestToGraph(t *testing.T) {
	obj := NewObjectFile()
	fa, _ := obj.AddFunction(Function{Name: "a"})
	fb, _ := obj.AddFunction(Function{Name: "b"})
	fc, _ := obj.AddFunction(Function{Name: "c"})
	pts := obj.AddPointsTo(PointsTo{Targets: []SymPtr{fb, fc}})

	obj.AddCall(NewCallAt(fb, nil, fa))  // direct: a -> b
	obj.AddCall(NewCallAt(pts, nil, fb)) // indirect: b -> b, b -> c
	obj.AddCall(NewCall(fc, nil))        // orphan, dropped

	g := ToGraph(obj)
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	for i, name := range []string{"a", "b", "c"} {
		if g.Payload(i) != name {
			t.Errorf("Payload(%d) = %q, want %q", i, g.Payload(i), name)
		}
	}
	if got := g.Succs(0); !reflect.DeepEqual(got, []graph.NodeID{1}) {
		t.Errorf("Succs(a) = %v, want [b]", got)
	}
	if got := g.Succs(1); !reflect.DeepEqual(got, []graph.NodeID{1, 2}) {
		t.Errorf("Succs(b) = %v, want [b c]", got)
	}
	if got := g.Succs(2); len(got) != 0 {
		t.Errorf("Succs(c) = %v, want none", got)
	}
}

func TestGraphObjectFileRoundTrip(t *testing.T) {
	g := graph.New[string]()
	a := g.NewNode("a")
	b := g.NewNode("b")
	c := g.NewNode("c")
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	g.AddEdge(c, a)

	back := ToGraph(FromGraph(g))
	if back.Len() != g.Len() {
		t.Fatalf("Len() = %d, want %d", back.Len(), g.Len())
	}
	for v := 0; v < g.Len(); v++ {
		if back.Payload(v) != g.Payload(v) {
			t.Errorf("Payload(%d) = %q, want %q", v, back.Payload(v), g.Payload(v))
		}
		if !reflect.DeepEqual(back.Succs(v), g.Succs(v)) {
			t.Errorf("Succs(%d) = %v, want %v", v, back.Succs(v), g.Succs(v))
		}
	}
}

func TestLinkedGraphsShareFunctions(t *testing.T) {
	g1 := graph.New[string]()
	a := g1.NewNode("a")
	b := g1.NewNode("b")
	g1.AddEdge(a, b)

	g2 := graph.New[string]()
	b2 := g2.NewNode("b")
	c := g2.NewNode("c")
	g2.AddEdge(b2, c)

	merged := LinkAll([]*ObjectFile{FromGraph(g1), FromGraph(g2)})
	g := ToGraph(merged)
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (b unified)", g.Len())
	}
	// a -> b -> c must be a connected chain in the linked graph.
	reach := g.Reachable([]graph.NodeID{0})
	if !reflect.DeepEqual(reach, []graph.NodeID{0, 1, 2}) {
		t.Errorf("Reachable(a) = %v, want [a b c]", reach)
	}
}
