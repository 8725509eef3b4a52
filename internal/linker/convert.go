package linker

import (
	"log"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// FromGraph builds an ObjectFile from a call graph: node i becomes
// function i (internal, labels are the function names) and every edge
// v->u becomes a direct call to u from callsite v.
func FromGraph(g *graph.Graph[string]) *ObjectFile {
	obj := NewObjectFile()
	for v := 0; v < g.Len(); v++ {
		// Insertion order matches node order, so function index == node ID.
		obj.AddFunction(Function{Name: g.Payload(v)})
	}
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Succs(v) {
			obj.AddCall(NewCallAt(FuncPtr(u), nil, FuncPtr(v)))
		}
	}
	return obj
}

// ToGraph converts an ObjectFile into a call graph: one node per
// function, labelled with its name, and one edge callsite->target per
// function the call's callee resolves to. Calls without a function
// callsite are reported and dropped. Objects and points-to sets carry no
// graph shape of their own and are discarded.
func ToGraph(obj *ObjectFile) *graph.Graph[string] {
	if obj.NumObjects() > 0 || obj.NumPointsTo() > 0 {
		log.Printf("linker: object file has %d objects and %d points-to sets; conversion to a graph discards them",
			obj.NumObjects(), obj.NumPointsTo())
	}
	names := make([]string, obj.NumFunctions())
	for i := range names {
		names[i] = obj.FunctionAt(FuncPtr(i)).Name
	}
	g := graph.NewWithPayloads(names)
	for i, call := range obj.calls {
		if call.Callsite == nil || call.Callsite.Kind != KindFunction {
			log.Printf("linker: call %d has wrong or missing callsite, discarding it", i)
			continue
		}
		for _, f := range obj.ReferencedFunctions(call.Callee) {
			g.AddEdge(call.Callsite.Index, f)
		}
	}
	return g
}
