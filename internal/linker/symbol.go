// Package linker provides the object-file representation of a call graph
// (functions, aggregate objects, points-to sets and call sites) and the
// link operation that merges two such representations while keeping every
// cross-reference valid.
package linker

import "fmt"

// SymKind discriminates the four symbol tables of an ObjectFile.
type SymKind uint8

const (
	KindFunction SymKind = iota
	KindObject
	KindPointsTo
	KindCall
)

func (k SymKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindObject:
		return "object"
	case KindPointsTo:
		return "points-to"
	case KindCall:
		return "call"
	default:
		return fmt.Sprintf("SymKind(%d)", uint8(k))
	}
}

// SymPtr is a tagged reference to a slot in one of an ObjectFile's four
// symbol tables. A SymPtr is only meaningful relative to the ObjectFile
// that produced it; mixing pointers across files without rewriting them
// is a programming error.
type SymPtr struct {
	Kind  SymKind
	Index int
}

func (p SymPtr) String() string {
	return fmt.Sprintf("%s(%d)", p.Kind, p.Index)
}

// FuncPtr returns a SymPtr naming slot i of the function table.
func FuncPtr(i int) SymPtr { return SymPtr{KindFunction, i} }

// ObjPtr returns a SymPtr naming slot i of the object table.
func ObjPtr(i int) SymPtr { return SymPtr{KindObject, i} }

// PtsPtr returns a SymPtr naming slot i of the points-to table.
func PtsPtr(i int) SymPtr { return SymPtr{KindPointsTo, i} }

// CallPtr returns a SymPtr naming slot i of the call table.
func CallPtr(i int) SymPtr { return SymPtr{KindCall, i} }

// Function is a function symbol, unique by name within an ObjectFile.
// External marks a declaration without a known definition.
type Function struct {
	Name     string
	External bool
}

// Object models an aggregate value. A nil field is non-pointer data, a
// non-nil one references a Function or Object symbol (never a Call).
type Object struct {
	Fields []*SymPtr
}

// PointsTo is a flattened points-to set: the symbols an indirect pointer
// may denote. By contract targets reference Function or Object symbols
// only; this is not enforced.
type PointsTo struct {
	Targets []SymPtr
}

// Call is a call site. A Function callee is a direct call, a PointsTo
// callee an indirect one. Nil argument entries are non-pointer arguments.
// A nil Callsite means the calling function is unknown; such orphan calls
// are skipped (and reported) by anything that keys off the caller.
type Call struct {
	Callee   SymPtr
	Args     []*SymPtr
	Callsite *SymPtr
}

// NewCall returns a call with no callsite.
func NewCall(callee SymPtr, args []*SymPtr) Call {
	return Call{Callee: callee, Args: args}
}

// NewCallAt returns a call made from the given function symbol.
func NewCallAt(callee SymPtr, args []*SymPtr, callsite SymPtr) Call {
	return Call{Callee: callee, Args: args, Callsite: &callsite}
}
