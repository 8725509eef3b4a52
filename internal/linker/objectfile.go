package linker

import (
	"fmt"
	"log"
)

// ObjectFile owns the symbol tables of one translation unit. Functions
// are uniqued by name; the object, points-to and call tables are not,
// every insertion appends.
type ObjectFile struct {
	funcs    []Function
	funcIdx  map[string]int
	objects  []Object
	pointsTo []PointsTo
	calls    []Call
}

// NewObjectFile returns an empty object file.
func NewObjectFile() *ObjectFile {
	return &ObjectFile{funcIdx: make(map[string]int)}
}

// AddFunction inserts a function symbol or returns the existing one with
// the same name. The second result reports whether the symbol already
// existed; in that case the stored external flag is left untouched.
func (o *ObjectFile) AddFunction(f Function) (SymPtr, bool) {
	if idx, ok := o.funcIdx[f.Name]; ok {
		return FuncPtr(idx), true
	}
	idx := len(o.funcs)
	o.funcs = append(o.funcs, f)
	o.funcIdx[f.Name] = idx
	return FuncPtr(idx), false
}

// AddObject appends an object symbol and returns its pointer.
func (o *ObjectFile) AddObject(obj Object) SymPtr {
	o.objects = append(o.objects, obj)
	return ObjPtr(len(o.objects) - 1)
}

// AddPointsTo appends a points-to set and returns its pointer.
func (o *ObjectFile) AddPointsTo(p PointsTo) SymPtr {
	o.pointsTo = append(o.pointsTo, p)
	return PtsPtr(len(o.pointsTo) - 1)
}

// AddCall appends a call site and returns its pointer.
func (o *ObjectFile) AddCall(c Call) SymPtr {
	o.calls = append(o.calls, c)
	return CallPtr(len(o.calls) - 1)
}

// NumFunctions returns the size of the function table.
func (o *ObjectFile) NumFunctions() int { return len(o.funcs) }

// NumObjects returns the size of the object table.
func (o *ObjectFile) NumObjects() int { return len(o.objects) }

// NumPointsTo returns the size of the points-to table.
func (o *ObjectFile) NumPointsTo() int { return len(o.pointsTo) }

// NumCalls returns the size of the call table.
func (o *ObjectFile) NumCalls() int { return len(o.calls) }

// FunctionID returns the index of the named function, if present.
func (o *ObjectFile) FunctionID(name string) (int, bool) {
	idx, ok := o.funcIdx[name]
	return idx, ok
}

// FunctionByName returns the named function symbol, if present.
func (o *ObjectFile) FunctionByName(name string) (Function, bool) {
	idx, ok := o.funcIdx[name]
	if !ok {
		return Function{}, false
	}
	return o.funcs[idx], true
}

// FunctionAt returns the function symbol ptr names. It panics if ptr is
// not a function pointer: that is a bug in the caller, not bad input.
func (o *ObjectFile) FunctionAt(ptr SymPtr) Function {
	if ptr.Kind != KindFunction {
		panic(fmt.Sprintf("linker: %v is not a function pointer", ptr))
	}
	return o.funcs[ptr.Index]
}

// CallAt returns the call site ptr names. It panics if ptr is not a call
// pointer.
func (o *ObjectFile) CallAt(ptr SymPtr) Call {
	if ptr.Kind != KindCall {
		panic(fmt.Sprintf("linker: %v is not a call pointer", ptr))
	}
	return o.calls[ptr.Index]
}

// IsIndirectCall reports whether ptr names a call through a points-to
// set. It panics if ptr is not a call pointer or the callee is neither a
// function nor a points-to set.
func (o *ObjectFile) IsIndirectCall(ptr SymPtr) bool {
	call := o.CallAt(ptr)
	switch call.Callee.Kind {
	case KindFunction:
		return false
	case KindPointsTo:
		return true
	default:
		panic(fmt.Sprintf("linker: callee %v is not a function or points-to set", call.Callee))
	}
}

// ReferencedFunctions resolves ptr to function table indices: a function
// pointer names itself, a points-to pointer names every function member
// of the set (non-function members are discarded). Any other kind is a
// contract violation and panics.
func (o *ObjectFile) ReferencedFunctions(ptr SymPtr) []int {
	switch ptr.Kind {
	case KindFunction:
		return []int{ptr.Index}
	case KindPointsTo:
		var out []int
		for _, target := range o.pointsTo[ptr.Index].Targets {
			if target.Kind == KindFunction {
				out = append(out, target.Index)
			}
		}
		return out
	default:
		panic(fmt.Sprintf("linker: only function and points-to pointers reference functions, not %v", ptr))
	}
}

// rewritePtr returns ptr translated from other's index space into o's.
// Function pointers are re-resolved by name through o's (already merged)
// name map; other kinds are shifted past o's existing table, since those
// tables are plain appends. o's tables must not change while a batch of
// pointers is being rewritten.
func (o *ObjectFile) rewritePtr(ptr SymPtr, names []string) SymPtr {
	switch ptr.Kind {
	case KindFunction:
		return FuncPtr(o.funcIdx[names[ptr.Index]])
	case KindObject:
		return ObjPtr(ptr.Index + len(o.objects))
	case KindPointsTo:
		return PtsPtr(ptr.Index + len(o.pointsTo))
	case KindCall:
		return CallPtr(ptr.Index + len(o.calls))
	default:
		panic(fmt.Sprintf("linker: cannot rewrite %v", ptr))
	}
}

func (o *ObjectFile) rewriteObject(obj *Object, names []string) {
	for _, field := range obj.Fields {
		if field != nil {
			*field = o.rewritePtr(*field, names)
		}
	}
}

func (o *ObjectFile) rewritePointsTo(p *PointsTo, names []string) {
	for i, target := range p.Targets {
		p.Targets[i] = o.rewritePtr(target, names)
	}
}

func (o *ObjectFile) rewriteCall(c *Call, names []string) {
	c.Callee = o.rewritePtr(c.Callee, names)
	for _, arg := range c.Args {
		if arg != nil {
			*arg = o.rewritePtr(*arg, names)
		}
	}
	if c.Callsite != nil {
		*c.Callsite = o.rewritePtr(*c.Callsite, names)
	}
}

// Link merges other into o. Function symbols are unified by name; if the
// two definitions disagree on the external flag the merged symbol becomes
// internal, since one side supplied a definition. The remaining tables
// are appended after o's entries with every SymPtr rewritten to stay
// valid. other is left in an unusable state and must not be reused.
func (o *ObjectFile) Link(other *ObjectFile) {
	// Index->name of other's functions, needed to re-resolve function
	// pointers after the merge may have renumbered them.
	names := make([]string, len(other.funcs))
	for i, f := range other.funcs {
		names[i] = f.Name
		ptr, existed := o.AddFunction(f)
		if existed && f.External != o.funcs[ptr.Index].External {
			log.Printf("linker: function %s is now internal", f.Name)
			o.funcs[ptr.Index].External = false
		}
	}
	// Rewrite other's pointers in place, then move the tables over.
	// other holds inconsistent data from here on.
	for i := range other.objects {
		o.rewriteObject(&other.objects[i], names)
	}
	for i := range other.pointsTo {
		o.rewritePointsTo(&other.pointsTo[i], names)
	}
	for i := range other.calls {
		o.rewriteCall(&other.calls[i], names)
	}
	o.objects = append(o.objects, other.objects...)
	o.pointsTo = append(o.pointsTo, other.pointsTo...)
	o.calls = append(o.calls, other.calls...)
	other.funcIdx = nil
}

// LinkAll folds the files left to right into the first one and returns
// it. The fold order decides which external-flag conflicts are seen
// first, but the final flags are order-independent: a flag only ever
// moves from external to internal. LinkAll returns nil for no input.
func LinkAll(files []*ObjectFile) *ObjectFile {
	if len(files) == 0 {
		return nil
	}
	merged := files[0]
	for _, f := range files[1:] {
		merged.Link(f)
	}
	return merged
}
