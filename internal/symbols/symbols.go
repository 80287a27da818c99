// Package symbols implements buzz's scope machinery: per-frame locals
// and upvalues, and the single process-wide (per parser instance) global
// table with import prefixing and export visibility.
//
// The scope-chain shape (an enclosing pointer per Frame, a flat map-ish
// table per scope) resembles a textbook tree-walking interpreter's symbol
// table. Locals and upvalues are addressed by slot index in a
// fixed-capacity array rather than by name lookup, since slot indices are
// observable in diagnostics and in any downstream bytecode encoding that
// consumes this front end's output.
package symbols

import (
	"fmt"

	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/types"
)

// MaxSlots is the fixed-capacity scope array cap: 255 locals and 255
// upvalues per frame, so a slot index fits in a single byte for a
// downstream bytecode emitter.
const MaxSlots = 255

// Local is a per-frame local binding.
type Local struct {
	Name       string
	Type       *types.TypeDef
	Depth      int // -1 while uninitialized
	IsCaptured bool
	Constant   bool
}

// UpValue is a per-frame captured-variable record.
type UpValue struct {
	Index   int
	IsLocal bool
}

// Global is a process-wide (per parser instance) binding.
type Global struct {
	Prefix      string
	Name        string
	Type        *types.TypeDef
	Initialized bool
	Exported    bool
	ExportAlias string
	Hidden      bool
	Constant    bool
}

// VisibleName is the name an importer sees: export_alias if the global
// was renamed on export, else Name.
func (g *Global) VisibleName() string {
	if g.ExportAlias != "" {
		return g.ExportAlias
	}
	return g.Name
}

// Frame is a per-function compile-time context.
type Frame struct {
	Enclosing  *Frame
	Locals     [MaxSlots]Local
	LocalCount int
	UpValues   [MaxSlots]UpValue
	UpvalCount int
	ScopeDepth int
}

// NewFrame creates a frame nested inside enclosing (nil for the script's
// top-level frame).
func NewFrame(enclosing *Frame) *Frame {
	return &Frame{Enclosing: enclosing}
}

// Table owns a Frame stack and the single global list for one
// compilation root.
type Table struct {
	globals []*Global
	current *Frame

	// importing tracks resolved absolute paths currently being parsed
	// (i.e. still on the recursive import call stack), so the import
	// loader can refuse a cycle (`A` imports `B` imports `A`) instead of
	// recursing forever.
	importing map[string]bool
}

// NewTable creates an empty Table whose first frame is the script's
// top-level frame.
func NewTable() *Table {
	return &Table{current: NewFrame(nil), importing: make(map[string]bool)}
}

// BeginImport records that path is now being parsed, reporting true if it
// was already on the import stack (a cycle) rather than starting it.
func (t *Table) BeginImport(path string) (cycle bool) {
	if t.importing[path] {
		return true
	}
	t.importing[path] = true
	return false
}

// EndImport removes path from the import stack once it finishes parsing.
func (t *Table) EndImport(path string) {
	delete(t.importing, path)
}

// Current returns the active frame.
func (t *Table) Current() *Frame { return t.current }

// PushFrame starts a new nested frame (entering a function body).
func (t *Table) PushFrame() *Frame {
	t.current = NewFrame(t.current)
	return t.current
}

// PopFrame leaves the current frame, returning to its enclosing one. It
// is the caller's responsibility to have already captured anything the
// departing frame's locals needed to hand back (return type, etc.).
func (t *Table) PopFrame() {
	if t.current.Enclosing != nil {
		t.current = t.current.Enclosing
	}
}

// BeginScope/EndScope track block nesting within the current frame: a
// declaration may not shadow a still-live local declared at the same or
// a deeper scope depth within this frame.
func (t *Table) BeginScope() { t.current.ScopeDepth++ }

// EndScope pops locals declared at the scope being left and reports how
// many were popped, captured or not.
func (t *Table) EndScope() (popped int) {
	f := t.current
	f.ScopeDepth--
	for f.LocalCount > 0 && f.Locals[f.LocalCount-1].Depth > f.ScopeDepth {
		f.LocalCount--
		popped++
	}
	return popped
}

// Globals returns the full global list in declaration order. Indices
// into this slice are the global slot indices that must stay stable
// across imports.
func (t *Table) Globals() []*Global { return t.globals }

// DeclareVariable binds name in the current scope. At scope_depth > 0 it
// allocates the next local slot (uninitialized, depth -1); at depth 0 it
// appends a global. If name already names a placeholder global (declared
// via DeclarePlaceholder for a forward reference), the caller must
// resolve that placeholder itself — via types.Resolve against typ —
// before calling DeclareVariable again to complete the binding;
// DeclareVariable refuses to redeclare a name that is still an
// unresolved placeholder.
func (t *Table) DeclareVariable(typ *types.TypeDef, name string, constant bool) (slot int, isLocal bool, err error) {
	f := t.current
	if f.ScopeDepth > 0 {
		for i := f.LocalCount - 1; i >= 0; i-- {
			local := f.Locals[i]
			if local.Depth != -1 && local.Depth < f.ScopeDepth {
				break
			}
			if local.Name == name {
				return 0, true, fmt.Errorf("%q is already declared in this scope", name)
			}
		}
		if f.LocalCount >= MaxSlots {
			return 0, true, fmt.Errorf("too many local variables in one function (max %d)", MaxSlots)
		}
		f.Locals[f.LocalCount] = Local{Name: name, Type: typ, Depth: -1, Constant: constant}
		slot = f.LocalCount
		f.LocalCount++
		return slot, true, nil
	}

	for i, g := range t.globals {
		if g.Name == name && g.Prefix == "" {
			if g.Type.IsPlaceholder() {
				return 0, false, fmt.Errorf("%q is still a forward reference; resolve it before redeclaring", name)
			}
			return 0, false, fmt.Errorf("%q is already declared as a global", name)
		}
	}
	t.globals = append(t.globals, &Global{Name: name, Type: typ, Constant: constant})
	return len(t.globals) - 1, false, nil
}

// MarkInitialized flips a local's depth from the -1 sentinel to its
// enclosing scope depth, or a global's initialized flag to true.
func (t *Table) MarkInitialized() {
	f := t.current
	if f.ScopeDepth == 0 {
		if len(t.globals) > 0 {
			t.globals[len(t.globals)-1].Initialized = true
		}
		return
	}
	f.Locals[f.LocalCount-1].Depth = f.ScopeDepth
}

// ResolveLocal scans frame's local array from the top, erroring if the
// match is still uninitialized (a variable referencing itself inside its
// own initializer).
func ResolveLocal(f *Frame, name string) (slot int, found bool, err error) {
	for i := f.LocalCount - 1; i >= 0; i-- {
		if f.Locals[i].Name == name {
			if f.Locals[i].Depth == -1 {
				return 0, true, fmt.Errorf("cannot read local variable %q in its own initializer", name)
			}
			return i, true, nil
		}
	}
	return 0, false, nil
}

// ResolveUpvalue recurses into enclosing frames, marking a found local as
// captured and threading an upvalue chain back down to frame.
func ResolveUpvalue(f *Frame, name string) (slot int, found bool, err error) {
	if f.Enclosing == nil {
		return 0, false, nil
	}
	if localSlot, ok, lerr := ResolveLocal(f.Enclosing, name); lerr != nil {
		return 0, true, lerr
	} else if ok {
		f.Enclosing.Locals[localSlot].IsCaptured = true
		idx, err := addUpvalue(f, localSlot, true)
		return idx, true, err
	}
	if upSlot, ok, uerr := ResolveUpvalue(f.Enclosing, name); uerr != nil {
		return 0, true, uerr
	} else if ok {
		idx, err := addUpvalue(f, upSlot, false)
		return idx, true, err
	}
	return 0, false, nil
}

// UpvalueType resolves the declared type an upvalue slot refers to by
// walking back into the enclosing frame, recursing through chained
// upvalues (a value captured by a function two levels removed from its
// original local).
func (f *Frame) UpvalueType(idx int) *types.TypeDef {
	uv := f.UpValues[idx]
	if f.Enclosing == nil {
		return nil
	}
	if uv.IsLocal {
		return f.Enclosing.Locals[uv.Index].Type
	}
	return f.Enclosing.UpvalueType(uv.Index)
}

func addUpvalue(f *Frame, index int, isLocal bool) (int, error) {
	for i := 0; i < f.UpvalCount; i++ {
		if f.UpValues[i].Index == index && f.UpValues[i].IsLocal == isLocal {
			return i, nil
		}
	}
	if f.UpvalCount >= MaxSlots {
		return 0, fmt.Errorf("too many captured variables in one function (max %d)", MaxSlots)
	}
	f.UpValues[f.UpvalCount] = UpValue{Index: index, IsLocal: isLocal}
	idx := f.UpvalCount
	f.UpvalCount++
	return idx, nil
}

// ResolveGlobal matches on (prefix, name). The caller (parser) is
// responsible for the recursive `pkg.Symbol` retry when a prefix matches
// but the name doesn't.
func (t *Table) ResolveGlobal(prefix, name string) (idx int, found bool) {
	for i, g := range t.globals {
		if g.Prefix == prefix && g.VisibleName() == name && !g.Hidden {
			return i, true
		}
	}
	return 0, false
}

// HasPrefix reports whether any global carries the given import prefix,
// letting the parser decide whether `Prefix.Name` should be retried as a
// prefixed lookup at all.
func (t *Table) HasPrefix(prefix string) bool {
	for _, g := range t.globals {
		if g.Prefix == prefix {
			return true
		}
	}
	return false
}

// DeclarePlaceholder registers a global slot up front holding a fresh
// placeholder TypeDef, for when a name is referenced before its
// declaration has been parsed. The real declaration, once parsed, calls
// types.Resolve against that same TypeDef pointer (identity is preserved
// across resolution) rather than going through DeclareVariable.
func (t *Table) DeclarePlaceholder(r *types.Registry, name string, where lexer.Token) *types.TypeDef {
	for _, g := range t.globals {
		if g.Name == name && g.Prefix == "" {
			return g.Type
		}
	}
	ph := r.NewPlaceholder(name, where)
	t.globals = append(t.globals, &Global{Name: name, Type: ph, Initialized: true})
	return ph
}
