package types

import (
	"fmt"

	"github.com/kr/pretty"
)

// Registry interns structural TypeDefs by their canonical string. It is
// the single source of truth for "are these two types the same type"
// within one compilation root.
type Registry struct {
	interned map[string]*TypeDef

	boolType   *TypeDef
	numberType *TypeDef
	stringType *TypeDef
	typeType   *TypeDef
	voidType   *TypeDef
}

// NewRegistry creates a Registry with the five primitive kinds
// pre-interned, eagerly registering built-ins in the constructor rather
// than lazily on first reference.
func NewRegistry() *Registry {
	r := &Registry{interned: make(map[string]*TypeDef)}
	r.boolType = r.GetOrIntern(&TypeDef{Kind: KindBool})
	r.numberType = r.GetOrIntern(&TypeDef{Kind: KindNumber})
	r.stringType = r.GetOrIntern(&TypeDef{Kind: KindString})
	r.typeType = r.GetOrIntern(&TypeDef{Kind: KindType})
	r.voidType = r.GetOrIntern(&TypeDef{Kind: KindVoid})
	return r
}

func (r *Registry) Bool() *TypeDef   { return r.boolType }
func (r *Registry) Number() *TypeDef { return r.numberType }
func (r *Registry) String() *TypeDef { return r.stringType }
func (r *Registry) Type() *TypeDef   { return r.typeType }
func (r *Registry) Void() *TypeDef   { return r.voidType }

// GetOrIntern canonicalizes desc and returns the existing TypeDef with
// that canonical string, or stores and returns desc itself if it is the
// first of its shape. Placeholders are never interned: they are
// allocated fresh each call, since each placeholder carries distinct
// per-use state, so sharing one by canonical string would merge
// unrelated usage DAGs.
func (r *Registry) GetOrIntern(desc *TypeDef) *TypeDef {
	if desc.Kind == KindPlaceholder {
		return desc
	}
	key := desc.Canonical()
	if existing, ok := r.interned[key]; ok {
		return existing
	}
	r.interned[key] = desc
	return desc
}

// InstanceOf returns the interned ObjectInstance/EnumInstance view of an
// Object or Enum TypeDef.
func (r *Registry) InstanceOf(objOrEnum *TypeDef) *TypeDef {
	switch objOrEnum.Kind {
	case KindObject:
		return r.GetOrIntern(&TypeDef{Kind: KindObjectInstance, Of: objOrEnum})
	case KindEnum:
		return r.GetOrIntern(&TypeDef{Kind: KindEnumInstance, Of: objOrEnum})
	default:
		panic(fmt.Sprintf("types: InstanceOf called on non-object/enum kind %s", objOrEnum.Kind))
	}
}

// WithOptional returns a TypeDef identical to t except for its Optional
// flag, interned as its own canonical entry (the trailing `?` changes
// the canonical string). Placeholders are mutated directly rather than
// copied, since they are identity-significant and never interned.
func (r *Registry) WithOptional(t *TypeDef, optional bool) *TypeDef {
	if t == nil {
		return nil
	}
	if t.Optional == optional {
		return t
	}
	if t.Kind == KindPlaceholder {
		t.Optional = optional
		return t
	}
	cp := *t
	cp.Optional = optional
	return r.GetOrIntern(&cp)
}

// DebugDump renders every interned type for `--verbose` CLI diagnostics,
// using kr/pretty to diff structural Go values instead of hand-rolling a
// recursive printer.
func (r *Registry) DebugDump() string {
	return pretty.Sprint(r.interned)
}

// Len reports how many distinct concrete types are currently interned.
func (r *Registry) Len() int { return len(r.interned) }
