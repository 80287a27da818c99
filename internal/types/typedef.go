// Package types implements the TypeDef registry and the placeholder
// (forward-reference) engine: the part of the compiler that lets
// globals and recursive object/enum types be used before their
// declaration is fully parsed.
//
// TypeDef is a single flat struct rather than the sum-of-interfaces shape
// internal/ast uses for nodes. The difference is deliberate: a
// placeholder must be resolved *in place* so every outstanding pointer
// to it observes the resolved type without being revisited. That
// requires every TypeDef, placeholder or concrete, to share one memory
// layout a resolution can overwrite wholesale: a stable handle whose
// interior gets mutated.
package types

import (
	"fmt"
	"strings"

	"github.com/UpperCi/buzz/internal/lexer"
)

// Kind discriminates the tagged-variant payload carried by a TypeDef.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
	KindString
	KindType
	KindVoid
	KindList
	KindMap
	KindObject
	KindObjectInstance
	KindEnum
	KindEnumInstance
	KindFunction
	KindNative
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "num"
	case KindString:
		return "str"
	case KindType:
		return "type"
	case KindVoid:
		return "void"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindObject:
		return "Object"
	case KindObjectInstance:
		return "ObjectInstance"
	case KindEnum:
		return "Enum"
	case KindEnumInstance:
		return "EnumInstance"
	case KindFunction:
		return "Function"
	case KindNative:
		return "Native"
	case KindPlaceholder:
		return "Placeholder"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FunctionKind distinguishes the role a Function-kinded TypeDef plays:
// Function, Method, Anonymous, Catch, Script, ScriptEntryPoint,
// EntryPoint, Test, or Extern.
type FunctionKind int

const (
	FuncFunction FunctionKind = iota
	FuncMethod
	FuncAnonymous
	FuncCatch
	FuncScript
	FuncScriptEntryPoint
	FuncEntryPoint
	FuncTest
	FuncExtern
)

func (k FunctionKind) String() string {
	switch k {
	case FuncFunction:
		return "Function"
	case FuncMethod:
		return "Method"
	case FuncAnonymous:
		return "Anonymous"
	case FuncCatch:
		return "Catch"
	case FuncScript:
		return "Script"
	case FuncScriptEntryPoint:
		return "ScriptEntryPoint"
	case FuncEntryPoint:
		return "EntryPoint"
	case FuncTest:
		return "Test"
	case FuncExtern:
		return "Extern"
	default:
		return "Function"
	}
}

// Relation labels an edge from a placeholder parent to a derived child
// placeholder.
type Relation int

const (
	RelationCall Relation = iota
	RelationSubscript
	RelationKey
	RelationFieldAccess
	RelationAssignment
)

func (r Relation) String() string {
	switch r {
	case RelationCall:
		return "Call"
	case RelationSubscript:
		return "Subscript"
	case RelationKey:
		return "Key"
	case RelationFieldAccess:
		return "FieldAccess"
	case RelationAssignment:
		return "Assignment"
	default:
		return "Relation(?)"
	}
}

// TypeDef is the tagged-variant type descriptor. Every field below
// belongs to exactly one Kind's payload except Optional, which every
// variant carries.
type TypeDef struct {
	Kind     Kind
	Optional bool

	// List
	Item *TypeDef
	// Map
	MapKey   *TypeDef
	MapValue *TypeDef

	// Object / Enum / ObjectInstance / EnumInstance / Native share Name.
	Name string

	// Object
	Fields             *OrderedMap[*TypeDef]
	Methods            *OrderedMap[*TypeDef]
	StaticFields       *OrderedMap[*TypeDef]
	StaticPlaceholders *OrderedMap[*PlaceholderDef]
	Placeholders       []*PlaceholderDef // FieldAccess placeholders awaiting this object's declaration
	Super              *TypeDef
	Inheritable        bool

	// ObjectInstance / EnumInstance
	Of *TypeDef

	// Enum
	CaseType *TypeDef
	Cases    *OrderedMap[int] // ordinal of each case, in declaration order

	// Function (and Native.Signature, which embeds a Function TypeDef)
	Return      *TypeDef
	Parameters  *OrderedMap[*TypeDef]
	HasDefaults map[string]bool
	FuncKind    FunctionKind
	Lambda      bool

	// Native
	Signature *TypeDef

	// Placeholder — see PlaceholderDef for the full payload. Set while
	// Kind is KindPlaceholder; Resolve copies the target over the whole
	// TypeDef, so a resolved TypeDef carries the target's Placeholder
	// (nil for a concrete type) and no record of having been one.
	Placeholder *PlaceholderDef
}

// PlaceholderDef is the payload of a not-yet-resolved TypeDef. It is
// never interned: every reference site that can't yet resolve a name
// allocates its own, so that per-use state (children, assumption flags)
// stays distinct even when two placeholders happen to name the same
// unresolved symbol.
type PlaceholderDef struct {
	Name  string
	Where lexer.Token

	Parent         *TypeDef // nil at the DAG root
	ParentRelation Relation
	FieldName      string // set when ParentRelation == RelationFieldAccess
	Children       []*TypeDef

	// Usage assumptions recorded at creation/merge time.
	Callable        bool
	Subscriptable   bool
	FieldAccessible bool
	Assignable      bool

	// Not written by Resolve or anywhere else in this module; Resolve's
	// overwrite drops the PlaceholderDef from the resolved TypeDef.
	ResolvedDefKind FunctionKind
}

// Canonical renders t's canonical string representation. The registry
// keys non-placeholder types by this string, so it must be reproducible
// bit-exact for structurally identical types.
func (t *TypeDef) Canonical() string {
	if t == nil {
		return "void"
	}
	base := t.canonicalBase()
	if t.Optional {
		return base + "?"
	}
	return base
}

func (t *TypeDef) canonicalBase() string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindNumber:
		return "num"
	case KindString:
		return "str"
	case KindType:
		return "type"
	case KindVoid:
		return "void"
	case KindList:
		return "[" + t.Item.Canonical() + "]"
	case KindMap:
		return "{" + t.MapKey.Canonical() + "," + t.MapValue.Canonical() + "}"
	case KindObject:
		return "object " + t.Name
	case KindObjectInstance:
		return t.Of.Name
	case KindEnum:
		return "enum " + t.Name
	case KindEnumInstance:
		return t.Of.Name
	case KindFunction:
		return t.functionCanonical("Function")
	case KindNative:
		return t.Signature.functionCanonical("Native")
	case KindPlaceholder:
		if t.Placeholder != nil && t.Placeholder.Name != "" {
			return "<placeholder:" + t.Placeholder.Name + ">"
		}
		return "<placeholder>"
	default:
		return "<invalid>"
	}
}

func (t *TypeDef) functionCanonical(tag string) string {
	var sb strings.Builder
	sb.WriteString(tag)
	sb.WriteString(t.Name)
	sb.WriteString("(")
	if t.Parameters != nil {
		for i, name := range t.Parameters.Keys() {
			if i > 0 {
				sb.WriteString(",")
			}
			param, _ := t.Parameters.Get(name)
			sb.WriteString(param.Canonical())
		}
	}
	sb.WriteString(") > ")
	sb.WriteString(t.Return.Canonical())
	return sb.String()
}

// IsPlaceholder reports whether t is still an unresolved placeholder.
func (t *TypeDef) IsPlaceholder() bool {
	return t != nil && t.Kind == KindPlaceholder
}

func (t *TypeDef) String() string { return t.Canonical() }
