package types

import (
	"fmt"

	"github.com/UpperCi/buzz/internal/lexer"
)

// ResolutionError is a type-level diagnostic raised while walking a
// placeholder's relation DAG. It always carries the position of the
// specific use site that failed, not the declaration whose arrival
// triggered resolution: a reference should produce a diagnostic at the
// original use site, not at the declaration site.
type ResolutionError struct {
	Message string
	Pos     lexer.Position
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// NewPlaceholder allocates a fresh, never-interned placeholder TypeDef
// rooted at the token that could not yet be resolved.
func (r *Registry) NewPlaceholder(name string, where lexer.Token) *TypeDef {
	return &TypeDef{
		Kind: KindPlaceholder,
		Placeholder: &PlaceholderDef{
			Name:  name,
			Where: where,
		},
	}
}

// Link records that child was derived from parent via relation. Both
// ends must still be unresolved placeholders.
func Link(parent, child *TypeDef, relation Relation, fieldName string) error {
	if !parent.IsPlaceholder() || !child.IsPlaceholder() {
		return fmt.Errorf("types: Link requires both ends to be placeholders (parent=%s child=%s)", parent.Kind, child.Kind)
	}
	parent.Placeholder.Children = append(parent.Placeholder.Children, child)
	child.Placeholder.Parent = parent
	child.Placeholder.ParentRelation = relation
	child.Placeholder.FieldName = fieldName

	switch relation {
	case RelationCall:
		parent.Placeholder.Callable = true
	case RelationSubscript, RelationKey:
		parent.Placeholder.Subscriptable = true
	case RelationFieldAccess:
		parent.Placeholder.FieldAccessible = true
	case RelationAssignment:
		parent.Placeholder.Assignable = true
	}
	return nil
}

// IsCoherent reports whether p's recorded usage assumptions are
// mutually consistent: a placeholder used both as callable and
// subscriptable, or both field-accessible and subscriptable, can never
// be satisfied by any concrete type.
func IsCoherent(p *TypeDef) bool {
	if !p.IsPlaceholder() {
		return true
	}
	ph := p.Placeholder
	if ph.Callable && ph.Subscriptable {
		return false
	}
	if ph.FieldAccessible && ph.Subscriptable {
		return false
	}
	return true
}

// Resolve walks p's relation DAG against the now-concrete target and, if
// every child relation is satisfiable, overwrites *p in place with
// *target. constant marks whether the binding p stands for is itself
// read-only — the only reason an Assignment-relation child can fail.
func Resolve(r *Registry, p *TypeDef, target *TypeDef, constant bool) error {
	if !p.IsPlaceholder() {
		return nil // idempotent: already resolved
	}
	if target.IsPlaceholder() {
		return nil // resolution happens later, once target itself resolves
	}

	for _, child := range p.Placeholder.Children {
		if err := resolveChild(r, child, target, constant); err != nil {
			return err
		}
	}

	*p = *target
	return nil
}

func resolveChild(r *Registry, child *TypeDef, target *TypeDef, constant bool) error {
	ph := child.Placeholder
	where := ph.Where

	switch ph.ParentRelation {
	case RelationCall:
		switch target.Kind {
		case KindFunction:
			return Resolve(r, child, target.Return, false)
		case KindNative:
			return Resolve(r, child, target.Signature.Return, false)
		case KindObject:
			return Resolve(r, child, r.InstanceOf(target), false)
		default:
			return &ResolutionError{Message: fmt.Sprintf("cannot call a value of type %s", target.Canonical()), Pos: where}
		}

	case RelationSubscript:
		switch target.Kind {
		case KindList:
			return Resolve(r, child, target.Item, false)
		case KindMap:
			return Resolve(r, child, r.WithOptional(target.MapValue, true), false)
		default:
			return &ResolutionError{Message: fmt.Sprintf("cannot subscript a value of type %s", target.Canonical()), Pos: where}
		}

	case RelationKey:
		if target.Kind != KindMap {
			return &ResolutionError{Message: fmt.Sprintf("cannot use a key on a value of type %s", target.Canonical()), Pos: where}
		}
		return Resolve(r, child, target.MapKey, false)

	case RelationFieldAccess:
		switch target.Kind {
		case KindObjectInstance:
			obj := target.Of
			if ft, ok := obj.Fields.Get(ph.FieldName); ok {
				return Resolve(r, child, ft, false)
			}
			if mt, ok := obj.Methods.Get(ph.FieldName); ok {
				return Resolve(r, child, mt, false)
			}
			return &ResolutionError{Message: fmt.Sprintf("%s has no member %q", obj.Name, ph.FieldName), Pos: where}
		case KindEnum:
			// A missing enum case is a definite error, not a silent no-op.
			if _, ok := target.Cases.Get(ph.FieldName); !ok {
				return &ResolutionError{Message: fmt.Sprintf("%s has no case %q", target.Name, ph.FieldName), Pos: where}
			}
			return Resolve(r, child, r.InstanceOf(target), false)
		default:
			return &ResolutionError{Message: fmt.Sprintf("cannot access a member on a value of type %s", target.Canonical()), Pos: where}
		}

	case RelationAssignment:
		if constant {
			return &ResolutionError{Message: "cannot assign to a constant binding", Pos: where}
		}
		instance := target
		switch target.Kind {
		case KindObject, KindEnum:
			instance = r.InstanceOf(target)
		}
		return Resolve(r, child, instance, false)

	default:
		return &ResolutionError{Message: "unknown placeholder relation", Pos: where}
	}
}
