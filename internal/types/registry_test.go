package types

import "testing"

func TestInterningIdentity(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrIntern(&TypeDef{Kind: KindList, Item: r.Number()})
	b := r.GetOrIntern(&TypeDef{Kind: KindList, Item: r.Number()})
	if a != b {
		t.Errorf("expected identical structural types to share identity")
	}
}

func TestGetOrInternNeverDedupesPlaceholders(t *testing.T) {
	r := NewRegistry()
	p1 := r.NewPlaceholder("Foo", zeroToken())
	p2 := r.NewPlaceholder("Foo", zeroToken())
	if p1 == p2 {
		t.Errorf("expected distinct placeholder allocations for the same name")
	}
	if got := r.GetOrIntern(p1); got != p1 {
		t.Errorf("GetOrIntern must hand back a placeholder unchanged, not intern it")
	}
}

func TestInstanceOfIsInterned(t *testing.T) {
	r := NewRegistry()
	obj := r.GetOrIntern(&TypeDef{Kind: KindObject, Name: "Point"})
	a := r.InstanceOf(obj)
	b := r.InstanceOf(obj)
	if a != b {
		t.Errorf("expected ObjectInstance views of the same Object to be interned")
	}
	if got, want := a.Canonical(), "Point"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
