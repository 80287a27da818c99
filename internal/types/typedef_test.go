package types

import "testing"

func TestCanonicalPrimitives(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		t    *TypeDef
		want string
	}{
		{r.Bool(), "bool"},
		{r.Number(), "num"},
		{r.String(), "str"},
		{r.Type(), "type"},
		{r.Void(), "void"},
	}
	for _, c := range cases {
		if got := c.t.Canonical(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

func TestCanonicalOptionalSuffix(t *testing.T) {
	r := NewRegistry()
	opt := r.WithOptional(r.Number(), true)
	if got, want := opt.Canonical(), "num?"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCanonicalListAndMap(t *testing.T) {
	r := NewRegistry()
	list := r.GetOrIntern(&TypeDef{Kind: KindList, Item: r.Number()})
	if got, want := list.Canonical(), "[num]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	m := r.GetOrIntern(&TypeDef{Kind: KindMap, MapKey: r.String(), MapValue: r.Bool()})
	if got, want := m.Canonical(), "{str,bool}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCanonicalFunction(t *testing.T) {
	r := NewRegistry()
	params := NewOrderedMap[*TypeDef]()
	params.Set("n", r.Number())
	fn := r.GetOrIntern(&TypeDef{Kind: KindFunction, Name: "fact", Return: r.Number(), Parameters: params})
	if got, want := fn.Canonical(), "Functionfact(num) > num"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
