package types

import "github.com/emirpasic/gods/maps/linkedhashmap"

// OrderedMap preserves insertion order the way the ordered
// map<name, TypeDef> fields (Object.fields, Object.methods,
// Function.parameters, Enum.cases) require: field/parameter/case
// declaration order is observable (canonical strings, JSON dumps) and
// must survive re-declaration-free lookups.
//
// It is a thin, type-safe wrapper around gods' linkedhashmap.Map, since
// the standard library has no ordered map.
type OrderedMap[V any] struct {
	m *linkedhashmap.Map
}

// NewOrderedMap creates an empty, order-preserving string-keyed map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{m: linkedhashmap.New()}
}

// Set inserts or overwrites the value for key, preserving key's original
// insertion position if it already existed.
func (o *OrderedMap[V]) Set(key string, value V) {
	o.m.Put(key, value)
}

// Get returns the value stored for key and whether it was present.
func (o *OrderedMap[V]) Get(key string) (V, bool) {
	raw, found := o.m.Get(key)
	if !found {
		var zero V
		return zero, false
	}
	return raw.(V), true
}

// Has reports whether key is present.
func (o *OrderedMap[V]) Has(key string) bool {
	_, found := o.m.Get(key)
	return found
}

// Keys returns keys in insertion order.
func (o *OrderedMap[V]) Keys() []string {
	raw := o.m.Keys()
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = k.(string)
	}
	return keys
}

// Values returns values in insertion (key) order.
func (o *OrderedMap[V]) Values() []V {
	raw := o.m.Values()
	values := make([]V, len(raw))
	for i, v := range raw {
		values[i] = v.(V)
	}
	return values
}

// Len returns the number of entries.
func (o *OrderedMap[V]) Len() int { return o.m.Size() }
