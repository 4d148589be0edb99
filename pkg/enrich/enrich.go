// Package enrich joins primary records with reference collections by
// foreign key, producing display rows. It never mutates its inputs.
package enrich

import "fmt"

// Table is a keyed view of a reference collection.
type Table[K comparable, V any] struct {
	items map[K]V
}

// Index builds a Table from items. When several items share a key the first
// one wins, the same result a linear scan would give.
func Index[K comparable, V any](items []V, key func(V) K) Table[K, V] {
	t := Table[K, V]{items: make(map[K]V, len(items))}
	for _, item := range items {
		k := key(item)
		if _, exists := t.items[k]; exists {
			continue
		}
		t.items[k] = item
	}
	return t
}

// Get returns the item stored under k.
func (t Table[K, V]) Get(k K) (V, bool) {
	v, ok := t.items[k]
	return v, ok
}

// Len returns the number of distinct keys.
func (t Table[K, V]) Len() int {
	return len(t.items)
}

// Lookup resolves keys to display names.
type Lookup[K comparable] struct {
	names map[K]string
}

// Names builds a Lookup over items.
func Names[K comparable, V any](items []V, key func(V) K, name func(V) string) Lookup[K] {
	l := Lookup[K]{names: make(map[K]string, len(items))}
	for _, item := range items {
		k := key(item)
		if _, exists := l.names[k]; exists {
			continue
		}
		l.names[k] = name(item)
	}
	return l
}

// Name returns the name for k, or "" when k is unknown.
func (l Lookup[K]) Name(k K) string {
	return l.NameOr(k, "")
}

// NameOr returns the name for k, or fallback when k is unknown.
func (l Lookup[K]) NameOr(k K, fallback string) string {
	if name, ok := l.names[k]; ok {
		return name
	}
	return fallback
}

// NameOrKey returns the name for k, or k itself formatted as text.
func (l Lookup[K]) NameOrKey(k K) string {
	return l.NameOr(k, fmt.Sprint(k))
}

// Has reports whether k resolves.
func (l Lookup[K]) Has(k K) bool {
	_, ok := l.names[k]
	return ok
}

// NameOfPtr resolves a nullable key. A nil key yields "".
func NameOfPtr[K comparable](l Lookup[K], k *K) string {
	if k == nil {
		return ""
	}
	return l.Name(*k)
}

// Map returns a new slice with fn applied to each item, in input order.
// A nil input gives an empty, non-nil slice.
func Map[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// Filter returns the items for which keep is true, in input order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
