// Package correlate joins a primary collection against id-keyed indexes of
// auxiliary collections.
package correlate

// Index maps a key to the first entity carrying it. The zero value is an
// empty, usable index.
type Index[K comparable, V any] struct {
	m map[K]V
}

// IndexBy builds an index in one pass. On duplicate keys the first entity wins.
func IndexBy[K comparable, V any](items []V, key func(V) K) Index[K, V] {
	m := make(map[K]V, len(items))
	for _, it := range items {
		k := key(it)
		if _, dup := m[k]; dup {
			continue
		}
		m[k] = it
	}
	return Index[K, V]{m: m}
}

func (ix Index[K, V]) Len() int { return len(ix.m) }

// Lookup returns the entity for k and whether it was found.
func (ix Index[K, V]) Lookup(k K) (V, bool) {
	v, ok := ix.m[k]
	return v, ok
}

// Resolve returns the entity for k, or placeholder(k) on a miss.
func (ix Index[K, V]) Resolve(k K, placeholder func(K) V) V {
	if v, ok := ix.m[k]; ok {
		return v
	}
	return placeholder(k)
}

// Project maps the entity for k through present, or returns placeholder(k)
// on a miss.
func Project[K comparable, V, R any](ix Index[K, V], k K, present func(V) R, placeholder func(K) R) R {
	if v, ok := ix.m[k]; ok {
		return present(v)
	}
	return placeholder(k)
}

// Join derives one row per primary item, preserving order and length.
func Join[P, R any](primary []P, row func(P) R) []R {
	out := make([]R, len(primary))
	for i, p := range primary {
		out[i] = row(p)
	}
	return out
}
