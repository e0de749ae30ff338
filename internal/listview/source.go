package listview

import (
	"context"
	"sync"

	"github.com/diewo77/sp-admin/internal/correlate"
	"github.com/diewo77/sp-admin/internal/models"
)

// Source yields a collection. remote.Fetcher satisfies it; failures come
// back as an empty collection plus the error.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context) ([]T, error)

func (f SourceFunc[T]) Fetch(ctx context.Context) ([]T, error) { return f(ctx) }

// Mutations writes W payloads to the primary collection. remote.Mutator
// satisfies it.
type Mutations[W any] interface {
	Create(ctx context.Context, payload W) error
	Update(ctx context.Context, id models.ID, payload W) error
	Delete(ctx context.Context, id models.ID) error
}

// Auxiliary is a collection loaded alongside the primary one. Load fetches
// into a pending value and returns commit, which the view-model runs under
// its lock so a refresh's results are installed together.
type Auxiliary interface {
	Load(ctx context.Context) (commit func(), err error)
}

// Reference is an auxiliary collection indexed by key, used to resolve the
// ids carried by primary rows.
type Reference[K comparable, V any] struct {
	source Source[V]
	key    func(V) K

	mu    sync.RWMutex
	items []V
	index correlate.Index[K, V]
}

// NewReference indexes source by key.
func NewReference[K comparable, V any](source Source[V], key func(V) K) *Reference[K, V] {
	return &Reference[K, V]{source: source, key: key, items: []V{}}
}

func (r *Reference[K, V]) Load(ctx context.Context) (func(), error) {
	items, err := r.source.Fetch(ctx)
	if items == nil {
		items = []V{}
	}
	ix := correlate.IndexBy(items, r.key)
	return func() {
		r.mu.Lock()
		r.items, r.index = items, ix
		r.mu.Unlock()
	}, err
}

func (r *Reference[K, V]) Index() correlate.Index[K, V] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}

// Items returns the collection in the order the API sent it.
func (r *Reference[K, V]) Items() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items
}

// Keys returns the key of every item, in order.
func (r *Reference[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]K, len(r.items))
	for i, it := range r.items {
		out[i] = r.key(it)
	}
	return out
}

// Record is a single auxiliary record, such as the user heading a work
// summary page.
type Record[T any] struct {
	get func(ctx context.Context) (T, error)

	mu    sync.RWMutex
	value T
	found bool
}

// NewRecord loads a single value with get.
func NewRecord[T any](get func(ctx context.Context) (T, error)) *Record[T] {
	return &Record[T]{get: get}
}

func (r *Record[T]) Load(ctx context.Context) (func(), error) {
	v, err := r.get(ctx)
	return func() {
		r.mu.Lock()
		r.value, r.found = v, err == nil
		r.mu.Unlock()
	}, err
}

// Value returns the record and whether the last load succeeded.
func (r *Record[T]) Value() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.found
}
