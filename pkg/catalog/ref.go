package catalog

import "sync"

// Ref is an observed reference to the current Catalog. The builder watches a
// Ref rather than holding a snapshot so derived fields never go stale when
// the catalog is reloaded underneath a live form.
type Ref struct {
	mu      sync.RWMutex
	current Catalog
	subs    map[int]func(Catalog)
	nextID  int
}

// NewRef wraps an initial catalog in an observed reference.
func NewRef(c Catalog) *Ref {
	return &Ref{
		current: c,
		subs:    make(map[int]func(Catalog)),
	}
}

// Current returns the catalog the reference currently points at.
func (r *Ref) Current() Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Swap replaces the catalog and notifies subscribers synchronously with the
// new value. Subscribers run outside the reference lock so they may read the
// reference again.
func (r *Ref) Swap(c Catalog) {
	r.mu.Lock()
	r.current = c
	subs := make([]func(Catalog), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
}

// Subscribe registers a callback invoked on every Swap. The returned cancel
// function removes the subscription.
func (r *Ref) Subscribe(fn func(Catalog)) func() {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}
