package storage

import (
	"context"
	"sort"

	"athena-query/internal/domain"
)

// Compile-time check: Router implements domain.ObjectStore.
var _ domain.ObjectStore = (*Router)(nil)

// Router dispatches object reads to a backend chosen by URI scheme.
type Router struct {
	backends map[string]domain.ObjectStore
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{backends: make(map[string]domain.ObjectStore)}
}

// Register routes each scheme to store, replacing any earlier registration.
func (r *Router) Register(store domain.ObjectStore, schemes ...string) *Router {
	for _, scheme := range schemes {
		r.backends[scheme] = store
	}
	return r
}

// Schemes returns the registered schemes in sorted order.
func (r *Router) Schemes() []string {
	out := make([]string, 0, len(r.backends))
	for s := range r.backends {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GetObject reads loc from the backend registered for its scheme.
func (r *Router) GetObject(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	store, ok := r.backends[loc.Scheme]
	if !ok {
		return nil, domain.ErrNotFound("no object store registered for scheme %q (location %s)", loc.Scheme, loc)
	}
	return store.GetObject(ctx, loc)
}
