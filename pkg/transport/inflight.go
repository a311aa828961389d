package transport

import (
	"context"
	"sync"
)

// InFlightRegistry tracks proxied requests whose upstream call is still
// running, so that a shutdown that outlives its grace period can abort them
// instead of leaving upstream work behind.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu      sync.Mutex
	next    uint64
	entries map[uint64]inFlightEntry
}

type inFlightEntry struct {
	requestID string
	cancel    context.CancelFunc
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		entries: make(map[uint64]inFlightEntry),
	}
}

// Track registers a request and returns a context derived from ctx that is
// cancelled by CancelAll. The returned done func must be called
// when the request finishes; it removes the entry and releases the context.
func (r *InFlightRegistry) Track(ctx context.Context, requestID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	key := r.next
	r.next++
	r.entries[key] = inFlightEntry{requestID: requestID, cancel: cancel}
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		cancel()
	}
}

// CancelAll aborts every in-flight request and returns the request IDs it
// cancelled, in no particular order.
func (r *InFlightRegistry) CancelAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for key, e := range r.entries {
		e.cancel()
		delete(r.entries, key)
		ids = append(ids, e.requestID)
	}
	return ids
}

// Len returns the number of in-flight requests.
func (r *InFlightRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
