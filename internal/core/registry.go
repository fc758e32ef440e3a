package core

// Registry maps a user identifier to its live outbound event channel.
// It is a delivery index only: it never owns the connection lifecycle.
// Not safe for concurrent use; the hub goroutine is its sole owner.
type Registry struct {
	channels map[string]chan<- *Event
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]chan<- *Event)}
}

// Register stores the channel for a user, overwriting any previous entry.
func (r *Registry) Register(userID string, ch chan<- *Event) {
	r.channels[userID] = ch
}

// Lookup returns the channel for a user. Absence means the connection is
// closed or unknown; callers treat that as a silently dropped delivery.
func (r *Registry) Lookup(userID string) (chan<- *Event, bool) {
	ch, ok := r.channels[userID]
	return ch, ok
}

// Unregister removes the mapping for a user. No-op if absent.
func (r *Registry) Unregister(userID string) {
	delete(r.channels, userID)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.channels)
}
