package player

import "sync"

// Registry maps guild IDs to their single active Subscription. It is an
// injected collaborator, not a package-level singleton, so tests and hosts
// can run isolated instances. Safe for concurrent use; a subscription's own
// operations only ever touch its own entry.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]*Subscription)}
}

// Get returns the subscription for a guild, if any.
func (r *Registry) Get(guildID string) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[guildID]
	return sub, ok
}

// Store registers a subscription under its guild ID, replacing any previous
// entry.
func (r *Registry) Store(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.GuildID()] = sub
}

// Delete removes the entry for a guild. Removing an absent entry is a no-op.
func (r *Registry) Delete(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, guildID)
}

// Len returns the number of active subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Range calls fn for each registered subscription.
func (r *Registry) Range(fn func(*Subscription)) {
	r.mu.RLock()
	subs := make([]*Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()

	for _, sub := range subs {
		fn(sub)
	}
}
