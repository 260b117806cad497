package assistant

import "sort"

// entry pairs a provider client with its health tracker. Priority is the
// provider's position in the configured fallback chain (0 = primary).
type entry struct {
	client   Client
	tracker  *HealthTracker
	priority int
}

// Registry holds the fixed, configuration-determined priority order of
// providers and filters to those currently eligible. It is built once at
// startup and never mutated afterwards; all mutable state lives in the
// per-provider trackers.
type Registry struct {
	entries []*entry
}

// NewRegistry creates a registry from clients in priority order
// (primary first).
func NewRegistry(clients ...Client) *Registry {
	entries := make([]*entry, 0, len(clients))
	for i, c := range clients {
		entries = append(entries, &entry{
			client:   c,
			tracker:  NewHealthTracker(c.Name()),
			priority: i,
		})
	}
	return &Registry{entries: entries}
}

// Eligible returns the providers whose current state permits routing, ordered
// for the fallback chain: Healthy providers before Degraded ones, configured
// priority preserved within each band. A higher-priority provider that is
// merely Degraded is overtaken by a lower-priority Healthy one. Providers in
// Unavailable or Unknown are excluded entirely; an empty result is the
// caller-visible "all services unavailable" condition.
func (r *Registry) Eligible() []Client {
	type candidate struct {
		client   Client
		healthy  bool
		priority int
	}

	candidates := make([]candidate, 0, len(r.entries))
	for _, e := range r.entries {
		state := e.tracker.State()
		if !state.Eligible() {
			continue
		}
		candidates = append(candidates, candidate{
			client:   e.client,
			healthy:  state == StateHealthy,
			priority: e.priority,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].healthy != candidates[j].healthy {
			return candidates[i].healthy
		}
		return candidates[i].priority < candidates[j].priority
	})

	clients := make([]Client, 0, len(candidates))
	for _, c := range candidates {
		clients = append(clients, c.client)
	}
	return clients
}

// Tracker returns the health tracker for a provider, or nil if the provider
// is not registered.
func (r *Registry) Tracker(name string) *HealthTracker {
	for _, e := range r.entries {
		if e.client.Name() == name {
			return e.tracker
		}
	}
	return nil
}

// Clients returns all registered clients in configured priority order.
func (r *Registry) Clients() []Client {
	clients := make([]Client, 0, len(r.entries))
	for _, e := range r.entries {
		clients = append(clients, e.client)
	}
	return clients
}

// Snapshots returns a health snapshot per provider in priority order.
func (r *Registry) Snapshots() []HealthSnapshot {
	snaps := make([]HealthSnapshot, 0, len(r.entries))
	for _, e := range r.entries {
		snaps = append(snaps, e.tracker.Snapshot())
	}
	return snaps
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.entries)
}
