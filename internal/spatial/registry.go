package spatial

import "sort"

// Registry maps live source ids to controller instances, plus a mirrored
// cache of each id's last-seen snapshot. The cache supplies the final
// snapshot when a lost source is reported, since the platform does not hand
// back the state of a source it no longer enumerates.
//
// Only the session tick mutates a Registry; no locking here.
type Registry struct {
	controllers map[SourceID]*Controller
	lastSeen    map[SourceID]Snapshot
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		controllers: make(map[SourceID]*Controller),
		lastSeen:    make(map[SourceID]Snapshot),
	}
}

// Get returns the controller for id. A nil entry is a consistency
// violation; it is purged from both maps and reported as not found, so the
// source is treated as newly detected on its next enumeration.
func (r *Registry) Get(id SourceID) (*Controller, bool) {
	c, ok := r.controllers[id]
	if ok && c == nil {
		delete(r.controllers, id)
		delete(r.lastSeen, id)
		return nil, false
	}
	return c, ok
}

// Put registers a controller and its first snapshot.
func (r *Registry) Put(c *Controller, snap Snapshot) {
	r.controllers[c.ID()] = c
	r.lastSeen[c.ID()] = snap
}

// SetLastSeen refreshes the cached snapshot for an already registered id.
func (r *Registry) SetLastSeen(id SourceID, snap Snapshot) {
	r.lastSeen[id] = snap
}

// LastSeen returns the cached snapshot for id.
func (r *Registry) LastSeen(id SourceID) (Snapshot, bool) {
	snap, ok := r.lastSeen[id]
	return snap, ok
}

// Remove drops id from both the registry and the snapshot cache.
func (r *Registry) Remove(id SourceID) {
	delete(r.controllers, id)
	delete(r.lastSeen, id)
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []SourceID {
	ids := make([]SourceID, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered controllers.
func (r *Registry) Len() int { return len(r.controllers) }

// StaleCacheIDs returns ids present in the snapshot cache with no matching
// registry entry. In steady state there are none; the disable path purges
// any that accumulated.
func (r *Registry) StaleCacheIDs() []SourceID {
	var ids []SourceID
	for id := range r.lastSeen {
		if _, ok := r.controllers[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DropCacheEntry removes a cache-only entry.
func (r *Registry) DropCacheEntry(id SourceID) {
	delete(r.lastSeen, id)
}
