package spatial

import "testing"

func TestRegistry_nilEntrySelfHeals(t *testing.T) {
	r := NewRegistry()
	r.controllers[5] = nil
	r.lastSeen[5] = Snapshot{}

	if _, ok := r.Get(5); ok {
		t.Error("nil entry reported as found")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after purge, want 0", r.Len())
	}
	if _, ok := r.LastSeen(5); ok {
		t.Error("snapshot cache kept the purged entry")
	}
}

func TestRegistry_staleCacheIDs(t *testing.T) {
	r := NewRegistry()
	c := newController(1, KindHand, HandLeft, nil, testLogger())
	r.Put(c, Snapshot{})
	r.lastSeen[7] = Snapshot{}
	r.lastSeen[3] = Snapshot{}

	stale := r.StaleCacheIDs()
	if len(stale) != 2 || stale[0] != 3 || stale[1] != 7 {
		t.Errorf("StaleCacheIDs = %v, want [3 7]", stale)
	}

	r.DropCacheEntry(3)
	r.DropCacheEntry(7)
	if got := r.StaleCacheIDs(); len(got) != 0 {
		t.Errorf("StaleCacheIDs after purge = %v, want empty", got)
	}
}

func TestRegistry_removeDropsBothMaps(t *testing.T) {
	r := NewRegistry()
	c := newController(2, KindController, HandRight, nil, testLogger())
	r.Put(c, Snapshot{})

	if got, ok := r.Get(2); !ok || got != c {
		t.Fatal("Put/Get mismatch")
	}
	r.Remove(2)
	if _, ok := r.Get(2); ok {
		t.Error("controller still present after Remove")
	}
	if _, ok := r.LastSeen(2); ok {
		t.Error("snapshot still cached after Remove")
	}
}
