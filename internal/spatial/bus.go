package spatial

import "sync"

// FilterFunc decides whether a subscription receives an event. All filters
// on a subscription must pass.
type FilterFunc func(Event) bool

// FilterTypes keeps only the given event types.
func FilterTypes(types ...EventType) FilterFunc {
	return func(ev Event) bool {
		for _, t := range types {
			if ev.Type == t {
				return true
			}
		}
		return false
	}
}

// FilterSource keeps only events for one source id.
func FilterSource(id SourceID) FilterFunc {
	return func(ev Event) bool { return ev.Source == id }
}

// Subscription is one consumer's view of the bus. Events arrive on C until
// Cancel is called or the bus closes, after which C is closed.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	bus    *Bus
	once   sync.Once
	filter []FilterFunc
}

// Cancel detaches the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.detach(s)
		close(s.ch)
	})
}

// Bus is a fan-out EventSink: every published event is delivered to each
// matching subscription. Delivery never blocks the publisher; a subscriber
// that falls behind its buffer loses events rather than stalling the tick.
type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe attaches a consumer with the given channel buffer and optional
// filters. Returns nil if the bus is already closed.
func (b *Bus) Subscribe(buffer int, filters ...FilterFunc) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	sub := &Subscription{
		ch:     make(chan Event, buffer),
		bus:    b,
		filter: filters,
	}
	sub.C = sub.ch
	b.subs = append(b.subs, sub)
	return sub
}

// Publish implements EventSink.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if !match(sub.filter, ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber buffer full; drop rather than block the tick.
		}
	}
}

// Close cancels every subscription and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (b *Bus) detach(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clean := b.subs[:0]
	for _, sub := range b.subs {
		if sub != s {
			clean = append(clean, sub)
		}
	}
	b.subs = clean
}

func match(filters []FilterFunc, ev Event) bool {
	for _, f := range filters {
		if !f(ev) {
			return false
		}
	}
	return true
}
