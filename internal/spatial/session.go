package spatial

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"spatial-input/internal/platform/metrics"
)

// SessionState is the explicit lifecycle of a session: Created until
// enabled, Enabled while ticking, Disabled once shut down. Disabled is
// terminal.
type SessionState string

const (
	SessionCreated  SessionState = "created"
	SessionEnabled  SessionState = "enabled"
	SessionDisabled SessionState = "disabled"
)

// ErrSessionClosed is returned by Enable on a session that has already been
// disabled.
var ErrSessionClosed = errors.New("session is disabled")

// SessionConfig is the session-scoped configuration, passed explicitly at
// construction rather than held in shared state.
type SessionConfig struct {
	// Gestures is the recognizer configuration applied on Enable.
	Gestures GestureSettings
	// Actions maps gesture kinds to logical action identifiers. Nil means
	// DefaultActions.
	Actions ActionMap
	// GestureQueueSize bounds the recognizer-to-tick handoff queue.
	// Zero means a reasonable default.
	GestureQueueSize int
}

// Session reconciles the enumerated sources against its controller registry
// every tick and publishes the resulting input events. All state is touched
// only while holding the session lock: Tick runs on the host's tick
// goroutine, the HTTP surface reads through the same lock, and gesture
// events produced on the recognizer's delivery context cross over through a
// bounded relay drained by Tick.
type Session struct {
	mu    sync.Mutex
	state SessionState

	cfg      SessionConfig
	settings GestureSettings
	actions  ActionMap

	enum     Enumerator
	factory  *Factory
	sink     EventSink
	registry *Registry
	relay    *gestureRelay

	recognize  RecognizerFactory
	recognizer Recognizer

	fetcher *ModelFetcher
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewSession returns a session in the Created state. enum and sink are
// required; the recognizer factory, model fetcher and metrics are optional
// and attached with the Set methods before Enable.
func NewSession(cfg SessionConfig, enum Enumerator, sink EventSink, log *slog.Logger) *Session {
	actions := cfg.Actions
	if actions == nil {
		actions = DefaultActions()
	}
	return &Session{
		state:    SessionCreated,
		cfg:      cfg,
		settings: cfg.Gestures,
		actions:  actions,
		enum:     enum,
		factory:  NewFactory(log),
		sink:     sink,
		registry: NewRegistry(),
		relay:    newGestureRelay(cfg.GestureQueueSize),
		log:      log,
	}
}

// SetRecognizerFactory attaches the gesture recognizer factory. Without
// one, the session runs with gestures disabled.
func (s *Session) SetRecognizerFactory(f RecognizerFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognize = f
}

// SetModelFetcher attaches the optional model asset fetcher.
func (s *Session) SetModelFetcher(f *ModelFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetcher = f
}

// SetMetrics attaches the optional metrics recorder.
func (s *Session) SetMetrics(m *metrics.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Enable moves the session to Enabled and builds the gesture recognizer
// from the configured settings. Enabling an already-enabled session is a
// no-op; enabling a disabled session returns ErrSessionClosed.
func (s *Session) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case SessionEnabled:
		return nil
	case SessionDisabled:
		return ErrSessionClosed
	}
	if err := s.buildRecognizerLocked(); err != nil {
		return err
	}
	s.state = SessionEnabled
	s.log.Info("session enabled",
		slog.String("gesture_start", string(s.settings.StartBehaviour)))
	return nil
}

// Disable is the shutdown path: every registered controller is reported
// lost with its cached final snapshot, stale cache-only entries are purged,
// and the recognizer is torn down. Disabled is terminal; calling Disable
// again is a no-op.
func (s *Session) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionDisabled {
		return
	}

	now := time.Now()
	for _, id := range s.registry.IDs() {
		c, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		s.loseLocked(c, now)
	}
	for _, id := range s.registry.StaleCacheIDs() {
		s.registry.DropCacheEntry(id)
	}

	if s.recognizer != nil {
		s.recognizer.CancelPendingGestures()
		if err := s.recognizer.Close(); err != nil {
			s.log.Warn("recognizer close failed", slog.String("error", err.Error()))
		}
		s.recognizer = nil
	}
	s.relay.discard()

	s.state = SessionDisabled
	s.log.Info("session disabled")
}

// Tick runs one reconciliation pass at the given timestamp. Outside the
// Enabled state it does nothing.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionEnabled {
		return
	}
	if s.metrics != nil {
		s.metrics.IncTicks()
	}

	entries, err := s.enum.Enumerate(now)
	switch {
	case errors.Is(err, ErrUnavailable):
		// No capability this tick. Skip reconciliation entirely: absence of
		// an answer must not tear down controllers.
		s.log.Debug("enumeration unavailable, skipping reconciliation")
		s.drainGesturesLocked()
		return
	case err != nil:
		s.log.Warn("enumeration failed, skipping reconciliation",
			slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncSourceErrors()
		}
		s.drainGesturesLocked()
		return
	}

	seen := make(map[SourceID]bool, len(entries))
	for _, entry := range entries {
		seen[entry.ID] = true
		if c, ok := s.registry.Get(entry.ID); ok {
			c.Update(entry.Snapshot, s.publisher())
			s.registry.SetLastSeen(entry.ID, entry.Snapshot)
			continue
		}
		s.detectLocked(entry, now)
	}

	for _, id := range s.registry.IDs() {
		if seen[id] {
			continue
		}
		c, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		s.loseLocked(c, now)
	}

	s.drainGesturesLocked()

	if s.metrics != nil {
		s.metrics.SetActiveControllers(s.registry.Len())
	}
}

// detectLocked constructs and registers a controller for a newly enumerated
// source. An unsupported kind is logged and skipped, nothing registered.
func (s *Session) detectLocked(entry SourceEntry, now time.Time) {
	c, err := s.factory.Create(entry.ID, entry.Snapshot)
	if err != nil {
		s.log.Warn("skipping source",
			slog.Uint64("source", uint64(entry.ID)),
			slog.String("kind", string(entry.Snapshot.Kind)),
			slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncSourceErrors()
		}
		return
	}

	s.registry.Put(c, entry.Snapshot)

	ev := c.event(EventSourceDetected, entry.Snapshot)
	ev.Time = now
	s.publish(ev)
	if s.metrics != nil {
		s.metrics.IncSourcesDetected()
	}
	s.log.Info("source detected",
		slog.Uint64("source", uint64(entry.ID)),
		slog.String("kind", string(c.Kind())),
		slog.String("handedness", string(c.Handedness())),
		slog.String("lifecycle", c.Lifecycle()))

	if s.recognizer != nil {
		s.recognizer.CaptureInteraction(entry.ID)
	}
	if s.fetcher != nil {
		s.fetcher.Fetch(c)
	}

	c.Update(entry.Snapshot, s.publisher())
}

// loseLocked reports a source lost using its cached final snapshot and
// removes it from registry and cache.
func (s *Session) loseLocked(c *Controller, now time.Time) {
	c.cancelModelFetch()

	ev := c.event(EventSourceLost, Snapshot{})
	ev.Time = now
	if last, ok := s.registry.LastSeen(c.ID()); ok {
		snap := last
		ev.Snapshot = &snap
	}
	s.publish(ev)
	if s.metrics != nil {
		s.metrics.IncSourcesLost()
	}
	s.log.Info("source lost",
		slog.Uint64("source", uint64(c.ID())),
		slog.String("lifecycle", c.Lifecycle()))

	s.registry.Remove(c.ID())
}

// OfferGesture is the delivery callback handed to the recognizer factory.
// Safe to call from the recognizer's own goroutine.
func (s *Session) OfferGesture(ev GestureEvent) {
	s.relay.offer(ev)
}

func (s *Session) drainGesturesLocked() {
	for _, gev := range s.relay.drain() {
		c, ok := s.registry.Get(gev.Source)
		if !ok {
			s.log.Debug("gesture for unknown source dropped",
				slog.Uint64("source", uint64(gev.Source)),
				slog.String("kind", string(gev.Kind)))
			continue
		}

		ev := Event{
			Time:       gev.Time,
			Type:       gesturePhaseEvent(gev.Phase),
			Source:     c.ID(),
			Lifecycle:  c.Lifecycle(),
			Kind:       c.Kind(),
			Handedness: c.Handedness(),
			Action:     s.actions[gev.Kind],
		}
		payload := gev.Payload
		ev.Gesture = &payload
		s.publish(ev)
		if s.metrics != nil {
			s.metrics.IncGestureEvents()
		}
	}
	if s.metrics != nil {
		s.metrics.SetGesturesDropped(s.relay.droppedCount())
	}
}

func gesturePhaseEvent(p GesturePhase) EventType {
	switch p {
	case PhaseStarted:
		return EventGestureStarted
	case PhaseUpdated:
		return EventGestureUpdated
	case PhaseCanceled:
		return EventGestureCanceled
	default:
		return EventGestureComplete
	}
}

// UpdateGestureSettings applies new recognizer settings: in-flight gestures
// are canceled and the recognizer is rebuilt. Valid only on an enabled
// session.
func (s *Session) UpdateGestureSettings(settings GestureSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionEnabled {
		return ErrSessionClosed
	}
	if s.recognizer != nil {
		s.recognizer.CancelPendingGestures()
		if err := s.recognizer.Close(); err != nil {
			s.log.Warn("recognizer close failed", slog.String("error", err.Error()))
		}
		s.recognizer = nil
	}
	s.relay.discard()
	s.settings = settings
	if err := s.buildRecognizerLocked(); err != nil {
		return err
	}
	// Re-capture every live source on the fresh recognizer.
	if s.recognizer != nil {
		for _, id := range s.registry.IDs() {
			s.recognizer.CaptureInteraction(id)
		}
	}
	s.log.Info("gesture settings updated",
		slog.String("gesture_start", string(s.settings.StartBehaviour)),
		slog.Bool("rails_navigation", s.settings.UseRailsNavigation))
	return nil
}

// GestureSettings returns the settings currently in effect.
func (s *Session) GestureSettings() GestureSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) buildRecognizerLocked() error {
	if s.recognize == nil {
		return nil
	}
	rec, err := s.recognize(s.settings, s.OfferGesture)
	if err != nil {
		return err
	}
	s.recognizer = rec
	return nil
}

// Controllers returns a status snapshot of every registered controller,
// ordered by source id.
func (s *Session) Controllers() []ControllerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ControllerStatus, 0, s.registry.Len())
	for _, id := range s.registry.IDs() {
		if c, ok := s.registry.Get(id); ok {
			out = append(out, c.Status())
		}
	}
	return out
}

// Controller returns the status of one controller by source id.
func (s *Session) Controller(id SourceID) (ControllerStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.registry.Get(id)
	if !ok {
		return ControllerStatus{}, false
	}
	return c.Status(), true
}

// ActiveControllerCount returns the number of registered controllers, for
// the metrics gauge refresh.
func (s *Session) ActiveControllerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Len()
}

func (s *Session) publish(ev Event) {
	s.sink.Publish(ev)
	if s.metrics != nil {
		s.metrics.IncInputEvents()
	}
}

// publisher exposes publish as an EventSink for the controller dispatcher.
func (s *Session) publisher() EventSink {
	return SinkFunc(s.publish)
}
