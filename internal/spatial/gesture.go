package spatial

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// GestureKind is one of the recognizer's gesture families.
type GestureKind string

const (
	GestureTap          GestureKind = "tap"
	GestureHold         GestureKind = "hold"
	GestureManipulation GestureKind = "manipulation"
	GestureNavigation   GestureKind = "navigation"
)

// GesturePhase is the lifecycle phase of a relayed gesture event. Tap has no
// phases and is delivered as a single completed event.
type GesturePhase string

const (
	PhaseStarted   GesturePhase = "started"
	PhaseUpdated   GesturePhase = "updated"
	PhaseCompleted GesturePhase = "completed"
	PhaseCanceled  GesturePhase = "canceled"
)

// ActionID is the logical action a gesture kind maps to, as configured in
// the input profile.
type ActionID string

// ActionMap maps gesture kinds to logical actions.
type ActionMap map[GestureKind]ActionID

// DefaultActions returns the built-in gesture-to-action mapping.
func DefaultActions() ActionMap {
	return ActionMap{
		GestureTap:          "select",
		GestureHold:         "hold",
		GestureManipulation: "manipulate",
		GestureNavigation:   "navigate",
	}
}

// GesturePayload is the already-decoded data attached to a gesture event.
// Translation is the cumulative manipulation delta; Offset the normalized
// navigation offset; TapCount the tap multiplicity.
type GesturePayload struct {
	Translation r3.Vec `json:"translation"`
	Offset      r3.Vec `json:"offset"`
	TapCount    int    `json:"tap_count,omitempty"`
}

// GestureEvent is what the recognizer delivers. The recognizer invokes the
// delivery callback on its own context; events cross into the tick context
// through the session's bounded relay queue.
type GestureEvent struct {
	Time    time.Time
	Source  SourceID
	Kind    GestureKind
	Phase   GesturePhase
	Payload GesturePayload
}

// GestureStartBehaviour controls whether recognition starts as soon as the
// recognizer is built or waits for an explicit start.
type GestureStartBehaviour string

const (
	GestureStartAuto   GestureStartBehaviour = "auto"
	GestureStartManual GestureStartBehaviour = "manual"
)

// GestureFlags is a flagset selecting which continuous-gesture axes the
// recognizer tracks.
type GestureFlags uint8

const (
	FlagTranslate GestureFlags = 1 << iota
	FlagNavigateX
	FlagNavigateY
	FlagNavigateZ
)

var flagNames = []struct {
	flag GestureFlags
	name string
}{
	{FlagTranslate, "translate"},
	{FlagNavigateX, "x"},
	{FlagNavigateY, "y"},
	{FlagNavigateZ, "z"},
}

// Names returns the set flags as their configuration names.
func (f GestureFlags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

// ParseGestureFlags builds a flagset from configuration names.
func ParseGestureFlags(names []string) (GestureFlags, error) {
	var f GestureFlags
	for _, name := range names {
		matched := false
		for _, fn := range flagNames {
			if strings.EqualFold(name, fn.name) {
				f |= fn.flag
				matched = true
				break
			}
		}
		if !matched {
			return 0, fmt.Errorf("unknown gesture flag %q", name)
		}
	}
	return f, nil
}

// MarshalJSON renders the flagset as a list of names.
func (f GestureFlags) MarshalJSON() ([]byte, error) {
	names := f.Names()
	if names == nil {
		return []byte("[]"), nil
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = `"` + n + `"`
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

// UnmarshalJSON parses a list of flag names.
func (f *GestureFlags) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	parsed, err := ParseGestureFlags(names)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnmarshalYAML parses a list of flag names (yaml.v2 interface).
func (f *GestureFlags) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var names []string
	if err := unmarshal(&names); err != nil {
		return err
	}
	parsed, err := ParseGestureFlags(names)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// GestureSettings is the recognizer configuration surface. It is read when a
// session is enabled; every later change cancels in-flight gestures and
// rebuilds the recognizer.
type GestureSettings struct {
	StartBehaviour     GestureStartBehaviour `json:"start_behaviour" yaml:"start_behaviour"`
	Manipulation       GestureFlags          `json:"manipulation" yaml:"manipulation"`
	UseRailsNavigation bool                  `json:"use_rails_navigation" yaml:"use_rails_navigation"`
	RailsNavigation    GestureFlags          `json:"rails_navigation" yaml:"rails_navigation"`
}

// DefaultGestureSettings returns the settings used when no profile is given.
func DefaultGestureSettings() GestureSettings {
	return GestureSettings{
		StartBehaviour: GestureStartAuto,
		Manipulation:   FlagTranslate,
	}
}

// Recognizer is the native gesture recognizer boundary. Gesture decoding
// (continuous-gesture disambiguation, rails clamping) is entirely its
// responsibility; this package only relays its lifecycle events.
type Recognizer interface {
	// CaptureInteraction routes a newly detected source's interactions into
	// the recognizer.
	CaptureInteraction(id SourceID)
	// CancelPendingGestures aborts any in-flight gesture recognition.
	CancelPendingGestures()
	Close() error
}

// RecognizerFactory builds a recognizer for the given settings, delivering
// decoded events through deliver. The factory is called once on Enable and
// again after every settings change.
type RecognizerFactory func(settings GestureSettings, deliver func(GestureEvent)) (Recognizer, error)

// gestureRelay is the bounded handoff between the recognizer's delivery
// context and the tick. Freshest-wins: when full, the oldest pending event
// is dropped and counted.
type gestureRelay struct {
	mu       sync.Mutex
	queue    []GestureEvent
	capacity int
	dropped  uint64
}

func newGestureRelay(capacity int) *gestureRelay {
	if capacity <= 0 {
		capacity = 64
	}
	return &gestureRelay{capacity: capacity}
}

// offer is safe to call from any goroutine.
func (r *gestureRelay) offer(ev GestureEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) >= r.capacity {
		r.queue = r.queue[1:]
		r.dropped++
	}
	r.queue = append(r.queue, ev)
}

// drain removes and returns all pending events.
func (r *gestureRelay) drain() []GestureEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil
	}
	out := r.queue
	r.queue = nil
	return out
}

// discard empties the queue without delivering, used when pending gestures
// are canceled.
func (r *gestureRelay) discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = nil
}

func (r *gestureRelay) droppedCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
