package spatial

import "time"

// EventType classifies a published input event.
type EventType string

const (
	EventSourceDetected  EventType = "source_detected"
	EventSourceLost      EventType = "source_lost"
	EventTrackingChanged EventType = "tracking_changed"
	EventPoseChanged     EventType = "pose_changed"
	EventFloatChanged    EventType = "float_changed"
	EventBoolChanged     EventType = "bool_changed"
	EventAxisChanged     EventType = "axis_changed"
	EventGestureStarted  EventType = "gesture_started"
	EventGestureUpdated  EventType = "gesture_updated"
	EventGestureComplete EventType = "gesture_completed"
	EventGestureCanceled EventType = "gesture_canceled"
)

// Event is one notification published to the input event sink. Only the
// fields relevant to the event type are set; the rest stay zero.
type Event struct {
	Time       time.Time  `json:"time"`
	Type       EventType  `json:"type"`
	Source     SourceID   `json:"source"`
	Lifecycle  string     `json:"lifecycle"`
	Kind       SourceKind `json:"kind"`
	Handedness Handedness `json:"handedness"`

	Channel  Channel       `json:"channel,omitempty"`
	Tracking TrackingState `json:"tracking,omitempty"`
	Pose     *Pose         `json:"pose,omitempty"`
	Value    float64       `json:"value,omitempty"`
	Pressed  bool          `json:"pressed,omitempty"`
	X        float64       `json:"x,omitempty"`
	Y        float64       `json:"y,omitempty"`

	// Action is the configured logical action identifier for gesture events.
	Action ActionID `json:"action,omitempty"`
	// Gesture carries the relayed payload for gesture events.
	Gesture *GesturePayload `json:"gesture,omitempty"`
	// Snapshot is the cached final snapshot, set on source_lost only.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// EventSink receives every notification the session produces. Publish is
// always called from the session's tick context; implementations that hand
// events to other goroutines must not block.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(Event)

// Publish implements EventSink.
func (f SinkFunc) Publish(ev Event) { f(ev) }

// MultiSink fans one event out to several sinks in order.
type MultiSink []EventSink

// Publish implements EventSink.
func (m MultiSink) Publish(ev Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}
