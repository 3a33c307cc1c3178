package spatial

import "time"

// SourceID is the platform-assigned identifier for one tracked input source.
// It is stable for the duration of a tracked session, and unique across
// concurrently tracked sources, but the platform may reuse an id after the
// source is lost. An id therefore never identifies a lifecycle on its own;
// see Controller.Lifecycle.
type SourceID uint32

// SourceKind discriminates what kind of physical source produced a snapshot.
type SourceKind string

const (
	KindController SourceKind = "controller"
	KindHand       SourceKind = "hand"
	KindVoice      SourceKind = "voice"
	KindOther      SourceKind = "other"
)

// Handedness of a source; HandNone for sources that report neither.
type Handedness string

const (
	HandNone  Handedness = "none"
	HandLeft  Handedness = "left"
	HandRight Handedness = "right"
)

// TrackingState describes whether a source's pose is currently usable.
type TrackingState string

const (
	// TrackingNotApplicable is reported for sources that never carry a pose.
	TrackingNotApplicable TrackingState = "not_applicable"
	TrackingNotTracked    TrackingState = "not_tracked"
	TrackingTracked       TrackingState = "tracked"
)

// Snapshot is one tick's immutable reading of a source's pose and button
// state. All fields are raw platform values; interpretation (channel mapping,
// fallbacks, the hand press override) happens in the controller dispatcher.
type Snapshot struct {
	Time       time.Time  `json:"time"`
	Kind       SourceKind `json:"kind"`
	Handedness Handedness `json:"handedness"`

	PositionAvailable bool `json:"position_available"`
	RotationAvailable bool `json:"rotation_available"`
	GripPose          Pose `json:"grip_pose"`
	PointerPose       Pose `json:"pointer_pose"`
	// GazePose is the head gaze pose, used as the spatial pointer fallback
	// for sources that do not support pointing.
	GazePose Pose `json:"gaze_pose"`

	PointingSupported   bool `json:"pointing_supported"`
	GraspSupported      bool `json:"grasp_supported"`
	MenuSupported       bool `json:"menu_supported"`
	ThumbstickSupported bool `json:"thumbstick_supported"`
	TouchpadSupported   bool `json:"touchpad_supported"`

	SelectValue   float64 `json:"select_value"`
	SelectPressed bool    `json:"select_pressed"`
	// Pressed is the platform's generic "any press" aggregate. Hands in
	// remoting/simulation contexts can under-report SelectPressed; the
	// dispatcher substitutes Pressed under a documented precondition.
	Pressed     bool `json:"pressed"`
	Grasped     bool `json:"grasped"`
	MenuPressed bool `json:"menu_pressed"`

	ThumbstickX       float64 `json:"thumbstick_x"`
	ThumbstickY       float64 `json:"thumbstick_y"`
	ThumbstickPressed bool    `json:"thumbstick_pressed"`

	TouchpadX       float64 `json:"touchpad_x"`
	TouchpadY       float64 `json:"touchpad_y"`
	TouchpadTouched bool    `json:"touchpad_touched"`
	TouchpadPressed bool    `json:"touchpad_pressed"`
}

// TrackingState derives the tracking state from pose availability.
func (s Snapshot) TrackingState() TrackingState {
	if s.PositionAvailable || s.RotationAvailable {
		return TrackingTracked
	}
	return TrackingNotTracked
}

// SourceEntry pairs a source id with its snapshot in an enumeration result.
type SourceEntry struct {
	ID       SourceID `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
}
