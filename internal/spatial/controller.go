package spatial

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Controller is the engine-side stateful object for one tracked source. It
// owns a fixed set of channel mappings declared at construction and is
// updated every tick from the latest snapshot. Instances are owned
// exclusively by the session's registry: created on first detection,
// destroyed on loss, never reused across lifecycles.
type Controller struct {
	id         SourceID
	lifecycle  string
	kind       SourceKind
	handedness Handedness
	mappings   []ChannelMapping

	// parentFrame, when set, lifts the grip-relative pose into a host
	// supplied reference frame.
	parentFrame *Pose

	tracking    TrackingState
	hasTracking bool
	disabled    bool

	poses  map[Channel]Pose
	floats map[Channel]float64
	bools  map[Channel]bool
	axes   map[Channel][2]float64

	modelMu   sync.Mutex
	model     []byte
	modelTask *ModelTask

	log *slog.Logger
}

func newController(id SourceID, kind SourceKind, handedness Handedness, mappings []ChannelMapping, log *slog.Logger) *Controller {
	return &Controller{
		id:         id,
		lifecycle:  uuid.NewString(),
		kind:       kind,
		handedness: handedness,
		mappings:   mappings,
		poses:      make(map[Channel]Pose),
		floats:     make(map[Channel]float64),
		bools:      make(map[Channel]bool),
		axes:       make(map[Channel][2]float64),
		log:        log,
	}
}

// ID returns the platform source id this instance tracks.
func (c *Controller) ID() SourceID { return c.id }

// Lifecycle returns the unique id of this instance's lifecycle. A source id
// reappearing after loss gets a new instance with a new lifecycle id.
func (c *Controller) Lifecycle() string { return c.lifecycle }

// Kind returns the source kind the instance was constructed for.
func (c *Controller) Kind() SourceKind { return c.kind }

// Handedness returns the handedness declared at construction.
func (c *Controller) Handedness() Handedness { return c.handedness }

// Tracking returns the last derived tracking state.
func (c *Controller) Tracking() TrackingState {
	if !c.hasTracking {
		return TrackingNotApplicable
	}
	return c.tracking
}

// Disabled reports whether the instance was disabled by a configuration
// error. A disabled instance stays disabled for its whole lifecycle.
func (c *Controller) Disabled() bool { return c.disabled }

// SetParentFrame supplies the reference frame the grip pose is expressed in.
func (c *Controller) SetParentFrame(p *Pose) { c.parentFrame = p }

func (c *Controller) event(t EventType, snap Snapshot) Event {
	return Event{
		Time:       snap.Time,
		Type:       t,
		Source:     c.id,
		Lifecycle:  c.lifecycle,
		Kind:       c.kind,
		Handedness: c.handedness,
	}
}

// Update feeds a new snapshot into every declared channel, publishing one
// notification per channel. Pose channels suppress notifications when the
// pose is unchanged from the previous tick; scalar, boolean and axis
// channels publish on every update. A tracking-state transition publishes
// its own notification, separate from pose notifications.
func (c *Controller) Update(snap Snapshot, sink EventSink) {
	if c.disabled {
		return
	}
	if len(c.mappings) == 0 {
		// Missing channel configuration disables the instance rather than
		// letting malformed updates through.
		c.log.Error("controller has no channel mappings, disabling",
			slog.Uint64("source", uint64(c.id)),
			slog.String("kind", string(c.kind)))
		c.disabled = true
		return
	}

	c.updateTracking(snap, sink)

	for _, m := range c.mappings {
		switch m.Channel {
		case ChannelPose:
			c.publishPose(m.Channel, snap.GripPose, snap, sink)
		case ChannelPointer:
			pose := snap.GazePose
			if snap.PointingSupported {
				pose = snap.PointerPose
			}
			c.publishPose(m.Channel, pose, snap, sink)
		case ChannelGrip:
			pose := snap.GripPose
			if c.parentFrame != nil {
				pose = c.parentFrame.Transform(pose)
			}
			c.publishPose(m.Channel, pose, snap, sink)
		case ChannelTrigger:
			c.publishFloat(m.Channel, snap.SelectValue, snap, sink)
		case ChannelTriggerTouch:
			c.publishBool(m.Channel, snap.SelectValue > 0, snap, sink)
		case ChannelTriggerPress:
			c.publishBool(m.Channel, c.selectPressed(snap), snap, sink)
		case ChannelGripPress:
			c.publishBool(m.Channel, snap.Grasped, snap, sink)
		case ChannelThumbstick:
			c.publishAxis(m.Channel, snap.ThumbstickX, snap.ThumbstickY, snap, sink)
		case ChannelThumbstickPress:
			c.publishBool(m.Channel, snap.ThumbstickPressed, snap, sink)
		case ChannelTouchpad:
			c.publishAxis(m.Channel, snap.TouchpadX, snap.TouchpadY, snap, sink)
		case ChannelTouchpadTouch:
			c.publishBool(m.Channel, snap.TouchpadTouched, snap, sink)
		case ChannelTouchpadPress:
			c.publishBool(m.Channel, snap.TouchpadPressed, snap, sink)
		case ChannelMenu:
			c.publishBool(m.Channel, snap.MenuPressed, snap, sink)
		default:
			c.log.Warn("unknown channel in mapping",
				slog.String("channel", string(m.Channel)))
		}
	}
}

// selectPressed applies the documented hand press correction: hands in
// remoting/simulation contexts can under-report the select-pressed flag, so
// the generic pressed aggregate is substituted, but only when every other
// capability (grasp, menu, pointing, thumbstick, touchpad) is unsupported.
func (c *Controller) selectPressed(snap Snapshot) bool {
	if c.kind == KindHand &&
		!snap.GraspSupported &&
		!snap.MenuSupported &&
		!snap.PointingSupported &&
		!snap.ThumbstickSupported &&
		!snap.TouchpadSupported {
		return snap.Pressed
	}
	return snap.SelectPressed
}

func (c *Controller) updateTracking(snap Snapshot, sink EventSink) {
	state := snap.TrackingState()
	if c.hasTracking && state == c.tracking {
		return
	}
	c.tracking = state
	c.hasTracking = true
	ev := c.event(EventTrackingChanged, snap)
	ev.Tracking = state
	sink.Publish(ev)
}

func (c *Controller) publishPose(ch Channel, pose Pose, snap Snapshot, sink EventSink) {
	if prev, ok := c.poses[ch]; ok && prev.Equal(pose) {
		return
	}
	c.poses[ch] = pose
	ev := c.event(EventPoseChanged, snap)
	ev.Channel = ch
	p := pose
	ev.Pose = &p
	sink.Publish(ev)
}

func (c *Controller) publishFloat(ch Channel, v float64, snap Snapshot, sink EventSink) {
	c.floats[ch] = v
	ev := c.event(EventFloatChanged, snap)
	ev.Channel = ch
	ev.Value = v
	sink.Publish(ev)
}

func (c *Controller) publishBool(ch Channel, pressed bool, snap Snapshot, sink EventSink) {
	c.bools[ch] = pressed
	ev := c.event(EventBoolChanged, snap)
	ev.Channel = ch
	ev.Pressed = pressed
	sink.Publish(ev)
}

func (c *Controller) publishAxis(ch Channel, x, y float64, snap Snapshot, sink EventSink) {
	c.axes[ch] = [2]float64{x, y}
	ev := c.event(EventAxisChanged, snap)
	ev.Channel = ch
	ev.X = x
	ev.Y = y
	sink.Publish(ev)
}

func (c *Controller) setModel(data []byte) {
	c.modelMu.Lock()
	c.model = data
	c.modelMu.Unlock()
}

// HasModel reports whether a model asset fetch has completed for this
// instance.
func (c *Controller) HasModel() bool {
	c.modelMu.Lock()
	defer c.modelMu.Unlock()
	return c.model != nil
}

func (c *Controller) setModelTask(t *ModelTask) {
	c.modelMu.Lock()
	c.modelTask = t
	c.modelMu.Unlock()
}

// cancelModelFetch stops any in-flight model fetch so a late completion
// cannot touch a destroyed instance.
func (c *Controller) cancelModelFetch() {
	c.modelMu.Lock()
	t := c.modelTask
	c.modelTask = nil
	c.modelMu.Unlock()
	if t != nil {
		t.Cancel()
	}
}

// ControllerStatus is the read-only view of a controller instance served by
// the status endpoints.
type ControllerStatus struct {
	Source     SourceID         `json:"source"`
	Lifecycle  string           `json:"lifecycle"`
	Kind       SourceKind       `json:"kind"`
	Handedness Handedness       `json:"handedness"`
	Tracking   TrackingState    `json:"tracking"`
	Disabled   bool             `json:"disabled"`
	HasModel   bool             `json:"has_model"`
	Channels   []ChannelMapping `json:"channels"`
}

// Status snapshots the instance for the HTTP surface. Must be called from
// the session's lock, like every other access to controller state.
func (c *Controller) Status() ControllerStatus {
	channels := make([]ChannelMapping, len(c.mappings))
	copy(channels, c.mappings)
	return ControllerStatus{
		Source:     c.id,
		Lifecycle:  c.lifecycle,
		Kind:       c.kind,
		Handedness: c.handedness,
		Tracking:   c.Tracking(),
		Disabled:   c.disabled,
		HasModel:   c.HasModel(),
		Channels:   channels,
	}
}
