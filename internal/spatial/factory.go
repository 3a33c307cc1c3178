package spatial

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnsupportedSourceKind is returned when no constructor exists for a
// source kind. The session treats it as non-fatal: the source is skipped
// for this session, everything else keeps running.
var ErrUnsupportedSourceKind = errors.New("unsupported source kind")

// constructor builds the channel mappings for one source kind from the
// first snapshot's capability flags.
type constructor func(snap Snapshot) []ChannelMapping

// Factory resolves a controller type from a source kind through a closed
// constructor table. No reflection: kinds without an entry are unsupported.
type Factory struct {
	constructors map[SourceKind]constructor
	log          *slog.Logger
}

// NewFactory returns a factory supporting handheld controllers and hands.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{
		constructors: map[SourceKind]constructor{
			KindController: motionControllerMappings,
			KindHand:       handMappings,
		},
		log: log,
	}
}

// Create constructs a controller instance for the source, with channels
// declared from the snapshot's handedness and capability flags.
func (f *Factory) Create(id SourceID, snap Snapshot) (*Controller, error) {
	build, ok := f.constructors[snap.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSourceKind, snap.Kind)
	}
	return newController(id, snap.Kind, snap.Handedness, build(snap), f.log), nil
}

// motionControllerMappings declares the channel set for a handheld
// controller. Pose, pointer, grip and the trigger group are always present;
// the rest follow the capability flags.
func motionControllerMappings(snap Snapshot) []ChannelMapping {
	m := []ChannelMapping{
		{ChannelPose, PoseChannel},
		{ChannelPointer, PoseChannel},
		{ChannelGrip, PoseChannel},
		{ChannelTrigger, FloatChannel},
		{ChannelTriggerTouch, BoolChannel},
		{ChannelTriggerPress, BoolChannel},
	}
	if snap.GraspSupported {
		m = append(m, ChannelMapping{ChannelGripPress, BoolChannel})
	}
	if snap.ThumbstickSupported {
		m = append(m,
			ChannelMapping{ChannelThumbstick, AxisChannel},
			ChannelMapping{ChannelThumbstickPress, BoolChannel})
	}
	if snap.TouchpadSupported {
		m = append(m,
			ChannelMapping{ChannelTouchpad, AxisChannel},
			ChannelMapping{ChannelTouchpadTouch, BoolChannel},
			ChannelMapping{ChannelTouchpadPress, BoolChannel})
	}
	if snap.MenuSupported {
		m = append(m, ChannelMapping{ChannelMenu, BoolChannel})
	}
	return m
}

// handMappings declares the channel set for an articulated hand: pose
// channels plus the select (air-tap) trigger group.
func handMappings(snap Snapshot) []ChannelMapping {
	m := []ChannelMapping{
		{ChannelPose, PoseChannel},
		{ChannelPointer, PoseChannel},
		{ChannelGrip, PoseChannel},
		{ChannelTrigger, FloatChannel},
		{ChannelTriggerTouch, BoolChannel},
		{ChannelTriggerPress, BoolChannel},
	}
	if snap.GraspSupported {
		m = append(m, ChannelMapping{ChannelGripPress, BoolChannel})
	}
	return m
}
