package spatial

// Channel identifies one logical input a controller exposes, independent of
// how the platform represents it.
type Channel string

const (
	ChannelPose            Channel = "controller_pose"
	ChannelPointer         Channel = "spatial_pointer"
	ChannelGrip            Channel = "spatial_grip"
	ChannelTrigger         Channel = "trigger"
	ChannelTriggerTouch    Channel = "trigger_touch"
	ChannelTriggerPress    Channel = "trigger_press"
	ChannelGripPress       Channel = "grip_press"
	ChannelThumbstick      Channel = "thumbstick"
	ChannelThumbstickPress Channel = "thumbstick_press"
	ChannelTouchpad        Channel = "touchpad"
	ChannelTouchpadTouch   Channel = "touchpad_touch"
	ChannelTouchpadPress   Channel = "touchpad_press"
	ChannelMenu            Channel = "menu_press"
)

// ChannelKind is the value shape a channel carries.
type ChannelKind string

const (
	PoseChannel  ChannelKind = "pose"
	FloatChannel ChannelKind = "float"
	BoolChannel  ChannelKind = "bool"
	AxisChannel  ChannelKind = "axis"
)

// ChannelMapping declares one channel on a controller instance. The set of
// mappings is fixed at construction from the source's capability flags.
type ChannelMapping struct {
	Channel Channel     `json:"channel"`
	Kind    ChannelKind `json:"kind"`
}
