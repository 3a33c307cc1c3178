package spatial

import (
	"errors"
	"testing"
)

func channelSet(c *Controller) map[Channel]bool {
	set := make(map[Channel]bool, len(c.mappings))
	for _, m := range c.mappings {
		set[m.Channel] = true
	}
	return set
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory(testLogger())

	t.Run("controller_full_capabilities", func(t *testing.T) {
		c, err := f.Create(1, controllerSnapshot(HandLeft))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.Kind() != KindController || c.Handedness() != HandLeft {
			t.Errorf("kind=%s handedness=%s", c.Kind(), c.Handedness())
		}
		set := channelSet(c)
		for _, ch := range []Channel{
			ChannelPose, ChannelPointer, ChannelGrip,
			ChannelTrigger, ChannelTriggerTouch, ChannelTriggerPress,
			ChannelGripPress, ChannelThumbstick, ChannelThumbstickPress,
			ChannelTouchpad, ChannelTouchpadTouch, ChannelTouchpadPress,
			ChannelMenu,
		} {
			if !set[ch] {
				t.Errorf("missing channel %s", ch)
			}
		}
	})

	t.Run("controller_without_capabilities", func(t *testing.T) {
		snap := controllerSnapshot(HandRight)
		snap.GraspSupported = false
		snap.MenuSupported = false
		snap.ThumbstickSupported = false
		snap.TouchpadSupported = false
		c, err := f.Create(2, snap)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		set := channelSet(c)
		if len(set) != 6 {
			t.Errorf("channel count = %d, want 6 (pose trio + trigger group)", len(set))
		}
		for _, ch := range []Channel{ChannelThumbstick, ChannelTouchpad, ChannelMenu, ChannelGripPress} {
			if set[ch] {
				t.Errorf("unexpected channel %s for capability-less controller", ch)
			}
		}
	})

	t.Run("hand", func(t *testing.T) {
		c, err := f.Create(3, handSnapshot())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		set := channelSet(c)
		if !set[ChannelTriggerPress] || !set[ChannelPointer] {
			t.Errorf("hand channels = %v", set)
		}
		if set[ChannelThumbstick] || set[ChannelMenu] {
			t.Errorf("hand declared controller-only channels: %v", set)
		}
	})

	t.Run("unsupported_kind", func(t *testing.T) {
		_, err := f.Create(4, Snapshot{Kind: KindVoice})
		if !errors.Is(err, ErrUnsupportedSourceKind) {
			t.Errorf("err = %v, want ErrUnsupportedSourceKind", err)
		}
	})

	t.Run("distinct_lifecycles", func(t *testing.T) {
		a, _ := f.Create(5, handSnapshot())
		b, _ := f.Create(5, handSnapshot())
		if a.Lifecycle() == b.Lifecycle() {
			t.Error("two instances share a lifecycle id")
		}
	})
}
