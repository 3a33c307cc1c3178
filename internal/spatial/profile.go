package spatial

import (
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v2"
)

// Profile is the input profile file: the gesture-to-action mapping and the
// recognizer settings, loaded once at startup.
//
//	actions:
//	  tap: select
//	  hold: hold
//	  manipulation: manipulate
//	  navigation: navigate
//	gestures:
//	  start_behaviour: auto
//	  manipulation: [translate]
//	  use_rails_navigation: true
//	  rails_navigation: [x, y]
type Profile struct {
	Actions  ActionMap       `yaml:"actions"`
	Gestures GestureSettings `yaml:"gestures"`
}

// DefaultProfile returns the profile used when none is configured.
func DefaultProfile() *Profile {
	return &Profile{
		Actions:  DefaultActions(),
		Gestures: DefaultGestureSettings(),
	}
}

// LoadProfile reads and validates a profile file. Gesture kinds missing
// from the actions map fall back to the defaults; an unknown gesture kind
// is an error.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p := DefaultProfile()
	if err := yaml.UnmarshalStrict(data, p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	for kind := range p.Actions {
		switch kind {
		case GestureTap, GestureHold, GestureManipulation, GestureNavigation:
		default:
			return nil, fmt.Errorf("profile %s: unknown gesture kind %q", path, kind)
		}
	}
	if err := validateStartBehaviour(p.Gestures.StartBehaviour); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

func validateStartBehaviour(b GestureStartBehaviour) error {
	switch b {
	case GestureStartAuto, GestureStartManual, "":
		return nil
	}
	return fmt.Errorf("unknown gesture start behaviour %q", b)
}
