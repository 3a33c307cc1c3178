package spatial

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
actions:
  tap: primary_select
  navigation: scroll
gestures:
  start_behaviour: manual
  manipulation: [translate]
  use_rails_navigation: true
  rails_navigation: [x, y]
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Actions[GestureTap] != "primary_select" {
		t.Errorf("tap action = %s", p.Actions[GestureTap])
	}
	if p.Actions[GestureNavigation] != "scroll" {
		t.Errorf("navigation action = %s", p.Actions[GestureNavigation])
	}
	// Kinds missing from the file keep their defaults.
	if p.Actions[GestureHold] != "hold" {
		t.Errorf("hold action = %s, want default", p.Actions[GestureHold])
	}
	if p.Gestures.StartBehaviour != GestureStartManual {
		t.Errorf("start behaviour = %s", p.Gestures.StartBehaviour)
	}
	if !p.Gestures.UseRailsNavigation {
		t.Error("use_rails_navigation not set")
	}
	if p.Gestures.RailsNavigation != FlagNavigateX|FlagNavigateY {
		t.Errorf("rails flags = %b", p.Gestures.RailsNavigation)
	}
}

func TestLoadProfile_errors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("missing file accepted")
		}
	})

	t.Run("unknown_gesture_kind", func(t *testing.T) {
		path := writeProfile(t, "actions:\n  wave: hello\n")
		if _, err := LoadProfile(path); err == nil {
			t.Error("unknown gesture kind accepted")
		}
	})

	t.Run("unknown_flag", func(t *testing.T) {
		path := writeProfile(t, "gestures:\n  manipulation: [spin]\n")
		if _, err := LoadProfile(path); err == nil {
			t.Error("unknown gesture flag accepted")
		}
	})

	t.Run("unknown_start_behaviour", func(t *testing.T) {
		path := writeProfile(t, "gestures:\n  start_behaviour: eventually\n")
		if _, err := LoadProfile(path); err == nil {
			t.Error("unknown start behaviour accepted")
		}
	})

	t.Run("unknown_field", func(t *testing.T) {
		path := writeProfile(t, "bindings:\n  a: b\n")
		if _, err := LoadProfile(path); err == nil {
			t.Error("unknown top-level field accepted")
		}
	})
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if p.Actions[GestureTap] != "select" {
		t.Errorf("default tap action = %s", p.Actions[GestureTap])
	}
	if p.Gestures.StartBehaviour != GestureStartAuto {
		t.Errorf("default start behaviour = %s", p.Gestures.StartBehaviour)
	}
	if p.Gestures.Manipulation != FlagTranslate {
		t.Errorf("default manipulation flags = %b", p.Gestures.Manipulation)
	}
}
