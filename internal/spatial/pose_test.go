package spatial

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPose_Equal(t *testing.T) {
	a := Pose{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Orientation: Identity}
	b := a
	if !a.Equal(b) {
		t.Error("identical poses not equal")
	}
	b.Position.X = 1.0000001
	if a.Equal(b) {
		t.Error("differing poses reported equal")
	}
}

func TestPose_Transform_identityParent(t *testing.T) {
	parent := Pose{Orientation: Identity}
	child := Pose{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Orientation: Identity}

	got := parent.Transform(child)
	if diff := cmp.Diff(child, got); diff != "" {
		t.Errorf("identity transform changed the pose (-want +got):\n%s", diff)
	}
}

func TestPose_Transform_rotatedParent(t *testing.T) {
	// Parent rotated 90 degrees about Z and offset by (10, 0, 0): a child at
	// local (1, 0, 0) lands at (10, 1, 0).
	s := math.Sqrt2 / 2
	parent := Pose{
		Position:    r3.Vec{X: 10},
		Orientation: Quaternion{Z: s, W: s},
	}
	child := Pose{Position: r3.Vec{X: 1}, Orientation: Identity}

	got := parent.Transform(child)
	want := Pose{
		Position:    r3.Vec{X: 10, Y: 1},
		Orientation: Quaternion{Z: s, W: s},
	}
	// Compare the components directly: Pose has an exact Equal method, which
	// cmp would use instead of the approximate float comparison.
	opt := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(want.Position, got.Position, opt); diff != "" {
		t.Errorf("transform position mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Orientation, got.Orientation, opt); diff != "" {
		t.Errorf("transform orientation mismatch (-want +got):\n%s", diff)
	}
}
