package spatial

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion is a JSON-friendly unit quaternion (x, y, z, w).
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity is the no-rotation quaternion.
var Identity = Quaternion{W: 1}

func (q Quaternion) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Pose is a 6-DoF position and orientation.
type Pose struct {
	Position    r3.Vec     `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// Equal reports exact equality of both components. Channel dispatch uses it
// for value-change suppression; platform snapshots repeat bit-identical
// poses when a source has not moved, so no tolerance is applied.
func (p Pose) Equal(o Pose) bool {
	return p.Position == o.Position && p.Orientation == o.Orientation
}

// Transform expresses child, given in p's local frame, in the frame p itself
// is expressed in. Used to lift a grip-relative pose into a parent reference
// frame supplied by the host.
func (p Pose) Transform(child Pose) Pose {
	rot := r3.Rotation(p.Orientation.number())
	return Pose{
		Position:    r3.Add(p.Position, rot.Rotate(child.Position)),
		Orientation: fromNumber(quat.Mul(p.Orientation.number(), child.Orientation.number())),
	}
}
