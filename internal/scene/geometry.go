package scene

import (
	"math"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"
)

// Placement is a node's position, scale and rotation. A local point p maps to
// Translate(X, Y) · Rotate(Rotation) · Scale(ScaleX, ScaleY) · p.
type Placement struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64 // degrees, clockwise on screen
}

// Identity is the placement at the origin with unit scale.
func Identity() Placement {
	return Placement{ScaleX: 1, ScaleY: 1}
}

func (p Placement) radians() float64 {
	return p.Rotation * math.Pi / 180
}

// Matrix returns the local-to-parent affine transform.
func (p Placement) Matrix() f64.Aff3 {
	s, c := math.Sincos(p.radians())
	return f64.Aff3{
		c * p.ScaleX, -s * p.ScaleY, p.X,
		s * p.ScaleX, c * p.ScaleY, p.Y,
	}
}

// ToWorld maps a local point into stage coordinates.
func (p Placement) ToWorld(l r2.Vec) r2.Vec {
	scaled := r2.Vec{X: l.X * p.ScaleX, Y: l.Y * p.ScaleY}
	return r2.Add(r2.Rotate(scaled, p.radians(), r2.Vec{}), r2.Vec{X: p.X, Y: p.Y})
}

// ToLocal maps a stage point into the node's local box. ok is false when the
// placement has a zero scale and cannot be inverted.
func (p Placement) ToLocal(w r2.Vec) (l r2.Vec, ok bool) {
	if p.ScaleX == 0 || p.ScaleY == 0 {
		return r2.Vec{}, false
	}
	d := r2.Rotate(r2.Sub(w, r2.Vec{X: p.X, Y: p.Y}), -p.radians(), r2.Vec{})
	return r2.Vec{X: d.X / p.ScaleX, Y: d.Y / p.ScaleY}, true
}

// mul composes a after b: the result applies b first.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func scaleAff(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

func translateAff(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

func invertible(m f64.Aff3) bool {
	return math.Abs(m[0]*m[4]-m[1]*m[3]) > 1e-9
}

// normalizeDegrees folds a into [-180, 180).
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}
