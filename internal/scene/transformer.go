package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type vec = r2.Vec

// Anchor identifies a handle on the selection overlay.
type Anchor int

const (
	AnchorNone Anchor = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
	Rotater
)

func (a Anchor) String() string {
	switch a {
	case AnchorNone:
		return "none"
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case Rotater:
		return "rotater"
	}
	return "unknown"
}

// Transformer is the resize/rotate handle overlay. It is attached to at most
// one node at a time.
type Transformer struct {
	Anchors       []Anchor
	RotateEnabled bool
	// KeepRatio makes corner drags scale both axes by the same factor.
	KeepRatio    bool
	AnchorSize   float64
	RotateOffset float64
	// MinSize is the smallest on-screen width or height a resize may produce.
	MinSize float64

	node    *Node
	gesture *gesture
}

type gesture struct {
	anchor Anchor
	start  Placement
	fixed  vec // opposite corner or centre, stage space
}

// NewTransformer returns an overlay with the four corner anchors and rotation enabled.
func NewTransformer() *Transformer {
	return &Transformer{
		Anchors:       []Anchor{TopLeft, TopRight, BottomLeft, BottomRight},
		RotateEnabled: true,
		KeepRatio:     true,
		AnchorSize:    10,
		RotateOffset:  50,
		MinSize:       5,
	}
}

// Attach puts the handles on n. A nil n detaches.
func (t *Transformer) Attach(n *Node) {
	if t.node != n {
		t.gesture = nil
	}
	t.node = n
}

// Detach removes the handles from whatever node has them.
func (t *Transformer) Detach() {
	t.Attach(nil)
}

// Node returns the node carrying the handles, or nil.
func (t *Transformer) Node() *Node {
	return t.node
}

func (t *Transformer) localAnchor(a Anchor) vec {
	n := t.node
	switch a {
	case TopLeft:
		return vec{}
	case TopRight:
		return vec{X: n.Width}
	case BottomLeft:
		return vec{Y: n.Height}
	case BottomRight:
		return vec{X: n.Width, Y: n.Height}
	}
	return vec{X: n.Width / 2}
}

func opposite(a Anchor) Anchor {
	switch a {
	case TopLeft:
		return BottomRight
	case TopRight:
		return BottomLeft
	case BottomLeft:
		return TopRight
	case BottomRight:
		return TopLeft
	}
	return AnchorNone
}

// AnchorPositions returns the stage-space centre of every active handle.
func (t *Transformer) AnchorPositions() map[Anchor]vec {
	if t.node == nil {
		return nil
	}
	out := make(map[Anchor]vec, len(t.Anchors)+1)
	for _, a := range t.Anchors {
		out[a] = t.node.ToWorld(t.localAnchor(a))
	}
	if t.RotateEnabled {
		top := t.node.ToWorld(t.localAnchor(Rotater))
		up := r2.Rotate(vec{Y: -t.RotateOffset}, t.node.radians(), vec{})
		out[Rotater] = r2.Add(top, up)
	}
	return out
}

// HitAnchor returns the handle under p, or AnchorNone.
func (t *Transformer) HitAnchor(p vec) Anchor {
	half := t.AnchorSize / 2
	pos := t.AnchorPositions()
	order := append([]Anchor{Rotater}, t.Anchors...)
	for _, a := range order {
		c, ok := pos[a]
		if ok && math.Abs(p.X-c.X) <= half && math.Abs(p.Y-c.Y) <= half {
			return a
		}
	}
	return AnchorNone
}

func (t *Transformer) begin(a Anchor) {
	n := t.node
	g := &gesture{anchor: a, start: n.Placement}
	if a == Rotater {
		g.fixed = n.Center()
	} else {
		g.fixed = n.ToWorld(t.localAnchor(opposite(a)))
	}
	t.gesture = g
}

func (t *Transformer) move(p vec) {
	if t.node == nil || t.gesture == nil {
		return
	}
	if t.gesture.anchor == Rotater {
		t.rotate(p)
	} else {
		t.resize(p)
	}
}

func (t *Transformer) end() bool {
	active := t.gesture != nil
	t.gesture = nil
	return active
}

// rotate turns the node about its centre so the rotater follows p.
func (t *Transformer) rotate(p vec) {
	n, g := t.node, t.gesture
	d := r2.Sub(p, g.fixed)
	if d.X == 0 && d.Y == 0 {
		return
	}
	deg := normalizeDegrees(math.Atan2(d.Y, d.X)*180/math.Pi + 90)

	next := g.start
	next.Rotation = deg
	half := vec{X: n.Width / 2, Y: n.Height / 2}
	origin := r2.Sub(g.fixed, r2.Sub(next.ToWorld(half), vec{X: next.X, Y: next.Y}))
	next.X, next.Y = origin.X, origin.Y
	n.Placement = next
}

// resize scales the node so the dragged corner follows p while the opposite
// corner stays put.
func (t *Transformer) resize(p vec) {
	n, g := t.node, t.gesture
	oppLocal := t.localAnchor(opposite(g.anchor))
	anchorLocal := t.localAnchor(g.anchor)

	// Work in the node's rotated frame with the opposite corner at the origin.
	v := r2.Rotate(r2.Sub(p, g.fixed), -g.start.radians(), vec{})
	d0 := vec{
		X: (anchorLocal.X - oppLocal.X) * g.start.ScaleX,
		Y: (anchorLocal.Y - oppLocal.Y) * g.start.ScaleY,
	}

	next := g.start
	if t.KeepRatio {
		len2 := d0.X*d0.X + d0.Y*d0.Y
		if len2 == 0 {
			return
		}
		k := (v.X*d0.X + v.Y*d0.Y) / len2
		k = math.Max(k, t.minFactor(math.Abs(d0.X), math.Abs(d0.Y)))
		next.ScaleX = g.start.ScaleX * k
		next.ScaleY = g.start.ScaleY * k
	} else {
		if d0.X != 0 {
			next.ScaleX = g.start.ScaleX * math.Max(v.X/d0.X, t.minFactor(math.Abs(d0.X), 0))
		}
		if d0.Y != 0 {
			next.ScaleY = g.start.ScaleY * math.Max(v.Y/d0.Y, t.minFactor(0, math.Abs(d0.Y)))
		}
	}

	moved := r2.Sub(next.ToWorld(oppLocal), vec{X: next.X, Y: next.Y})
	origin := r2.Sub(g.fixed, moved)
	next.X, next.Y = origin.X, origin.Y
	n.Placement = next
}

// minFactor is the smallest scale factor that keeps both extents at or above MinSize.
func (t *Transformer) minFactor(w, h float64) float64 {
	f := 0.0
	if w > 0 {
		f = math.Max(f, t.MinSize/w)
	}
	if h > 0 {
		f = math.Max(f, t.MinSize/h)
	}
	return f
}
