package scene

import (
	"image"
	"image/color"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kind is the primitive type of a node.
type Kind int

const (
	KindRect Kind = iota
	KindText
	KindImage
	KindVideo
	KindOutline
)

// Node is one drawable primitive. Geometry is a local box (0,0)-(Width,Height)
// moved into place by the embedded Placement.
type Node struct {
	Placement

	ID   uuid.UUID
	Kind Kind

	Width, Height float64
	Fill          color.NRGBA

	// Outline only
	Stroke      color.NRGBA
	StrokeWidth float64

	Text     string
	FontSize float64

	Image image.Image

	Draggable bool

	// OnClick fires for a click that lands on the node. The click does not
	// reach the stage background.
	OnClick func(n *Node)
	// OnTransformEnd fires when a drag or a handle gesture on the node ends.
	OnTransformEnd func(n *Node)

	textCache    *image.NRGBA
	textCacheKey textKey
}

type textKey struct {
	text string
	size float64
	fill color.NRGBA
}

// NewRect returns a draggable filled rectangle.
func NewRect(id uuid.UUID, p Placement, w, h float64, fill color.NRGBA) *Node {
	return &Node{ID: id, Kind: KindRect, Placement: p, Width: w, Height: h, Fill: fill, Draggable: true}
}

// NewText returns a draggable single-line label sized to its text.
func NewText(id uuid.UUID, p Placement, text string, size float64, fill color.NRGBA) *Node {
	n := &Node{ID: id, Kind: KindText, Placement: p, Fill: fill, Draggable: true}
	n.SetText(text, size)
	return n
}

// NewImage returns a draggable bitmap stretched to w×h.
func NewImage(id uuid.UUID, p Placement, img image.Image, w, h float64) *Node {
	return &Node{ID: id, Kind: KindImage, Placement: p, Image: img, Width: w, Height: h, Draggable: true}
}

// NewVideo returns the fixed video surface. It is not draggable.
func NewVideo(w, h float64) *Node {
	return &Node{Kind: KindVideo, Placement: Identity(), Width: w, Height: h}
}

// NewOutline returns an unfilled rectangle drawn with a stroke only.
func NewOutline(w, h float64, stroke color.NRGBA, strokeWidth float64) *Node {
	return &Node{Kind: KindOutline, Placement: Identity(), Width: w, Height: h, Stroke: stroke, StrokeWidth: strokeWidth}
}

// SetText changes the label and re-measures it.
func (n *Node) SetText(text string, size float64) {
	n.Text, n.FontSize = text, size
	n.Width, n.Height = MeasureText(text, size)
}

func (n *Node) textBitmap() *image.NRGBA {
	key := textKey{text: n.Text, size: n.FontSize, fill: n.Fill}
	if n.textCache == nil || n.textCacheKey != key {
		n.textCache = rasterizeText(n.Text, n.FontSize, n.Fill)
		n.textCacheKey = key
	}
	return n.textCache
}

// Contains reports whether the stage point p hits the node.
func (n *Node) Contains(p r2.Vec) bool {
	l, ok := n.ToLocal(p)
	if !ok {
		return false
	}
	if n.Kind == KindOutline {
		half := n.StrokeWidth / 2
		within := l.X >= -half && l.X <= n.Width+half && l.Y >= -half && l.Y <= n.Height+half
		inner := l.X > half && l.X < n.Width-half && l.Y > half && l.Y < n.Height-half
		return within && !inner
	}
	// Flipped scales put the box on the negative side of the axis.
	return between(l.X, 0, n.Width) && between(l.Y, 0, n.Height)
}

func between(v, a, b float64) bool {
	return v >= math.Min(a, b) && v <= math.Max(a, b)
}

// Corners returns the stage-space corners in the order top-left, top-right,
// bottom-right, bottom-left.
func (n *Node) Corners() [4]r2.Vec {
	return [4]r2.Vec{
		n.ToWorld(r2.Vec{}),
		n.ToWorld(r2.Vec{X: n.Width}),
		n.ToWorld(r2.Vec{X: n.Width, Y: n.Height}),
		n.ToWorld(r2.Vec{Y: n.Height}),
	}
}

// Center returns the stage-space centre of the node's box.
func (n *Node) Center() r2.Vec {
	return n.ToWorld(r2.Vec{X: n.Width / 2, Y: n.Height / 2})
}
