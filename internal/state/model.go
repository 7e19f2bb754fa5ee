package state

import (
	"image/color"

	"github.com/google/uuid"
)

// Kind discriminates the element variants.
type Kind int

const (
	KindRect Kind = iota
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Element is anything placed on the canvas: a rectangle, a text label or an image.
// Fields that do not apply to a kind are left zero.
type Element struct {
	ID   uuid.UUID
	Kind Kind

	X, Y          float64
	Width, Height float64 // rect and image; text is measured by the renderer
	Fill          color.NRGBA
	Text          string
	FontSize      float64
	Src           string // image only

	ScaleX, ScaleY float64
	Rotation       float64 // degrees, clockwise
}

// IsShape reports whether the element belongs in the shapes list (rect or text).
func (e Element) IsShape() bool {
	return e.Kind == KindRect || e.Kind == KindText
}

// Transform is what the renderer reports after a drag or a handle gesture ends.
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
}

// Transform returns the element's current placement.
func (e Element) Transform() Transform {
	return Transform{X: e.X, Y: e.Y, ScaleX: e.ScaleX, ScaleY: e.ScaleY, Rotation: e.Rotation}
}

// Video is the singleton video descriptor.
type Video struct {
	Src           string
	X, Y          float64
	Width, Height float64
}

// Direction for MoveSelected.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Snapshot is a copy of the store's state handed to subscribers.
type Snapshot struct {
	Shapes    []Element
	Images    []Element
	Video     *Video
	Selection uuid.UUID
	Text      string
}
