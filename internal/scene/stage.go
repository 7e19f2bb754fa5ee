// Package scene is a small retained-mode scene graph: a fixed-size stage with
// a video layer, a content layer and a selection overlay, hit testing for
// clicks and drags, and a software rasterizer.
package scene

import (
	"sync"
)

// Layers is the mutable view of a stage handed to Update.
type Layers struct {
	Video       *Layer
	Content     *Layer
	Transformer *Transformer
}

// Stage owns the layers. Every method is safe to call from the UI goroutine
// while Render runs on the draw goroutine. Node callbacks run without the
// stage lock held, so they may call Update.
type Stage struct {
	mu sync.Mutex

	width, height float64
	layers        Layers
	drag          *dragState

	onBackgroundClick func()
	onChange          func()
}

type dragState struct {
	node   *Node
	anchor Anchor
	grab   vec
	start  Placement
	moved  bool
}

// NewStage returns an empty stage of the given logical size.
func NewStage(width, height float64) *Stage {
	return &Stage{
		width:  width,
		height: height,
		layers: Layers{
			Video:       NewLayer("video"),
			Content:     NewLayer("content"),
			Transformer: NewTransformer(),
		},
	}
}

// Size returns the logical stage size.
func (s *Stage) Size() (w, h float64) {
	return s.width, s.height
}

// SetOnBackgroundClick sets the handler for clicks that hit no node.
func (s *Stage) SetOnBackgroundClick(fn func()) {
	s.mu.Lock()
	s.onBackgroundClick = fn
	s.mu.Unlock()
}

// SetOnChange sets the handler called after anything visible changes.
func (s *Stage) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Stage) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Update runs fn with exclusive access to the layers, then signals a change.
func (s *Stage) Update(fn func(l Layers)) {
	s.mu.Lock()
	fn(s.layers)
	if s.drag != nil && s.drag.anchor != AnchorNone && s.layers.Transformer.Node() != s.drag.node {
		s.drag = nil
	}
	s.mu.Unlock()
	s.changed()
}

// View runs fn with read access to the layers.
func (s *Stage) View(fn func(l Layers)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.layers)
}

// Destroy drops every node and detaches the handles.
func (s *Stage) Destroy() {
	s.Update(func(l Layers) {
		l.Video.Clear()
		l.Content.Clear()
		l.Transformer.Detach()
	})
	s.mu.Lock()
	s.drag = nil
	s.mu.Unlock()
}

// hitLocked returns the anchor or node under p. Handles sit above content,
// content above video.
func (s *Stage) hitLocked(p vec) (*Node, Anchor) {
	tr := s.layers.Transformer
	if tr.Node() != nil {
		if a := tr.HitAnchor(p); a != AnchorNone {
			return tr.Node(), a
		}
	}
	if n := s.layers.Content.hit(p); n != nil {
		return n, AnchorNone
	}
	return s.layers.Video.hit(p), AnchorNone
}

// Hit reports what a pointer at p would land on.
func (s *Stage) Hit(x, y float64) (*Node, Anchor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hitLocked(vec{X: x, Y: y})
}

// Click dispatches a click at (x, y): to the top-most node's OnClick, or to the
// background handler when nothing is hit. Clicks on handles are swallowed.
func (s *Stage) Click(x, y float64) {
	s.mu.Lock()
	n, a := s.hitLocked(vec{X: x, Y: y})
	bg := s.onBackgroundClick
	s.mu.Unlock()

	switch {
	case a != AnchorNone:
	case n != nil:
		if n.OnClick != nil {
			n.OnClick(n)
		}
	case bg != nil:
		bg()
	}
}

// DragStart begins a drag at (x, y). It returns false when nothing there can
// be dragged.
func (s *Stage) DragStart(x, y float64) bool {
	p := vec{X: x, Y: y}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, a := s.hitLocked(p)
	switch {
	case a != AnchorNone:
		s.layers.Transformer.begin(a)
		s.drag = &dragState{node: n, anchor: a, grab: p, start: n.Placement}
		return true
	case n != nil && n.Draggable:
		s.drag = &dragState{node: n, grab: p, start: n.Placement}
		return true
	}
	s.drag = nil
	return false
}

// DragMove moves the dragged node, or runs the handle gesture, towards (x, y).
func (s *Stage) DragMove(x, y float64) {
	p := vec{X: x, Y: y}
	s.mu.Lock()
	d := s.drag
	if d == nil {
		s.mu.Unlock()
		return
	}
	if d.anchor != AnchorNone {
		s.layers.Transformer.move(p)
	} else {
		d.node.X = d.start.X + p.X - d.grab.X
		d.node.Y = d.start.Y + p.Y - d.grab.Y
	}
	d.moved = true
	s.mu.Unlock()
	s.changed()
}

// DragEnd finishes the drag and fires the node's OnTransformEnd if it moved.
func (s *Stage) DragEnd() {
	s.mu.Lock()
	d := s.drag
	s.drag = nil
	if d != nil && d.anchor != AnchorNone {
		s.layers.Transformer.end()
	}
	s.mu.Unlock()

	if d == nil || !d.moved {
		return
	}
	if d.node.OnTransformEnd != nil {
		d.node.OnTransformEnd(d.node)
	}
}

// Dragging reports whether a drag is in progress.
func (s *Stage) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag != nil
}
