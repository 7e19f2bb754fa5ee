package scene

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func at(x, y float64) Placement {
	return Placement{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

func assertVec(t *testing.T, want, got r2.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-6, "y")
}

func TestPlacementRotatesClockwise(t *testing.T) {
	p := Placement{X: 10, Y: 20, ScaleX: 2, ScaleY: 1, Rotation: 90}

	assertVec(t, r2.Vec{X: 10, Y: 30}, p.ToWorld(r2.Vec{X: 5}))
	l, ok := p.ToLocal(r2.Vec{X: 10, Y: 30})
	require.True(t, ok)
	assertVec(t, r2.Vec{X: 5}, l)

	_, ok = Placement{}.ToLocal(r2.Vec{})
	assert.False(t, ok)
}

func TestNormalizeDegrees(t *testing.T) {
	tests := map[float64]float64{0: 0, 180: -180, 270: -90, -190: 170, 720: 0}
	for in, want := range tests {
		assert.InDelta(t, want, normalizeDegrees(in), 1e-9, "normalize(%v)", in)
	}
}

func TestContainsRespectsRotation(t *testing.T) {
	n := NewRect(uuid.New(), Placement{X: 100, Y: 100, ScaleX: 1, ScaleY: 1, Rotation: 45}, 100, 10, red)

	along := n.ToWorld(r2.Vec{X: 90, Y: 5})
	assert.True(t, n.Contains(along))
	assert.False(t, n.Contains(r2.Vec{X: 190, Y: 105}), "unrotated box corner is outside")
}

func TestOutlineHitsOnlyItsStroke(t *testing.T) {
	n := NewOutline(550, 550, blue, 2)
	assert.True(t, n.Contains(r2.Vec{X: 0.5, Y: 200}))
	assert.False(t, n.Contains(r2.Vec{X: 200, Y: 200}))
}

func TestClickDispatch(t *testing.T) {
	s := NewStage(550, 550)
	var clicked []*Node
	background := 0
	s.SetOnBackgroundClick(func() { background++ })

	low := NewRect(uuid.New(), at(10, 10), 100, 100, red)
	high := NewRect(uuid.New(), at(50, 50), 100, 100, blue)
	for _, n := range []*Node{low, high} {
		n.OnClick = func(n *Node) { clicked = append(clicked, n) }
	}
	s.Update(func(l Layers) { l.Content.Add(low, high) })

	s.Click(60, 60)
	s.Click(20, 20)
	s.Click(400, 400)

	require.Len(t, clicked, 2)
	assert.Same(t, high, clicked[0], "top-most node wins")
	assert.Same(t, low, clicked[1])
	assert.Equal(t, 1, background)
}

func TestClickOnVideoDoesNotReachBackground(t *testing.T) {
	s := NewStage(550, 550)
	background, toggles := 0, 0
	s.SetOnBackgroundClick(func() { background++ })
	v := NewVideo(550, 550)
	v.OnClick = func(*Node) { toggles++ }
	s.Update(func(l Layers) { l.Video.Add(v) })

	s.Click(300, 300)
	assert.Equal(t, 1, toggles)
	assert.Zero(t, background)
}

func TestDragMovesAndReportsOnEnd(t *testing.T) {
	s := NewStage(550, 550)
	n := NewRect(uuid.New(), at(100, 100), 100, 100, red)
	var ended *Node
	n.OnTransformEnd = func(n *Node) { ended = n }
	s.Update(func(l Layers) { l.Content.Add(n) })

	require.True(t, s.DragStart(150, 150))
	s.DragMove(160, 140)
	s.DragMove(175, 130)
	assert.Nil(t, ended, "no report before release")
	s.DragEnd()

	require.Same(t, n, ended)
	assert.Equal(t, 125.0, n.X)
	assert.Equal(t, 80.0, n.Y)
	assert.False(t, s.Dragging())
}

func TestDragIgnoresFixedNodes(t *testing.T) {
	s := NewStage(550, 550)
	s.Update(func(l Layers) { l.Video.Add(NewVideo(550, 550)) })

	assert.False(t, s.DragStart(10, 10))
	s.DragMove(20, 20)
	s.DragEnd()
}

func TestDragWithoutMovementDoesNotReport(t *testing.T) {
	s := NewStage(550, 550)
	n := NewRect(uuid.New(), at(0, 0), 50, 50, red)
	reported := false
	n.OnTransformEnd = func(*Node) { reported = true }
	s.Update(func(l Layers) { l.Content.Add(n) })

	require.True(t, s.DragStart(10, 10))
	s.DragEnd()
	assert.False(t, reported)
}

func TestResizeKeepsOppositeCornerAndRatio(t *testing.T) {
	s := NewStage(550, 550)
	n := NewRect(uuid.New(), at(100, 100), 100, 100, red)
	var ended Placement
	n.OnTransformEnd = func(n *Node) { ended = n.Placement }
	s.Update(func(l Layers) {
		l.Content.Add(n)
		l.Transformer.Attach(n)
	})

	_, a := s.Hit(200, 200)
	require.Equal(t, BottomRight, a)

	require.True(t, s.DragStart(200, 200))
	s.DragMove(300, 300)
	s.DragEnd()

	assert.InDelta(t, 2, ended.ScaleX, 1e-9)
	assert.InDelta(t, 2, ended.ScaleY, 1e-9)
	assertVec(t, r2.Vec{X: 100, Y: 100}, n.Corners()[0])

	// Dragging top-left in shrinks towards the fixed bottom-right corner.
	require.True(t, s.DragStart(100, 100))
	s.DragMove(200, 200)
	s.DragEnd()
	assert.InDelta(t, 1, n.ScaleX, 1e-9)
	assertVec(t, r2.Vec{X: 300, Y: 300}, n.Corners()[2])
	assertVec(t, r2.Vec{X: 200, Y: 200}, n.Corners()[0])
}

func TestResizeClampsToMinimumSize(t *testing.T) {
	s := NewStage(550, 550)
	n := NewRect(uuid.New(), at(100, 100), 100, 100, red)
	s.Update(func(l Layers) {
		l.Content.Add(n)
		l.Transformer.Attach(n)
	})

	require.True(t, s.DragStart(200, 200))
	s.DragMove(0, 0)
	s.DragEnd()

	assert.InDelta(t, 0.05, n.ScaleX, 1e-9)
	assert.InDelta(t, 0.05, n.ScaleY, 1e-9)
}

func TestRotateAboutCentre(t *testing.T) {
	s := NewStage(550, 550)
	n := NewRect(uuid.New(), at(100, 100), 100, 100, red)
	reports := 0
	n.OnTransformEnd = func(*Node) { reports++ }
	s.Update(func(l Layers) {
		l.Content.Add(n)
		l.Transformer.Attach(n)
	})

	rot := s.layers.Transformer.AnchorPositions()[Rotater]
	assertVec(t, r2.Vec{X: 150, Y: 50}, rot)

	require.True(t, s.DragStart(rot.X, rot.Y))
	s.DragMove(300, 150) // straight right of the centre
	s.DragEnd()

	assert.InDelta(t, 90, n.Rotation, 1e-9)
	assertVec(t, r2.Vec{X: 150, Y: 150}, n.Center())
	assertVec(t, r2.Vec{X: 200, Y: 100}, n.Corners()[0])
	assert.Equal(t, 1, reports)
}

func TestClickOnHandleIsSwallowed(t *testing.T) {
	s := NewStage(550, 550)
	background := 0
	s.SetOnBackgroundClick(func() { background++ })
	n := NewRect(uuid.New(), at(100, 100), 100, 100, red)
	s.Update(func(l Layers) {
		l.Content.Add(n)
		l.Transformer.Attach(n)
	})

	s.Click(150, 50)
	assert.Zero(t, background)

	s.Update(func(l Layers) { l.Transformer.Detach() })
	s.Click(150, 50)
	assert.Equal(t, 1, background)
}

func TestDestroyClearsEverything(t *testing.T) {
	s := NewStage(550, 550)
	n := NewRect(uuid.New(), at(0, 0), 10, 10, red)
	s.Update(func(l Layers) {
		l.Video.Add(NewVideo(550, 550))
		l.Content.Add(n)
		l.Transformer.Attach(n)
	})

	s.Destroy()
	s.View(func(l Layers) {
		assert.Zero(t, l.Video.Len())
		assert.Zero(t, l.Content.Len())
		assert.Nil(t, l.Transformer.Node())
	})
}

func TestRenderDrawsLayersInOrder(t *testing.T) {
	s := NewStage(100, 100)
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}), image.Point{}, draw.Src)
	v := NewVideo(100, 100)
	v.Image = frame
	rect := NewRect(uuid.New(), at(20, 20), 30, 30, red)
	s.Update(func(l Layers) {
		l.Video.Add(v)
		l.Content.Add(NewOutline(100, 100, blue, 2), rect)
	})

	img := s.RenderImage(100, 100)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(35, 35), "rect over video")
	got := img.RGBAAt(70, 70)
	assert.InDelta(t, 0x40, int(got.R), 1, "video frame")
	assert.InDelta(t, 0x40, int(got.G), 1, "video frame")
	assert.Equal(t, uint8(0xff), got.A)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(0, 50), "boundary stroke")
}

func TestRenderScalesToTarget(t *testing.T) {
	s := NewStage(100, 100)
	s.Update(func(l Layers) { l.Content.Add(NewRect(uuid.New(), at(50, 50), 50, 50, red)) })

	img := s.RenderImage(200, 200)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(150, 150))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(90, 90))
}

func TestRenderSkipsDegenerateNodes(t *testing.T) {
	s := NewStage(50, 50)
	s.Update(func(l Layers) {
		l.Content.Add(NewRect(uuid.New(), Placement{}, 10, 10, red))
		l.Content.Add(NewImage(uuid.New(), at(0, 0), nil, 10, 10))
	})
	assert.NotPanics(t, func() { s.RenderImage(50, 50) })
}

func TestTextIsMeasuredAndRendered(t *testing.T) {
	n := NewText(uuid.New(), at(10, 10), "Hello", 24, color.NRGBA{A: 255})
	assert.Greater(t, n.Width, 24.0)
	assert.GreaterOrEqual(t, n.Height, 24.0)

	s := NewStage(200, 100)
	s.Update(func(l Layers) { l.Content.Add(n) })
	img := s.RenderImage(200, 100)

	dark := 0
	for y := 10; y < 10+int(n.Height); y++ {
		for x := 10; x < 10+int(n.Width); x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 20)
	assert.True(t, math.Abs(n.Center().X-(10+n.Width/2)) < 1e-9)
}

func TestAnchorString(t *testing.T) {
	tests := map[Anchor]string{
		AnchorNone:  "none",
		TopLeft:     "top-left",
		BottomRight: "bottom-right",
		Rotater:     "rotater",
		Anchor(-1):  "unknown",
		Anchor(42):  "unknown",
	}
	for a, want := range tests {
		assert.Equal(t, want, a.String())
	}
}
