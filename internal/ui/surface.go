package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"CanvasEdit/internal/scene"
)

// Surface shows a scene.Stage and forwards taps and drags to it.
type Surface struct {
	widget.BaseWidget

	stage  *scene.Stage
	raster *canvas.Raster
	size   fyne.Size

	dragging   bool
	dragActive bool
}

var _ fyne.Widget = (*Surface)(nil)
var _ fyne.Tappable = (*Surface)(nil)
var _ fyne.Draggable = (*Surface)(nil)

func NewSurface(stage *scene.Stage) *Surface {
	w, h := stage.Size()
	s := &Surface{
		stage: stage,
		size:  fyne.NewSize(float32(w), float32(h)),
	}
	s.raster = canvas.NewRaster(s.draw)
	s.ExtendBaseWidget(s)
	// Frames arrive from the video goroutine.
	stage.SetOnChange(func() { fyne.Do(s.raster.Refresh) })
	return s
}

func (s *Surface) draw(w, h int) image.Image {
	return s.stage.RenderImage(w, h)
}

// toStage converts widget coordinates to stage units. The widget is never
// stretched, so this is only a type change.
func toStage(p fyne.Position) (float64, float64) {
	return float64(p.X), float64(p.Y)
}

func (s *Surface) Tapped(e *fyne.PointEvent) {
	s.stage.Click(toStage(e.Position))
}

// Dragged starts a stage drag on the first event, at the point the pointer
// went down.
func (s *Surface) Dragged(e *fyne.DragEvent) {
	if !s.dragging {
		s.dragging = true
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		s.dragActive = s.stage.DragStart(toStage(start))
	}
	if s.dragActive {
		s.stage.DragMove(toStage(e.Position))
	}
}

func (s *Surface) DragEnd() {
	if s.dragActive {
		s.stage.DragEnd()
	}
	s.dragging, s.dragActive = false, false
}

func (s *Surface) MinSize() fyne.Size {
	return s.size
}

func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Black
	border.StrokeWidth = 1
	return &surfaceRenderer{surface: s, border: border}
}

type surfaceRenderer struct {
	surface *Surface
	border  *canvas.Rectangle
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.surface.raster.Resize(r.surface.size)
	r.border.Resize(r.surface.size)
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return r.surface.size
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.surface.raster, r.border}
}

func (r *surfaceRenderer) Refresh() {
	r.surface.raster.Refresh()
	r.border.Refresh()
}

func (r *surfaceRenderer) Destroy() {}
