package scene

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var (
	background   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	handleStroke = color.NRGBA{R: 0, G: 161, B: 255, A: 255}
	handleFill   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Render rasterizes the stage into dst, scaling the logical stage size to
// dst's bounds.
func (s *Stage) Render(dst *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(background), image.Point{}, draw.Src)
	if b.Empty() {
		return
	}
	base := mul(
		translateAff(float64(b.Min.X), float64(b.Min.Y)),
		scaleAff(float64(b.Dx())/s.width, float64(b.Dy())/s.height),
	)

	for _, n := range s.layers.Video.nodes {
		drawNode(dst, base, n)
	}
	for _, n := range s.layers.Content.nodes {
		drawNode(dst, base, n)
	}
	drawTransformer(dst, base, s.layers.Transformer)
}

// RenderImage rasterizes the stage into a new w×h image.
func (s *Stage) RenderImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	s.Render(img)
	return img
}

func drawNode(dst *image.RGBA, base f64.Aff3, n *Node) {
	m := mul(base, n.Matrix())
	switch n.Kind {
	case KindRect:
		fillBox(dst, m, n.Width, n.Height, n.Fill)
	case KindText:
		if n.Text == "" {
			return
		}
		bmp := n.textBitmap()
		transform(dst, m, bmp, draw.Over)
	case KindImage, KindVideo:
		if n.Image == nil {
			return
		}
		ib := n.Image.Bounds()
		if ib.Empty() {
			return
		}
		fit := mul(
			scaleAff(n.Width/float64(ib.Dx()), n.Height/float64(ib.Dy())),
			translateAff(-float64(ib.Min.X), -float64(ib.Min.Y)),
		)
		op := draw.Over
		if n.Kind == KindVideo {
			op = draw.Src
		}
		transform(dst, mul(m, fit), n.Image, op)
	case KindOutline:
		c := n.Corners()
		for i := range c {
			strokeLine(dst, base, c[i], c[(i+1)%4], n.StrokeWidth, n.Stroke)
		}
	}
}

func drawTransformer(dst *image.RGBA, base f64.Aff3, t *Transformer) {
	n := t.Node()
	if n == nil {
		return
	}
	c := n.Corners()
	for i := range c {
		strokeLine(dst, base, c[i], c[(i+1)%4], 1, handleStroke)
	}
	pos := t.AnchorPositions()
	if r, ok := pos[Rotater]; ok {
		top := n.ToWorld(t.localAnchor(Rotater))
		strokeLine(dst, base, top, r, 1, handleStroke)
	}
	for _, p := range pos {
		drawHandle(dst, base, p, t.AnchorSize)
	}
}

// transform draws src mapped through m (source pixels to dst pixels).
func transform(dst *image.RGBA, m f64.Aff3, src image.Image, op draw.Op) {
	if !invertible(m) {
		return
	}
	draw.ApproxBiLinear.Transform(dst, m, src, src.Bounds(), op, nil)
}

// fillBox fills the local box (0,0)-(w,h) mapped through m.
func fillBox(dst *image.RGBA, m f64.Aff3, w, h float64, fill color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	sw, sh := int(math.Ceil(w)), int(math.Ceil(h))
	m = mul(m, scaleAff(w/float64(sw), h/float64(sh)))
	if !invertible(m) {
		return
	}
	draw.NearestNeighbor.Transform(dst, m, image.NewUniform(fill), image.Rect(0, 0, sw, sh), draw.Over, nil)
}

// strokeLine draws a segment of the given stage-space width from a to b.
func strokeLine(dst *image.RGBA, base f64.Aff3, a, b vec, width float64, c color.NRGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 {
		return
	}
	ux, uy := dx/length, dy/length
	// Unit box (0,0)-(length,width) laid along the segment, centred on it.
	seg := f64.Aff3{
		ux, -uy, a.X + uy*width/2,
		uy, ux, a.Y - ux*width/2,
	}
	fillBox(dst, mul(base, seg), length, width, c)
}

func drawHandle(dst *image.RGBA, base f64.Aff3, p vec, size float64) {
	half := size / 2
	outer := mul(base, translateAff(p.X-half, p.Y-half))
	fillBox(dst, outer, size, size, handleStroke)
	inner := mul(base, translateAff(p.X-half+1, p.Y-half+1))
	fillBox(dst, inner, size-2, size-2, handleFill)
}
