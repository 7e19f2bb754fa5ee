package scene

import (
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Faces are not safe for concurrent use, and text is measured on the UI
// goroutine but rasterized from the render callback.
var fonts = struct {
	sync.Mutex
	parsed *opentype.Font
	faces  map[float64]font.Face
}{faces: make(map[float64]font.Face)}

func faceLocked(size float64) (font.Face, error) {
	if f, ok := fonts.faces[size]; ok {
		return f, nil
	}
	if fonts.parsed == nil {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, err
		}
		fonts.parsed = parsed
	}
	f, err := opentype.NewFace(fonts.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	fonts.faces[size] = f
	return f, nil
}

// MeasureText returns the width and line height of s set in Go Regular at size.
func MeasureText(s string, size float64) (w, h float64) {
	fonts.Lock()
	defer fonts.Unlock()
	face, err := faceLocked(size)
	if err != nil {
		return 0, size
	}
	m := face.Metrics()
	adv := font.MeasureString(face, s)
	return float64(adv.Ceil()), math.Max(size, float64((m.Ascent + m.Descent).Ceil()))
}

// rasterizeText draws s in fill onto a transparent bitmap of the measured size.
func rasterizeText(s string, size float64, fill color.NRGBA) *image.NRGBA {
	w, h := MeasureText(s, size)
	if w < 1 {
		w = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(math.Ceil(w)), int(math.Ceil(h))))

	fonts.Lock()
	defer fonts.Unlock()
	face, err := faceLocked(size)
	if err != nil {
		return img
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fill),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: face.Metrics().Ascent},
	}
	d.DrawString(s)
	return img
}
