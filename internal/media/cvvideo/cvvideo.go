// Package cvvideo decodes video files and streams with OpenCV.
package cvvideo

import (
	"context"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"CanvasEdit/internal/media"
)

const fallbackFPS = 30

// reader is the part of a capture the Source drives.
type reader interface {
	// Read decodes the next frame; false at end of stream.
	Read() (image.Image, bool, error)
	Rewind()
	Close() error
}

// Source reads frames at the stream's own frame rate and rewinds to the
// first frame at the end of the stream.
type Source struct {
	r     reader
	frame time.Duration
	next  time.Time
	last  image.Image
	now   func() time.Time
}

var _ media.FrameSource = (*Source)(nil)

// Open is a media.OpenFunc backed by gocv.
func Open(_ context.Context, src string) (media.FrameSource, error) {
	vc, err := gocv.VideoCaptureFile(src)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", src, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video %s: capture not opened", src)
	}
	fps := vc.Get(gocv.VideoCaptureFPS)
	return newSource(&capture{vc: vc, mat: gocv.NewMat()}, fps, time.Now), nil
}

func newSource(r reader, fps float64, now func() time.Time) *Source {
	if fps <= 0 {
		fps = fallbackFPS
	}
	return &Source{
		r:     r,
		frame: time.Duration(float64(time.Second) / fps),
		now:   now,
	}
}

// Frame returns the frame due now, reading ahead only when the previous one
// has been shown for a full frame period.
func (s *Source) Frame() (image.Image, error) {
	now := s.now()
	if s.last != nil && now.Before(s.next) {
		return s.last, nil
	}
	img, ok, err := s.r.Read()
	if err == nil && !ok {
		// End of stream: loop.
		s.r.Rewind()
		img, ok, err = s.r.Read()
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if !ok {
		return nil, media.ErrNoFrame
	}
	s.last = img
	if now.Sub(s.next) > s.frame {
		s.next = now
	}
	s.next = s.next.Add(s.frame)
	return img, nil
}

// Close releases the decoder.
func (s *Source) Close() error {
	return s.r.Close()
}

type capture struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func (c *capture) Read() (image.Image, bool, error) {
	if !c.vc.Read(&c.mat) || c.mat.Empty() {
		return nil, false, nil
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

func (c *capture) Rewind() {
	c.vc.Set(gocv.VideoCapturePosFrames, 0)
}

func (c *capture) Close() error {
	if err := c.mat.Close(); err != nil {
		c.vc.Close()
		return err
	}
	return c.vc.Close()
}
