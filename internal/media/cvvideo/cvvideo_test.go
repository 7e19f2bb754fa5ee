package cvvideo

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasEdit/internal/media"
)

// fakeReader plays a fixed number of frames whose first pixel's red
// channel is the frame index.
type fakeReader struct {
	frames  int
	pos     int
	reads   int
	rewinds int
	err     error
	closed  bool
}

func (f *fakeReader) Read() (image.Image, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.pos >= f.frames {
		return nil, false, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: uint8(f.pos), A: 255})
	f.pos++
	f.reads++
	return img, true, nil
}

func (f *fakeReader) Rewind() {
	f.pos = 0
	f.rewinds++
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func index(t *testing.T, img image.Image) uint8 {
	t.Helper()
	require.NotNil(t, img)
	r, _, _, _ := img.At(0, 0).RGBA()
	return uint8(r >> 8)
}

func TestFramePacesAtStreamRate(t *testing.T) {
	r := &fakeReader{frames: 10}
	c := &clock{t: time.Unix(100, 0)}
	s := newSource(r, 10, c.now)

	img, err := s.Frame()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), index(t, img))

	c.advance(50 * time.Millisecond)
	img, err = s.Frame()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), index(t, img), "held until a full period passes")
	assert.Equal(t, 1, r.reads)

	c.advance(50 * time.Millisecond)
	img, err = s.Frame()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), index(t, img))
	assert.Equal(t, 2, r.reads)
}

func TestFrameResyncsAfterStall(t *testing.T) {
	r := &fakeReader{frames: 10}
	c := &clock{t: time.Unix(100, 0)}
	s := newSource(r, 10, c.now)

	_, err := s.Frame()
	require.NoError(t, err)

	// A long stall reads one frame, not a burst of catch-up frames.
	c.advance(time.Second)
	_, err = s.Frame()
	require.NoError(t, err)
	c.advance(10 * time.Millisecond)
	_, err = s.Frame()
	require.NoError(t, err)
	assert.Equal(t, 2, r.reads)
}

func TestFrameLoopsAtEndOfStream(t *testing.T) {
	r := &fakeReader{frames: 2}
	c := &clock{t: time.Unix(100, 0)}
	s := newSource(r, 10, c.now)

	var got []uint8
	for range 5 {
		img, err := s.Frame()
		require.NoError(t, err)
		got = append(got, index(t, img))
		c.advance(100 * time.Millisecond)
	}
	assert.Equal(t, []uint8{0, 1, 0, 1, 0}, got)
	assert.Equal(t, 2, r.rewinds)
}

func TestFrameEmptyStream(t *testing.T) {
	r := &fakeReader{}
	s := newSource(r, 10, (&clock{t: time.Unix(100, 0)}).now)

	_, err := s.Frame()
	assert.ErrorIs(t, err, media.ErrNoFrame)
}

func TestFrameReadError(t *testing.T) {
	boom := errors.New("bad mat")
	r := &fakeReader{frames: 3, err: boom}
	s := newSource(r, 10, (&clock{t: time.Unix(100, 0)}).now)

	_, err := s.Frame()
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, r.rewinds)
}

func TestFallbackFrameRate(t *testing.T) {
	s := newSource(&fakeReader{}, 0, time.Now)
	assert.Equal(t, time.Second/fallbackFPS, s.frame)

	require.NoError(t, s.Close())
	assert.True(t, s.r.(*fakeReader).closed)
}
