package media

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"CanvasEdit/internal/applog"
)

// ErrNoFrame is returned by a FrameSource that has nothing to show yet.
var ErrNoFrame = errors.New("media: no frame available")

// FrameSource yields the current frame of a looping video. There is no audio
// path; playback is always muted.
type FrameSource interface {
	Frame() (image.Image, error)
	Close() error
}

// OpenFunc opens a FrameSource for src.
type OpenFunc func(ctx context.Context, src string) (FrameSource, error)

// Player copies frames from a source into a sink on a fixed tick while
// playing. The task lives until Stop or until the context given to Start is
// cancelled; source errors never end it.
type Player struct {
	src      string
	open     OpenFunc
	interval time.Duration
	size     image.Point
	sink     func(image.Image)
	log      *slog.Logger

	mu      sync.Mutex
	playing bool
	cancel  context.CancelFunc
	opened  chan struct{}
	done    chan struct{}
}

// NewPlayer returns a stopped player. Frames are scaled to size before they
// reach sink.
func NewPlayer(src string, open OpenFunc, interval time.Duration, size image.Point, sink func(image.Image)) *Player {
	return &Player{
		src:      src,
		open:     open,
		interval: interval,
		size:     size,
		sink:     sink,
		log:      applog.WithComponent("video"),
	}
}

// Src is the URL the player was created for.
func (p *Player) Src() string {
	return p.src
}

// Start begins the frame task and starts playing. Calling Start on a running
// player does nothing.
func (p *Player) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.opened = make(chan struct{})
	p.done = make(chan struct{})
	p.playing = true
	go p.run(ctx, p.opened, p.done)
}

// Stop cancels the frame task. Once the source is open it waits for the task
// to release it; while the source is still opening it returns at once and the
// task closes whatever the open yields.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, opened, done := p.cancel, p.opened, p.done
	p.cancel, p.opened, p.done = nil, nil, nil
	p.playing = false
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-opened:
		<-done
	default:
	}
}

// Play resumes frame copying.
func (p *Player) Play() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
}

// Pause freezes on the last copied frame.
func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

// Toggle flips between playing and paused.
func (p *Player) Toggle() {
	p.mu.Lock()
	p.playing = !p.playing
	playing := p.playing
	p.mu.Unlock()
	p.log.Debug("toggle", slog.Bool("playing", playing))
}

// Playing reports whether frames are being copied.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) run(ctx context.Context, opened, done chan struct{}) {
	defer close(done)

	source, err := p.open(ctx, p.src)
	close(opened)
	if err != nil {
		// Keep ticking against nothing, the same as a video element that never loads.
		p.log.Warn("video open failed", slog.String("src", p.src), slog.Any("err", err))
		source = nil
	}
	defer func() {
		if source != nil {
			if err := source.Close(); err != nil {
				p.log.Debug("video close", slog.Any("err", err))
			}
		}
	}()

	if ctx.Err() != nil {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if source == nil || !p.Playing() {
			continue
		}
		frame, err := source.Frame()
		if err != nil {
			if !errors.Is(err, ErrNoFrame) {
				p.log.Debug("frame", slog.Any("err", err))
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		p.sink(Fit(frame, p.size))
	}
}

// Fit scales src to exactly size. A zero size returns src unchanged.
func Fit(src image.Image, size image.Point) image.Image {
	if size.X <= 0 || size.Y <= 0 || src.Bounds().Size() == size {
		return src
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
