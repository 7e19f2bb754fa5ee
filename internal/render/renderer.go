// Package render keeps a scene.Stage in step with the editor state and turns
// pointer gestures on the stage back into state updates.
package render

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"CanvasEdit/internal/applog"
	"CanvasEdit/internal/media"
	"CanvasEdit/internal/scene"
	"CanvasEdit/internal/state"
)

var boundaryStroke = color.NRGBA{B: 255, A: 255}

// Target receives the events the renderer reports.
type Target interface {
	SetSelection(id uuid.UUID)
	ApplyTransform(id uuid.UUID, t state.Transform) bool
}

// ImageLoader fetches bitmaps in the background.
type ImageLoader interface {
	LoadAsync(ctx context.Context, url string, fn func(image.Image))
}

// Options configure a Renderer.
type Options struct {
	Width, Height float64
	Loader        ImageLoader
	OpenVideo     media.OpenFunc
	FrameInterval time.Duration
	// Dispatch runs fn on the UI goroutine. Nil runs fn in place.
	Dispatch func(fn func())
}

// Renderer owns the stage. Resync, Close and the dispatched callbacks must
// all run on the UI goroutine.
type Renderer struct {
	stage  *scene.Stage
	target Target
	opts   Options
	log    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	outline *scene.Node
	nodes   map[uuid.UUID]*scene.Node
	synced  map[uuid.UUID]state.Transform
	bitmaps map[uuid.UUID]image.Image
	loading map[uuid.UUID]bool
	video   *videoEntry
	last    state.Snapshot
	closed  bool
}

type videoEntry struct {
	desc   state.Video
	node   *scene.Node
	player *media.Player
}

// New returns a renderer drawing onto a fresh stage of opts.Width×opts.Height.
func New(target Target, opts Options) *Renderer {
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) { fn() }
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		stage:   scene.NewStage(opts.Width, opts.Height),
		target:  target,
		opts:    opts,
		log:     applog.WithComponent("render"),
		ctx:     ctx,
		cancel:  cancel,
		outline: scene.NewOutline(opts.Width, opts.Height, boundaryStroke, 2),
		nodes:   make(map[uuid.UUID]*scene.Node),
		synced:  make(map[uuid.UUID]state.Transform),
		bitmaps: make(map[uuid.UUID]image.Image),
		loading: make(map[uuid.UUID]bool),
	}
	r.stage.SetOnBackgroundClick(func() { r.target.SetSelection(uuid.Nil) })
	r.stage.Update(func(l scene.Layers) { l.Content.Add(r.outline) })
	return r
}

// Stage returns the stage the renderer draws on.
func (r *Renderer) Stage() *scene.Stage {
	return r.stage
}

// Bind resyncs from s now and on every change until the returned func is called.
func (r *Renderer) Bind(s *state.Store) (unbind func()) {
	unbind = s.Subscribe(r.Resync)
	r.Resync(s.Snapshot())
	return unbind
}

// Resync brings the stage in line with snap. Primitives are keyed by element
// id and reused; only placement that changed in the state since the last
// sync is pushed onto a node, so a drag in progress is left alone.
func (r *Renderer) Resync(snap state.Snapshot) {
	if r.closed {
		return
	}
	r.last = snap
	r.syncVideo(snap.Video)

	var loads []state.Element
	r.stage.Update(func(l scene.Layers) {
		live := make(map[uuid.UUID]bool, len(snap.Shapes)+len(snap.Images))
		order := []*scene.Node{r.outline}

		for _, e := range snap.Shapes {
			live[e.ID] = true
			order = append(order, r.syncShape(e))
		}
		for _, e := range snap.Images {
			live[e.ID] = true
			n := r.syncImage(e)
			if n == nil {
				if !r.loading[e.ID] {
					r.loading[e.ID] = true
					loads = append(loads, e)
				}
				continue
			}
			order = append(order, n)
		}
		for id := range r.nodes {
			if !live[id] {
				delete(r.nodes, id)
				delete(r.synced, id)
				delete(r.bitmaps, id)
			}
		}
		l.Content.SetNodes(order)

		if n, ok := r.nodes[snap.Selection]; ok && snap.Selection != uuid.Nil {
			l.Transformer.Attach(n)
		} else {
			l.Transformer.Detach()
		}
	})

	for _, e := range loads {
		r.load(e)
	}
	r.log.Debug("resync",
		slog.Int("shapes", len(snap.Shapes)),
		slog.Int("images", len(snap.Images)),
		slog.Int("pending", len(r.loading)),
		slog.Bool("video", snap.Video != nil))
}

func placement(e state.Element) scene.Placement {
	return scene.Placement{X: e.X, Y: e.Y, ScaleX: e.ScaleX, ScaleY: e.ScaleY, Rotation: e.Rotation}
}

func (r *Renderer) syncShape(e state.Element) *scene.Node {
	n, ok := r.nodes[e.ID]
	wantKind := scene.KindRect
	if e.Kind == state.KindText {
		wantKind = scene.KindText
	}
	if !ok || n.Kind != wantKind {
		if wantKind == scene.KindText {
			n = scene.NewText(e.ID, placement(e), e.Text, e.FontSize, e.Fill)
		} else {
			n = scene.NewRect(e.ID, placement(e), e.Width, e.Height, e.Fill)
		}
		r.wire(n)
		r.nodes[e.ID] = n
		r.synced[e.ID] = e.Transform()
		return n
	}

	if t := e.Transform(); r.synced[e.ID] != t {
		n.Placement = placement(e)
		r.synced[e.ID] = t
	}
	n.Fill = e.Fill
	if wantKind == scene.KindText {
		if n.Text != e.Text || n.FontSize != e.FontSize {
			n.SetText(e.Text, e.FontSize)
		}
	} else {
		n.Width, n.Height = e.Width, e.Height
	}
	return n
}

// syncImage returns the image primitive for e, or nil while its bitmap is
// still loading.
func (r *Renderer) syncImage(e state.Element) *scene.Node {
	if n, ok := r.nodes[e.ID]; ok {
		if t := e.Transform(); r.synced[e.ID] != t {
			n.Placement = placement(e)
			r.synced[e.ID] = t
		}
		n.Width, n.Height = e.Width, e.Height
		return n
	}
	bmp, ok := r.bitmaps[e.ID]
	if !ok {
		return nil
	}
	n := scene.NewImage(e.ID, placement(e), bmp, e.Width, e.Height)
	r.wire(n)
	r.nodes[e.ID] = n
	r.synced[e.ID] = e.Transform()
	return n
}

func (r *Renderer) wire(n *scene.Node) {
	id := n.ID
	n.OnClick = func(*scene.Node) {
		r.target.SetSelection(id)
	}
	n.OnTransformEnd = func(n *scene.Node) {
		t := state.Transform{X: n.X, Y: n.Y, ScaleX: n.ScaleX, ScaleY: n.ScaleY, Rotation: n.Rotation}
		r.synced[id] = t
		r.target.ApplyTransform(id, t)
	}
}

func (r *Renderer) load(e state.Element) {
	id, src := e.ID, e.Src
	r.opts.Loader.LoadAsync(r.ctx, src, func(img image.Image) {
		r.opts.Dispatch(func() {
			if r.closed {
				return
			}
			delete(r.loading, id)
			r.bitmaps[id] = img
			r.log.Debug("image ready", slog.String("id", id.String()))
			r.Resync(r.last)
		})
	})
}

func (r *Renderer) syncVideo(v *state.Video) {
	if v == nil {
		r.stopVideo()
		return
	}
	if r.video != nil && r.video.desc == *v {
		return
	}
	r.stopVideo()

	w, h := r.stage.Size()
	node := scene.NewVideo(w, h)
	player := media.NewPlayer(v.Src, r.opts.OpenVideo, r.opts.FrameInterval,
		image.Pt(int(w), int(h)),
		func(frame image.Image) {
			r.stage.Update(func(scene.Layers) { node.Image = frame })
		})
	node.OnClick = func(*scene.Node) { player.Toggle() }

	r.video = &videoEntry{desc: *v, node: node, player: player}
	r.stage.Update(func(l scene.Layers) { l.Video.SetNodes([]*scene.Node{node}) })
	player.Start(r.ctx)
	r.log.Info("video started", slog.String("src", v.Src))
}

func (r *Renderer) stopVideo() {
	if r.video == nil {
		return
	}
	r.video.player.Stop()
	r.stage.Update(func(l scene.Layers) { l.Video.Clear() })
	r.video = nil
}

// VideoPlaying reports whether a video is present and playing.
func (r *Renderer) VideoPlaying() bool {
	return r.video != nil && r.video.player.Playing()
}

// Resolved reports whether id has a primitive on the stage.
func (r *Renderer) Resolved(id uuid.UUID) bool {
	_, ok := r.nodes[id]
	return ok
}

// Close stops background work and empties the stage. The renderer ignores
// every later Resync.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.cancel()
	r.stopVideo()
	r.stage.Destroy()
	clear(r.nodes)
	clear(r.loading)
	r.log.Debug("closed")
}
