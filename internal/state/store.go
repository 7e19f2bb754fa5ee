// Package state holds the editor's canonical scene: placed elements, the
// optional video, the text-input buffer and the selection.
package state

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"CanvasEdit/internal/applog"
	"CanvasEdit/internal/config"
)

// Settings are the literals the store stamps onto new elements.
type Settings struct {
	MoveStep    float64
	ShapeSize   float64
	ShapeFill   color.NRGBA
	TextFill    color.NRGBA
	FontSize    float64
	ImageURL    string
	ImageWidth  float64
	ImageHeight float64
	Spawn       SpawnRegion
	Video       Video
}

// SettingsFromConfig resolves colours and geometry from cfg.
func SettingsFromConfig(cfg config.Config) (Settings, error) {
	shapeFill, err := config.ParseColor(cfg.Elements.ShapeFill)
	if err != nil {
		return Settings{}, fmt.Errorf("shape fill: %w", err)
	}
	textFill, err := config.ParseColor(cfg.Elements.TextFill)
	if err != nil {
		return Settings{}, fmt.Errorf("text fill: %w", err)
	}
	e := cfg.Elements
	return Settings{
		MoveStep:    e.MoveStep,
		ShapeSize:   e.ShapeSize,
		ShapeFill:   shapeFill,
		TextFill:    textFill,
		FontSize:    e.FontSize,
		ImageURL:    cfg.Assets.ImageURL,
		ImageWidth:  e.ImageWidth,
		ImageHeight: e.ImageHeight,
		Spawn:       SpawnRegion{X: e.SpawnMin, Y: e.SpawnMin, Width: e.SpawnRange, Height: e.SpawnRange},
		Video: Video{
			Src:    cfg.Assets.VideoURL,
			X:      cfg.Video.X,
			Y:      cfg.Video.Y,
			Width:  cfg.Video.Width,
			Height: cfg.Video.Height,
		},
	}, nil
}

// DefaultSettings is SettingsFromConfig(config.Default()).
func DefaultSettings() Settings {
	s, err := SettingsFromConfig(config.Default())
	if err != nil {
		panic(err)
	}
	return s
}

// Option configures a Store.
type Option func(*Store)

// WithRand sets the source used for spawn positions.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rnd = r.Float64 }
}

type listener struct {
	id int
	fn func(Snapshot)
}

// Store is the state container. It is safe for concurrent use; listeners are
// called synchronously on the goroutine that made the change, after the lock
// is released.
type Store struct {
	mu        sync.RWMutex
	settings  Settings
	rnd       func() float64
	elements  map[uuid.UUID]*Element
	order     []uuid.UUID
	video     *Video
	selection uuid.UUID
	text      string

	listeners []listener
	nextID    int
	log       *slog.Logger
}

// NewStore creates an empty store.
func NewStore(settings Settings, opts ...Option) *Store {
	s := &Store{
		settings: settings,
		rnd:      rand.Float64,
		elements: make(map[uuid.UUID]*Element),
		log:      applog.WithComponent("state"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	ls := make([]listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.RUnlock()

	for _, l := range ls {
		l.fn(snap)
	}
}

func (s *Store) appendLocked(e *Element) {
	s.elements[e.ID] = e
	s.order = append(s.order, e.ID)
}

// AddShape appends a rectangle at a random spawn position.
func (s *Store) AddShape() uuid.UUID {
	s.mu.Lock()
	x, y := s.settings.Spawn.Random(s.rnd)
	e := &Element{
		ID:     newID(),
		Kind:   KindRect,
		X:      x,
		Y:      y,
		Width:  s.settings.ShapeSize,
		Height: s.settings.ShapeSize,
		Fill:   s.settings.ShapeFill,
		ScaleX: 1,
		ScaleY: 1,
	}
	s.appendLocked(e)
	s.mu.Unlock()

	s.log.Debug("shape added", slog.String("id", e.ID.String()))
	s.notify()
	return e.ID
}

// AddText appends a text label holding value and clears the text buffer.
// A value that is empty after trimming is ignored and the buffer is kept.
func (s *Store) AddText(value string) (uuid.UUID, bool) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, false
	}

	s.mu.Lock()
	x, y := s.settings.Spawn.Random(s.rnd)
	e := &Element{
		ID:       newID(),
		Kind:     KindText,
		X:        x,
		Y:        y,
		Text:     value,
		FontSize: s.settings.FontSize,
		Fill:     s.settings.TextFill,
		ScaleX:   1,
		ScaleY:   1,
	}
	s.appendLocked(e)
	s.text = ""
	s.mu.Unlock()

	s.log.Debug("text added", slog.String("id", e.ID.String()), slog.Int("len", len(value)))
	s.notify()
	return e.ID, true
}

// AddImage appends an image descriptor. Loading the bitmap is the renderer's job.
func (s *Store) AddImage() uuid.UUID {
	s.mu.Lock()
	x, y := s.settings.Spawn.Random(s.rnd)
	e := &Element{
		ID:     newID(),
		Kind:   KindImage,
		X:      x,
		Y:      y,
		Width:  s.settings.ImageWidth,
		Height: s.settings.ImageHeight,
		Src:    s.settings.ImageURL,
		ScaleX: 1,
		ScaleY: 1,
	}
	s.appendLocked(e)
	s.mu.Unlock()

	s.log.Debug("image added", slog.String("id", e.ID.String()), slog.String("src", e.Src))
	s.notify()
	return e.ID
}

// AddVideo sets the video singleton to the configured descriptor. Calling it
// again stores the same literal and notifies nobody.
func (s *Store) AddVideo() {
	s.mu.Lock()
	v := s.settings.Video
	if s.video != nil && *s.video == v {
		s.mu.Unlock()
		return
	}
	s.video = &v
	s.mu.Unlock()

	s.log.Debug("video set", slog.String("src", v.Src))
	s.notify()
}

// MoveSelected nudges the selected element one step in dir. It does nothing
// when there is no selection or the selected id matches no element.
func (s *Store) MoveSelected(dir Direction) bool {
	s.mu.Lock()
	e, ok := s.elements[s.selection]
	if s.selection == uuid.Nil || !ok {
		s.mu.Unlock()
		return false
	}
	step := s.settings.MoveStep
	switch dir {
	case Up:
		e.Y -= step
	case Down:
		e.Y += step
	case Left:
		e.X -= step
	case Right:
		e.X += step
	default:
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// SetSelection replaces the selection. uuid.Nil clears it. The id is not
// checked against the element set.
func (s *Store) SetSelection(id uuid.UUID) {
	s.mu.Lock()
	if s.selection == id {
		s.mu.Unlock()
		return
	}
	s.selection = id
	s.mu.Unlock()

	s.notify()
}

// ApplyTransform merges t into the element with the given id. Unknown ids are ignored.
func (s *Store) ApplyTransform(id uuid.UUID, t Transform) bool {
	s.mu.Lock()
	e, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if e.Transform() == t {
		s.mu.Unlock()
		return true
	}
	e.X, e.Y = t.X, t.Y
	e.ScaleX, e.ScaleY = t.ScaleX, t.ScaleY
	e.Rotation = t.Rotation
	s.mu.Unlock()

	s.notify()
	return true
}

// SetText updates the text-input buffer.
func (s *Store) SetText(value string) {
	s.mu.Lock()
	if s.text == value {
		s.mu.Unlock()
		return
	}
	s.text = value
	s.mu.Unlock()

	s.notify()
}

// Text returns the text-input buffer.
func (s *Store) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Selection returns the selected id, or uuid.Nil.
func (s *Store) Selection() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Element returns a copy of the element with the given id.
func (s *Store) Element(id uuid.UUID) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// Shapes returns the rectangles and text labels in creation order.
func (s *Store) Shapes() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(Element.IsShape)
}

// Images returns the image descriptors in creation order.
func (s *Store) Images() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(e Element) bool { return e.Kind == KindImage })
}

// Video returns a copy of the video descriptor, or nil.
func (s *Store) Video() *Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.video == nil {
		return nil
	}
	v := *s.video
	return &v
}

// Len is the number of placed elements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Shapes:    s.collectLocked(Element.IsShape),
		Images:    s.collectLocked(func(e Element) bool { return e.Kind == KindImage }),
		Selection: s.selection,
		Text:      s.text,
	}
	if s.video != nil {
		v := *s.video
		snap.Video = &v
	}
	return snap
}

func (s *Store) collectLocked(keep func(Element) bool) []Element {
	out := make([]Element, 0, len(s.order))
	for _, id := range s.order {
		if e := s.elements[id]; keep(*e) {
			out = append(out, *e)
		}
	}
	return out
}
