// Package ui is the Fyne front end: the canvas surface, the control column
// and the window that hosts them.
package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"CanvasEdit/internal/applog"
	"CanvasEdit/internal/config"
	"CanvasEdit/internal/media"
	"CanvasEdit/internal/render"
	"CanvasEdit/internal/state"
)

// Editor is the assembled editor: state, renderer and widgets.
type Editor struct {
	Store    *state.Store
	Renderer *render.Renderer
	Surface  *Surface
	Controls *Controls
	Content  fyne.CanvasObject

	unbind func()
}

// NewEditor wires a store to a renderer and builds the widgets. openVideo
// decodes the video URL; the app passes cvvideo.Open.
func NewEditor(cfg config.Config, openVideo media.OpenFunc) (*Editor, error) {
	settings, err := state.SettingsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("editor settings: %w", err)
	}
	store := state.NewStore(settings)
	r := render.New(store, render.Options{
		Width:         cfg.Canvas.Width,
		Height:        cfg.Canvas.Height,
		Loader:        media.NewLoader(cfg.FetchTimeoutDuration()),
		OpenVideo:     openVideo,
		FrameInterval: cfg.FrameInterval(),
		Dispatch:      fyne.Do,
	})
	e := &Editor{
		Store:    store,
		Renderer: r,
		Surface:  NewSurface(r.Stage()),
		Controls: NewControls(store),
	}
	e.unbind = r.Bind(store)
	e.Content = container.NewBorder(nil, nil,
		container.NewPadded(e.Controls.Container), nil,
		container.NewCenter(e.Surface))
	return e, nil
}

// Close tears the editor down: stops the video task and image loads and
// detaches from the store.
func (e *Editor) Close() {
	e.unbind()
	e.Controls.Close()
	e.Renderer.Close()
}

// RunApp opens the editor window and blocks until it is closed.
func RunApp(cfg config.Config, openVideo media.OpenFunc) error {
	log := applog.WithComponent("ui")

	editor, err := NewEditor(cfg, openVideo)
	if err != nil {
		return err
	}

	a := app.New()
	w := a.NewWindow("Canvas Editor")
	w.SetContent(editor.Content)
	w.Resize(fyne.NewSize(float32(cfg.Canvas.Width)+260, float32(cfg.Canvas.Height)+40))
	w.SetOnClosed(editor.Close)

	log.Info("window open", slog.Float64("canvas_width", cfg.Canvas.Width), slog.Float64("canvas_height", cfg.Canvas.Height))
	w.ShowAndRun()
	return nil
}
