package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CanvasEdit/internal/state"
)

// Controls is the button column beside the canvas.
type Controls struct {
	Entry     *widget.Entry
	AddText   *widget.Button
	AddShape  *widget.Button
	AddImage  *widget.Button
	AddVideo  *widget.Button
	MoveUp    *widget.Button
	MoveDown  *widget.Button
	MoveLeft  *widget.Button
	MoveRight *widget.Button

	Container fyne.CanvasObject

	unsubscribe func()
}

// NewControls builds the controls and keeps the entry in step with the
// store's text buffer.
func NewControls(store *state.Store) *Controls {
	c := &Controls{}

	c.Entry = widget.NewEntry()
	c.Entry.SetPlaceHolder("Enter text")
	c.Entry.OnChanged = store.SetText
	addText := func() { store.AddText(store.Text()) }
	c.Entry.OnSubmitted = func(string) { addText() }

	c.AddText = widget.NewButtonWithIcon("Add Text", theme.ContentAddIcon(), addText)
	c.AddShape = widget.NewButton("Add Shape", func() { store.AddShape() })
	c.AddImage = widget.NewButtonWithIcon("Add Image", theme.FileImageIcon(), func() { store.AddImage() })
	c.AddVideo = widget.NewButtonWithIcon("Add Video", theme.FileVideoIcon(), store.AddVideo)

	move := func(d state.Direction) func() {
		return func() { store.MoveSelected(d) }
	}
	c.MoveUp = widget.NewButtonWithIcon("Move Up", theme.MoveUpIcon(), move(state.Up))
	c.MoveDown = widget.NewButtonWithIcon("Move Down", theme.MoveDownIcon(), move(state.Down))
	c.MoveLeft = widget.NewButtonWithIcon("Move Left", theme.NavigateBackIcon(), move(state.Left))
	c.MoveRight = widget.NewButtonWithIcon("Move Right", theme.NavigateNextIcon(), move(state.Right))

	c.unsubscribe = store.Subscribe(func(snap state.Snapshot) {
		if c.Entry.Text != snap.Text {
			c.Entry.SetText(snap.Text)
		}
	})

	c.Container = container.NewVBox(
		container.NewBorder(nil, nil, nil, c.AddText, c.Entry),
		c.AddShape,
		c.AddImage,
		c.AddVideo,
		widget.NewSeparator(),
		c.MoveUp,
		c.MoveDown,
		c.MoveLeft,
		c.MoveRight,
	)
	return c
}

// Close stops following the store.
func (c *Controls) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
