// Package gui holds the fyne-based surfaces: the region-selection overlay,
// the disambiguation chooser and the profile editor.
package gui

import (
	"context"
	"errors"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"profile-clip/src/screenshot"
)

var errNoApp = errors.New("gui: no fyne app available")

type selectResult struct {
	region    screenshot.Region
	cancelled bool
}

// RegionSelector is the capture surface: a full-screen overlay the user
// drags a rectangle on. Escape or closing the overlay cancels.
type RegionSelector struct {
	app fyne.App
}

func NewRegionSelector(app fyne.App) *RegionSelector {
	return &RegionSelector{app: app}
}

// Select blocks until the user finishes or cancels the selection, or ctx is
// done. It is called from the event-loop goroutine; all UI work is
// marshalled onto the fyne thread.
func (s *RegionSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	if s.app == nil {
		return screenshot.Region{}, false, errNoApp
	}

	bounds, err := screenshot.GetDisplayBounds()
	if err != nil {
		return screenshot.Region{}, false, err
	}

	resCh := make(chan selectResult, 1)
	post := func(r selectResult) {
		select {
		case resCh <- r:
		default:
		}
	}

	var w fyne.Window
	fyne.Do(func() {
		w = s.app.NewWindow("Select label region")
		area := newSelectArea(func(x, y, width, height int) {
			post(selectResult{region: screenshot.Region{
				X:      bounds.Min.X + x,
				Y:      bounds.Min.Y + y,
				Width:  width,
				Height: height,
			}})
			w.Close()
		})
		w.SetContent(area)
		w.SetPadded(false)
		w.SetFullScreen(true)
		w.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
			if k.Name == fyne.KeyEscape {
				post(selectResult{cancelled: true})
				w.Close()
			}
		})
		w.SetOnClosed(func() {
			post(selectResult{cancelled: true})
		})
		w.Show()
	})

	select {
	case r := <-resCh:
		return r.region, r.cancelled, nil
	case <-ctx.Done():
		fyne.Do(func() {
			if w != nil {
				w.Close()
			}
		})
		return screenshot.Region{}, true, nil
	}
}

// selectArea is the drag-to-select widget filling the overlay window.
type selectArea struct {
	widget.BaseWidget

	backdrop *canvas.Rectangle
	box      *canvas.Rectangle

	start    fyne.Position
	current  fyne.Position
	dragging bool

	onDone func(x, y, width, height int)
}

func newSelectArea(onDone func(x, y, width, height int)) *selectArea {
	a := &selectArea{
		backdrop: canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: 60}),
		box:      canvas.NewRectangle(color.NRGBA{R: 0, G: 120, B: 212, A: 80}),
		onDone:   onDone,
	}
	a.box.StrokeColor = color.NRGBA{R: 0, G: 120, B: 212, A: 255}
	a.box.StrokeWidth = 1.5
	a.box.Hide()
	a.ExtendBaseWidget(a)
	return a
}

func (a *selectArea) CreateRenderer() fyne.WidgetRenderer {
	return &selectAreaRenderer{area: a}
}

func (a *selectArea) Dragged(ev *fyne.DragEvent) {
	if !a.dragging {
		a.dragging = true
		a.start = ev.Position
		a.box.Show()
	}
	a.current = ev.Position
	a.updateBox()
}

func (a *selectArea) DragEnd() {
	if !a.dragging {
		return
	}
	a.dragging = false
	x, y, w, h := a.rect()
	if a.onDone != nil {
		a.onDone(x, y, w, h)
	}
}

func (a *selectArea) rect() (x, y, w, h int) {
	x1, y1 := a.start.X, a.start.Y
	x2, y2 := a.current.X, a.current.Y
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return int(x1), int(y1), int(x2 - x1), int(y2 - y1)
}

func (a *selectArea) updateBox() {
	x, y, w, h := a.rect()
	a.box.Move(fyne.NewPos(float32(x), float32(y)))
	a.box.Resize(fyne.NewSize(float32(w), float32(h)))
	canvas.Refresh(a.box)
}

type selectAreaRenderer struct {
	area *selectArea
}

func (r *selectAreaRenderer) Layout(size fyne.Size) {
	r.area.backdrop.Resize(size)
}

func (r *selectAreaRenderer) MinSize() fyne.Size {
	return fyne.NewSize(32, 32)
}

func (r *selectAreaRenderer) Refresh() {
	canvas.Refresh(r.area.backdrop)
	canvas.Refresh(r.area.box)
}

func (r *selectAreaRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.area.backdrop, r.area.box}
}

func (r *selectAreaRenderer) Destroy() {}
