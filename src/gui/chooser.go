package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"profile-clip/src/logutil"
	"profile-clip/src/match"
)

// Chooser presents the ranked candidate list when more than one distinct
// value survives matching. Closing the window dismisses without a pick.
type Chooser struct {
	app fyne.App
}

func NewChooser(app fyne.App) *Chooser {
	return &Chooser{app: app}
}

func (c *Chooser) Present(ctx context.Context, candidates []match.Candidate) (match.Candidate, bool, error) {
	if c.app == nil {
		return match.Candidate{}, true, errNoApp
	}

	resCh := make(chan int, 1)
	post := func(i int) {
		select {
		case resCh <- i:
		default:
		}
	}

	var w fyne.Window
	fyne.Do(func() {
		w = c.app.NewWindow("Choose value to copy")
		list := widget.NewList(
			func() int { return len(candidates) },
			func() fyne.CanvasObject { return widget.NewLabel("template") },
			func(id widget.ListItemID, obj fyne.CanvasObject) {
				cand := candidates[id]
				obj.(*widget.Label).SetText(fmt.Sprintf("%s: %s  (%.0f%%)",
					cand.Label, logutil.Truncate(cand.Value, 32), cand.Score*100))
			},
		)
		list.OnSelected = func(id widget.ListItemID) {
			post(int(id))
			w.Close()
		}
		header := widget.NewLabel(fmt.Sprintf("%d possible values, click one to copy:", len(candidates)))
		w.SetContent(container.NewBorder(header, nil, nil, nil, list))
		w.Resize(fyne.NewSize(420, 320))
		w.CenterOnScreen()
		w.SetOnClosed(func() { post(-1) })
		w.Show()
		w.RequestFocus()
	})

	select {
	case i := <-resCh:
		if i < 0 {
			return match.Candidate{}, true, nil
		}
		return candidates[i], false, nil
	case <-ctx.Done():
		fyne.Do(func() {
			if w != nil {
				w.Close()
			}
		})
		return match.Candidate{}, true, nil
	}
}
