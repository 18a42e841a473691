package gui

import (
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"profile-clip/src/profile"
)

// Editor is the profile editing window. One value per line in the values
// entry; a field may carry several values.
type Editor struct {
	app   fyne.App
	store *profile.Store
}

func NewEditor(app fyne.App, store *profile.Store) *Editor {
	return &Editor{app: app, store: store}
}

// Show opens (or reopens) the editor window. Safe to call from any
// goroutine.
func (e *Editor) Show() {
	if e.app == nil {
		log.Printf("Editor: no fyne app, cannot open")
		return
	}
	fyne.Do(func() { e.build().Show() })
}

func (e *Editor) build() fyne.Window {
	w := e.app.NewWindow("Edit profile")

	fields := e.store.Fields()
	selected := -1

	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder("Field label")
	valuesEntry := widget.NewMultiLineEntry()
	valuesEntry.SetPlaceHolder("One value per line")

	var list *widget.List
	list = widget.NewList(
		func() int { return len(fields) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			f := fields[id]
			text := f.Label
			if len(f.Values) == 0 || (len(f.Values) == 1 && f.Values[0] == "") {
				text += " (empty)"
			}
			obj.(*widget.Label).SetText(text)
		},
	)

	reload := func() {
		fields = e.store.Fields()
		list.Refresh()
	}

	list.OnSelected = func(id widget.ListItemID) {
		selected = int(id)
		f := fields[id]
		labelEntry.SetText(f.Label)
		valuesEntry.SetText(strings.Join(f.Values, "\n"))
	}

	saveBtn := widget.NewButton("Save", func() {
		if selected < 0 {
			return
		}
		oldLabel := fields[selected].Label
		newLabel := strings.TrimSpace(labelEntry.Text)
		if newLabel == "" {
			dialog.ShowInformation("Invalid label", "The field label cannot be empty.", w)
			return
		}
		if newLabel != oldLabel {
			if err := e.store.Rename(oldLabel, newLabel); err != nil {
				dialog.ShowError(err, w)
				return
			}
		}
		if err := e.store.Set(newLabel, splitValues(valuesEntry.Text)); err != nil {
			dialog.ShowError(err, w)
			return
		}
		reload()
	})

	addBtn := widget.NewButton("Add field", func() {
		newLabel := strings.TrimSpace(labelEntry.Text)
		if newLabel == "" {
			dialog.ShowInformation("Invalid label", "Enter a label before adding.", w)
			return
		}
		if err := e.store.Set(newLabel, splitValues(valuesEntry.Text)); err != nil {
			dialog.ShowError(err, w)
			return
		}
		reload()
	})

	deleteBtn := widget.NewButton("Delete", func() {
		if selected < 0 {
			return
		}
		label := fields[selected].Label
		dialog.ShowConfirm("Delete field", "Delete "+label+"?", func(ok bool) {
			if !ok {
				return
			}
			if err := e.store.Delete(label); err != nil {
				dialog.ShowError(err, w)
				return
			}
			selected = -1
			labelEntry.SetText("")
			valuesEntry.SetText("")
			reload()
		}, w)
	})

	form := container.NewBorder(
		labelEntry,
		container.NewHBox(saveBtn, addBtn, deleteBtn),
		nil, nil,
		valuesEntry,
	)
	split := container.NewHSplit(list, form)
	split.SetOffset(0.35)

	w.SetContent(split)
	w.Resize(fyne.NewSize(560, 420))
	w.CenterOnScreen()
	return w
}

func splitValues(text string) []string {
	var values []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
