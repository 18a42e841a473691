// Package notification delivers fire-and-forget outcome toasts. Sending
// never blocks the pipeline: delivery happens on its own goroutine.
package notification

import (
	"log"

	"fyne.io/fyne/v2"
)

type Notifier struct {
	app fyne.App
}

// New wraps a fyne app for system notifications. A nil app degrades to
// log-only delivery (headless tests, CLI mode).
func New(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

func (n *Notifier) Notify(title, message string) {
	log.Printf("Notify: %s: %s", title, message)
	if n.app == nil {
		return
	}
	go n.app.SendNotification(fyne.NewNotification(title, message))
}
