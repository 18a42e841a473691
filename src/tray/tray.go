// Package tray is the resident system-tray surface: capture trigger, profile
// editor entry point, about box and quit.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Config wires menu actions. Callbacks run on the tray's own goroutine and
// must hand real work off (OnCapture typically calls the event loop's
// Activate, which returns immediately).
type Config struct {
	Title   string
	Tooltip string

	OnCapture     func()
	OnEditProfile func()
	OnAbout       func()
	OnExit        func()
}

// Icon is the running tray instance. Run blocks until Quit, so callers start
// it on a dedicated goroutine.
type Icon struct {
	cfg     Config
	mu      sync.Mutex
	tooltip string
	ready   bool
}

func New(cfg Config) (*Icon, error) {
	return &Icon{cfg: cfg, tooltip: cfg.Tooltip}, nil
}

func (i *Icon) Run() {
	systray.Run(i.onReady, i.onExit)
}

func (i *Icon) Destroy() {
	systray.Quit()
}

// UpdateTooltip changes the hover text, used to show capture-in-progress.
func (i *Icon) UpdateTooltip(text string) {
	i.mu.Lock()
	i.tooltip = text
	ready := i.ready
	i.mu.Unlock()
	if ready {
		systray.SetTooltip(text)
	}
}

func (i *Icon) onReady() {
	systray.SetIcon(getIcon())
	systray.SetTitle(i.cfg.Title)
	i.mu.Lock()
	i.ready = true
	tooltip := i.tooltip
	i.mu.Unlock()
	systray.SetTooltip(tooltip)

	mCapture := systray.AddMenuItem("Capture now", "Select a screen region and copy the matching profile value")
	mEdit := systray.AddMenuItem("Edit profile...", "Open the profile editor")
	systray.AddSeparator()
	mAbout := systray.AddMenuItem("About", "About Profile Clip")
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				log.Printf("Tray: capture requested")
				if i.cfg.OnCapture != nil {
					i.cfg.OnCapture()
				}
			case <-mEdit.ClickedCh:
				log.Printf("Tray: profile editor requested")
				if i.cfg.OnEditProfile != nil {
					i.cfg.OnEditProfile()
				}
			case <-mAbout.ClickedCh:
				if i.cfg.OnAbout != nil {
					i.cfg.OnAbout()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func (i *Icon) onExit() {
	if i.cfg.OnExit != nil {
		i.cfg.OnExit()
	}
}

func getIcon() []byte {
	// TODO: embed an .ico asset; systray ignores a nil icon.
	return nil
}
