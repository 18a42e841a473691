// Package hotkey registers the global activation shortcut. Registration
// failure is not fatal: the caller falls back to manual activation via the
// tray menu or the remote trigger.
package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// ErrRegistration reports that the configured combination could not be bound
// to the environment (unknown key names, empty combo).
var ErrRegistration = errors.New("hotkey registration failed")

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Listen binds combo (e.g. "Alt+C") and invokes callback each time the full
// combination is pressed. The callback runs on the hook goroutine and must
// not block; typically it posts into the event loop. Listen returns once the
// listener goroutine is running, or an error when the combo cannot be bound.
func Listen(combo string, callback func()) error {
	keys := parseHotkey(combo)
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty combination %q", ErrRegistration, combo)
	}

	var states []keyState
	for _, name := range keys {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			return fmt.Errorf("%w: unknown key %q in %q", ErrRegistration, name, combo)
		}
		states = append(states, keyState{name: name, rawcodes: rawcodes})
	}

	log.Printf("Hotkey: listening for %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Hotkey: panic in hook goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("Hotkey: gohook.Start() returned nil channel")
			return
		}

		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				markPressed(states, ev.Rawcode, true)
				if allPressed(states) {
					log.Printf("Hotkey: combination %s detected", combo)
					resetStates(states)
					mu.Unlock()
					if callback != nil {
						callback()
					}
					continue
				}
				mu.Unlock()
			case gohook.KeyUp:
				mu.Lock()
				markPressed(states, ev.Rawcode, false)
				mu.Unlock()
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()

	return nil
}

func markPressed(states []keyState, rawcode uint16, pressed bool) {
	for i := range states {
		for _, rc := range states[i].rawcodes {
			if rc == rawcode {
				states[i].pressed = pressed
				return
			}
		}
	}
}

func allPressed(states []keyState) bool {
	for i := range states {
		if !states[i].pressed {
			return false
		}
	}
	return true
}

func resetStates(states []keyState) {
	for i := range states {
		states[i].pressed = false
	}
}

// parseHotkey splits "Ctrl+Alt+Q" into normalized lowercase key names.
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// keyNameToRawcodes maps a key name to its virtual key codes; modifiers get
// both left and right variants.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	case "backspace":
		return []uint16{8}
	case "delete", "del":
		return []uint16{46}
	case "insert", "ins":
		return []uint16{45}
	case "home":
		return []uint16{36}
	case "end":
		return []uint16{35}
	case "pageup", "pgup":
		return []uint16{33}
	case "pagedown", "pgdn":
		return []uint16{34}
	case "left":
		return []uint16{37}
	case "up":
		return []uint16{38}
	case "right":
		return []uint16{39}
	case "down":
		return []uint16{40}
	}

	// Letters a-z: VK 0x41-0x5A.
	if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return []uint16{uint16(name[0] - 'a' + 65)}
	}
	// Digits 0-9: VK 0x30-0x39.
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return []uint16{uint16(name[0] - '0' + 48)}
	}
	// Function keys f1-f24: VK 112+.
	if strings.HasPrefix(name, "f") {
		var n int
		if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}

	log.Printf("Hotkey: unknown key name %q", name)
	return nil
}
