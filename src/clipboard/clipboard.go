package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var writeMu sync.Mutex

func Init() error {
	return clipboard.Init()
}

// Write performs a mutex-guarded clipboard write so concurrent callers
// cannot interleave partial writes.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Read returns the current text clipboard content.
func Read() string {
	return string(clipboard.Read(clipboard.FmtText))
}

// Sink adapts the package to the dispatch.Sink interface.
type Sink struct{}

func (Sink) Write(text string) error { return Write(text) }
