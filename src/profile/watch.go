package profile

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever the backing file changes on disk and then
// invokes onChange. The returned stop function releases the watcher.
func (s *Store) Watch(onChange func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors commonly replace the file on save, which
	// drops a watch registered on the file itself.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return nil, err
	}

	target := filepath.Clean(s.path)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("Profile: reload after change failed: %v", err)
					continue
				}
				if onChange != nil {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Profile: watcher error: %v", err)
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}
