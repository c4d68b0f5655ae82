package params

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/richinsley/gogradient/logging"
)

// Watch reloads path into s whenever the file is written or replaced. Each
// reload re-runs Initialize from the defaults with base and then the file
// applied, so the file wins on shared keys. A file that fails to decode
// leaves the current snapshot in place. Watch returns once the watcher is
// set up and stops when ctx is cancelled.
func Watch(ctx context.Context, path string, base Overrides, s *Store) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return err
	}
	// Watch the directory: editors often replace the file with a rename.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	log := logging.Logger()
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				o, err := LoadOverrides(abs)
				if err != nil {
					log.Warn("keeping current parameters", "path", abs, "error", err)
					continue
				}
				s.Reinitialize(Merge(base, o))
				log.Info("parameters reinitialized", "path", abs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", "error", err)
			}
		}
	}()
	return nil
}
