package catalog

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the catalog when fixture files change on disk
type Watcher struct {
	catalog *Catalog
	watcher *fsnotify.Watcher
}

// debounce window so an editor's write-then-rename only reloads once
const reloadDebounce = 500 * time.Millisecond

// NewWatcher starts watching the catalog's fixtures directory
func NewWatcher(c *Catalog) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{catalog: c, watcher: fsw}
	go w.watch()

	if err := fsw.Add(c.dir); err != nil {
		fsw.Close()
		return nil, err
	}

	c.logger.WithField("fixtures_dir", c.dir).Info("Fixtures watcher started")
	return w, nil
}

// watch selects on watcher channels and schedules debounced reloads
func (w *Watcher) watch() {
	var reload *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isFixtureEvent(event) {
				continue
			}
			if reload != nil {
				reload.Stop()
			}
			reload = time.AfterFunc(reloadDebounce, func() {
				if err := w.catalog.Reload(); err != nil {
					w.catalog.logger.WithError(err).Error("Fixture reload failed")
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.catalog.logger.WithError(err).Error("Fixtures watcher error")
		}
	}
}

// Close stops the watcher (idempotent)
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// isFixtureEvent filters for writes to the JSON fixture files
func isFixtureEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
