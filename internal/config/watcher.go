package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file's directory and reloads it on write,
// handing the new Config to a caller-supplied callback. Validation
// failures are reported to a separate error callback rather than applied.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool

	onReload func(*Config)
	onError  func(error)
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		path:    path,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the callback invoked with the newly loaded,
// validated config after the file changes.
func (w *Watcher) SetReloadCallback(cb func(*Config)) {
	w.onReload = cb
}

// SetErrorCallback sets the callback invoked when a reload fails to parse
// or validate; the previous config is left in effect.
func (w *Watcher) SetErrorCallback(cb func(error)) {
	w.onError = cb
}

// Start begins watching the config file's directory for writes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("config file changed, reloading", "path", w.path)
				cfg, err := Load(w.path)
				if err != nil {
					w.logger.Warn("failed to reload config", "error", err)
					if w.onError != nil {
						w.onError(err)
					}
					continue
				}
				if w.onReload != nil {
					w.onReload(cfg)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
