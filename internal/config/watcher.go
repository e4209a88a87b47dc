package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/leo/tmuxcc/internal/logging"
)

// Watcher reloads the config file on write or create and publishes the
// new value on the channel returned by Updates. A reload that has not been
// received yet is replaced by a newer one.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	updates chan Config
}

// WatchFile starts watching path for changes. Returns nil, nil if path is
// empty (no user config file to watch).
func WatchFile(path string) (*Watcher, error) {
	if path == "" {
		return nil, nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{watcher: fw, path: path, updates: make(chan Config, 1)}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadFrom(w.path)
			if err != nil {
				logging.L().Warn().Err(err).Str("path", w.path).Msg("config reload failed, keeping previous config")
				continue
			}
			select {
			case w.updates <- cfg:
			default:
				// drop the stale pending reload, the newer one below will replace it
				select {
				case <-w.updates:
				default:
				}
				w.updates <- cfg
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.L().Warn().Err(err).Msg("config watcher error")
		}
	}
}

// Updates returns the channel of reloaded configs.
func (w *Watcher) Updates() <-chan Config { return w.updates }

// Close stops the watcher.
func (w *Watcher) Close() error { return w.watcher.Close() }
