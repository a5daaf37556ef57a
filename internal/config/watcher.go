package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"legalshield/internal/logging"
)

// debounceWindow coalesces the write bursts editors produce when saving.
const debounceWindow = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk, so a running TUI
// picks up backend URL or theme edits without a restart.
type Watcher struct {
	workspace string
	fsw       *fsnotify.Watcher
	onChange  func(*Config)
	done      chan struct{}
	log       *logging.Logger
}

// Watch starts watching the workspace config file. onChange is invoked from
// the watcher goroutine with the freshly loaded config after each change.
func Watch(workspace string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a watch registered on the file itself.
	dir := filepath.Dir(Path(workspace))
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		workspace: workspace,
		fsw:       fsw,
		onChange:  onChange,
		done:      make(chan struct{}),
		log:       logging.Get(logging.CategoryBoot),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	target := Path(w.workspace)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(target) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, w.reload)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.workspace)
	if err != nil {
		w.log.Warn("config reload failed: %v", err)
		return
	}
	w.log.Info("config reloaded")
	w.onChange(cfg)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
