package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher watches the directory holding the previewed file and calls its
// callback after a debounce window. Editors write files with rename-and-
// replace tricks, so the parent directory is watched rather than the file
// itself, and events are filtered by name.
type watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	mu   sync.Mutex
	file string // absolute path of the watched file
	dir  string // its parent, the actual fsnotify target
}

func newWatcher(debounce time.Duration, onChange func(), logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// watch switches the watched file, replacing any previous watch target.
func (w *watcher) watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dir == dir {
		w.file = abs
		return nil
	}

	if w.dir != "" {
		// Best effort: the old directory may already be gone.
		_ = w.fsw.Remove(w.dir)
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.file, w.dir = abs, dir
	return nil
}

func (w *watcher) matches(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file != "" && name == w.file
}

// run processes events until ctx is cancelled. Rapid Write/Create bursts
// for the watched file collapse into a single onChange call per debounce
// window.
func (w *watcher) run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-timerCh:
			if _, err := os.Stat(w.currentFile()); err == nil {
				w.onChange()
			}

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matches(ev.Name) {
				continue
			}
			w.logger.Debug("preview: file changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("preview: watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *watcher) currentFile() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file
}

// readDocument reads the previewed file from disk.
func readDocument(path string) ([]byte, error) {
	return os.ReadFile(path)
}
