package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of file events (editors often write twice).
const DefaultDebounce = 100 * time.Millisecond

// Loader implements ports.MachineLoader and ports.Watchable over a directory
// of definition files. Each *.yaml, *.yml or *.json file is one machine; the
// document's name field wins over the file name.
//
// Files are read on every GetMachine, so edits are picked up without a
// restart; Watch only tells callers when to refresh derived state.
type Loader struct {
	Dir      string
	Debounce time.Duration
	Logger   *slog.Logger
}

// NewLoader creates a Loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{
		Dir:      dir,
		Debounce: DefaultDebounce,
		Logger:   logging.NewNop(),
	}
}

// scan parses every definition file in the directory. Unparseable files are
// skipped with a warning so that one broken file does not hide the others.
func (l *Loader) scan() (map[string]*schema.Definition, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read machines directory: %w", err)
	}

	defs := make(map[string]*schema.Definition)
	for _, e := range entries {
		if e.IsDir() || !schema.IsDefinitionFile(e.Name()) {
			continue
		}
		def, err := schema.LoadFile(filepath.Join(l.Dir, e.Name()))
		if err != nil {
			l.logger().Warn("skipping machine definition", "file", e.Name(), "err", err)
			continue
		}
		if _, dup := defs[def.Name]; dup {
			l.logger().Warn("duplicate machine name", "name", def.Name, "file", e.Name())
			continue
		}
		defs[def.Name] = def
	}
	return defs, nil
}

// GetMachine returns the definition called name.
func (l *Loader) GetMachine(name string) (*schema.Definition, error) {
	defs, err := l.scan()
	if err != nil {
		return nil, err
	}
	def, ok := defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return def, nil
}

// ListMachines returns the names of every parseable definition.
func (l *Loader) ListMachines() ([]string, error) {
	defs, err := l.scan()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Watch signals on the returned channel after definition files change.
// Events are debounced; the channel is closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(l.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.Dir, err)
	}

	debounce := l.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	out := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()

		var (
			mu     sync.Mutex
			timer  *time.Timer
			closed bool
		)
		defer func() {
			mu.Lock()
			defer mu.Unlock()
			closed = true
			if timer != nil {
				timer.Stop()
			}
			close(out)
		}()

		notify := func() {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			select {
			case out <- struct{}{}:
			default: // a signal is already pending
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !schema.IsDefinitionFile(event.Name) || event.Op == fsnotify.Chmod {
					continue
				}
				l.logger().Debug("definition changed", "path", event.Name, "op", event.Op.String())

				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, notify)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger().Error("file watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return logging.NewNop()
	}
	return l.Logger
}
