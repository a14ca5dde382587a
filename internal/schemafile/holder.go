package schemafile

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to a compiled schema with hot reload
// support. Every reload compiles a fresh Registry, so readers holding the
// previous Schema keep a consistent view.
type Holder struct {
	mu       sync.RWMutex
	schema   *Schema
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Schema)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads and compiles the schema file at path.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	s, err := Load(path, logger)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		schema: s,
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current schema (thread-safe).
func (h *Holder) Get() *Schema {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.schema
}

// Path returns the absolute path of the watched file.
func (h *Holder) Path() string { return h.path }

// Reload reloads the schema from disk.
// Returns error if loading fails (keeps old schema).
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading schema")

	next, err := Load(h.path, h.logger)
	if err != nil {
		h.logger.Error().Err(err).Msg("schema reload failed, keeping old schema")
		return fmt.Errorf("reload schema: %w", err)
	}

	h.mu.Lock()
	prev := h.schema
	h.schema = next
	listeners := slices.Clone(h.onChange)
	h.mu.Unlock()

	h.logChanges(prev, next)

	for _, fn := range listeners {
		fn(next)
	}

	h.logger.Info().Msg("schema reloaded successfully")
	return nil
}

// OnChange registers a callback to be called after a successful reload.
func (h *Holder) OnChange(fn func(*Schema)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile starts watching the schema file for changes.
// Changes trigger automatic reload.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory (more reliable for editors that do atomic saves)
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching schema file for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading schema")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop stops watching for file changes and signals. Safe to call twice.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			// atomic save = create
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) logChanges(prev, next *Schema) {
	if len(prev.Types()) != len(next.Types()) {
		h.logger.Info().
			Int("old", len(prev.Types())).
			Int("new", len(next.Types())).
			Msg("type count changed")
	}
	if prev.file.Options != next.file.Options {
		h.logger.Info().
			Interface("old", prev.file.Options).
			Interface("new", next.file.Options).
			Msg("schema options changed")
	}
}
