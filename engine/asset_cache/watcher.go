package asset_cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the files behind path-loaded assets. It never unloads anything on
// its own; callers decide whether to unload and reload.
type Watcher struct {
	mu      sync.Mutex
	cache   AssetCache
	watcher *fsnotify.Watcher
	logger  logging.Logger
	paths   map[string]string // absolute file path -> asset key
	dirs    map[string]struct{}
}

// NewWatcher creates a Watcher for assets of cache.
//
// Parameters:
//   - cache: the cache whose assets are watched
//   - l: the logger, logging.Default() when nil
//
// Returns:
//   - *Watcher: the watcher
//   - error: error if the file watcher cannot be created
func NewWatcher(cache AssetCache, l logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("asset_cache: failed to create file watcher: %w", err)
	}
	if l == nil {
		l = logging.Default()
	}
	return &Watcher{
		cache:   cache,
		watcher: fw,
		logger:  l.WithComponent("asset_watcher"),
		paths:   make(map[string]string),
		dirs:    make(map[string]struct{}),
	}, nil
}

// Add starts watching a loaded asset. Inline assets have no file and are rejected.
//
// Parameters:
//   - key: the asset key
//
// Returns:
//   - error: ErrAssetNotLoaded, or error if the directory cannot be watched
func (w *Watcher) Add(key string) error {
	h := w.cache.Asset(key)
	if h == nil {
		return fmt.Errorf("%w: %s", ErrAssetNotLoaded, key)
	}
	if h.Path() == "" {
		return fmt.Errorf("asset_cache: %s has no backing file", h.Key())
	}
	abs, err := filepath.Abs(h.Path())
	if err != nil {
		return fmt.Errorf("asset_cache: failed to resolve %s: %w", h.Path(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// Editors often replace files, so the directory is watched rather than the file.
	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; !ok {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("asset_cache: failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.paths[abs] = h.Key()
	return nil
}

// Run delivers the key of every changed asset to onChange until ctx is done or Close is called.
//
// Parameters:
//   - ctx: stops the loop when done
//   - onChange: called from the Run goroutine with the changed asset key
func (w *Watcher) Run(ctx context.Context, onChange func(key string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			key, ok := w.paths[abs]
			w.mu.Unlock()
			if ok {
				w.logger.Info("asset changed", logging.WithField("asset", key))
				onChange(key)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", logging.WithField("error", err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
