// Package asset_cache de-duplicates loaded animation sources and their clips. Entries are only
// ever removed by an explicit unload.
package asset_cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LoadStatus distinguishes a fresh insert from a cache hit.
type LoadStatus int

const (
	// StatusLoaded means this call parsed and inserted the asset.
	StatusLoaded LoadStatus = iota
	// StatusAlreadyLoaded means the key was already cached, or another caller won the race.
	StatusAlreadyLoaded
)

func (s LoadStatus) String() string {
	if s == StatusLoaded {
		return "loaded"
	}
	return "already loaded"
}

var (
	// ErrAssetNotLoaded is returned when a clip is requested from an asset that is not cached.
	ErrAssetNotLoaded = errors.New("asset_cache: asset not loaded")
	// ErrEmptySource is returned when an inline load carries no data.
	ErrEmptySource = errors.New("asset_cache: empty source")
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("asset_cache: invalid key")
	// ErrNoParser is returned when a cache without a parser is asked to parse.
	ErrNoParser = errors.New("asset_cache: no parser configured")
)

type clipKey struct {
	asset string
	name  string
}

// assetCache is the implementation of the AssetCache interface.
type assetCache struct {
	mu sync.RWMutex

	parser     pose.Parser
	searchDirs []string
	logger     logging.Logger

	assets map[string]*AssetHandle
	clips  map[clipKey]*AnimationClip

	group singleflight.Group
}

// AssetCache defines the public-facing interface for loading and caching animation sources and
// the clips drawn from them. Safe for concurrent use.
type AssetCache interface {
	// LoadAsset parses the file identified by key and caches it. Relative keys that do not
	// exist as given are resolved against the configured search directories.
	// If the key is already cached, the cached handle is returned with StatusAlreadyLoaded.
	//
	// Parameters:
	//   - key: the asset file path
	//
	// Returns:
	//   - *AssetHandle: the cached handle
	//   - LoadStatus: whether this call inserted the asset
	//   - error: error if the key is invalid or parsing fails
	LoadAsset(key string) (*AssetHandle, LoadStatus, error)

	// LoadAssetSource parses an in-memory source and caches it under key. Both entry points
	// share one key space: whichever load inserts a key first is authoritative.
	//
	// Parameters:
	//   - key: the asset key
	//   - src: the raw source, must not be empty
	//
	// Returns:
	//   - *AssetHandle: the cached handle
	//   - LoadStatus: whether this call inserted the asset
	//   - error: ErrEmptySource, or error if parsing fails
	LoadAssetSource(key string, src []byte) (*AssetHandle, LoadStatus, error)

	// LoadClip returns the named clip of a cached asset, creating and caching it on first use.
	//
	// Parameters:
	//   - assetKey: the asset key
	//   - name: the clip name
	//
	// Returns:
	//   - *AnimationClip: the cached clip
	//   - error: ErrAssetNotLoaded, or error if the asset has no such clip
	LoadClip(assetKey, name string) (*AnimationClip, error)

	// UnloadAsset removes an asset and every clip drawn from it, invalidating their handles.
	//
	// Parameters:
	//   - key: the asset key
	//
	// Returns:
	//   - bool: false if the key was not cached
	UnloadAsset(key string) bool

	// Asset retrieves a cached asset. Returns nil if not found.
	Asset(key string) *AssetHandle

	// Clip retrieves a cached clip. Returns nil if not found.
	Clip(assetKey, name string) *AnimationClip

	// Assets returns the cached asset keys in sorted order.
	Assets() []string

	// Preload loads many path keys concurrently and returns the first error.
	//
	// Parameters:
	//   - ctx: cancels loads that have not started yet
	//   - keys: the asset paths
	//
	// Returns:
	//   - error: the first load error, or the context error
	Preload(ctx context.Context, keys ...string) error

	// Clear unloads everything.
	Clear()
}

var _ AssetCache = &assetCache{}

// NewAssetCache creates a new, empty AssetCache with the provided options applied.
//
// Parameters:
//   - options: a variadic list of AssetCacheBuilderOption functions to configure the cache
//
// Returns:
//   - AssetCache: the new cache
func NewAssetCache(options ...AssetCacheBuilderOption) AssetCache {
	c := &assetCache{
		mu:     sync.RWMutex{},
		assets: make(map[string]*AssetHandle),
		clips:  make(map[clipKey]*AnimationClip),
		logger: logging.Default(),
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.WithComponent("asset_cache")
	return c
}

// NormalizeKey returns the canonical form of an asset key.
//
// Parameters:
//   - key: the raw key
//
// Returns:
//   - string: the key with a clean, slash-separated path
//   - error: ErrInvalidKey for an empty key
func NormalizeKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (c *assetCache) lookup(key string) *AssetHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assets[key]
}

// insert stores h unless the key is already present, in which case the existing handle wins.
func (c *assetCache) insert(h *AssetHandle) (*AssetHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.assets[h.key]; ok {
		return existing, false
	}
	c.assets[h.key] = h
	return h, true
}

// load collapses concurrent first loads of one key into a single parse.
func (c *assetCache) load(key string, parse func() (*AssetHandle, error)) (*AssetHandle, LoadStatus, error) {
	if h := c.lookup(key); h != nil {
		return h, StatusAlreadyLoaded, nil
	}

	inserted := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		if h := c.lookup(key); h != nil {
			return h, nil
		}
		h, err := parse()
		if err != nil {
			return nil, err
		}
		h, inserted = c.insert(h)
		return h, nil
	})
	if err != nil {
		return nil, 0, err
	}
	if inserted {
		c.logger.Debug("asset loaded", logging.WithField("asset", key))
		return v.(*AssetHandle), StatusLoaded, nil
	}
	return v.(*AssetHandle), StatusAlreadyLoaded, nil
}

func (c *assetCache) LoadAsset(key string) (*AssetHandle, LoadStatus, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, 0, err
	}
	return c.load(key, func() (*AssetHandle, error) {
		if c.parser == nil {
			return nil, ErrNoParser
		}
		path, err := c.resolve(key)
		if err != nil {
			return nil, err
		}
		packet, err := c.parser.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("asset_cache: failed to load %s: %w", key, err)
		}
		return newAssetHandle(key, path, packet), nil
	})
}

func (c *assetCache) LoadAssetSource(key string, src []byte) (*AssetHandle, LoadStatus, error) {
	if len(src) == 0 {
		c.logger.Warn("rejected empty source", logging.WithField("asset", key))
		return nil, 0, ErrEmptySource
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, 0, err
	}
	return c.load(key, func() (*AssetHandle, error) {
		if c.parser == nil {
			return nil, ErrNoParser
		}
		packet, err := c.parser.ParseSource(key, src)
		if err != nil {
			return nil, fmt.Errorf("asset_cache: failed to parse %s: %w", key, err)
		}
		return newAssetHandle(key, "", packet), nil
	})
}

// resolve finds the file for key, trying it as given first and then under each search dir.
func (c *assetCache) resolve(key string) (string, error) {
	candidates := []string{filepath.FromSlash(key)}
	if !filepath.IsAbs(candidates[0]) {
		for _, dir := range c.searchDirs {
			candidates = append(candidates, filepath.Join(dir, candidates[0]))
		}
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("asset_cache: %s: %w", key, fs.ErrNotExist)
}

func (c *assetCache) LoadClip(assetKey, name string) (*AnimationClip, error) {
	key, err := NormalizeKey(assetKey)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	asset := c.assets[key]
	clip := c.clips[clipKey{key, name}]
	c.mu.RUnlock()

	if asset == nil {
		c.logger.Warn("asset not loaded", logging.WithField("asset", key), logging.WithField("clip", name))
		return nil, fmt.Errorf("%w: %s", ErrAssetNotLoaded, key)
	}
	if clip != nil {
		return clip, nil
	}

	parsed, err := asset.packet.Clip(name)
	if err != nil {
		return nil, fmt.Errorf("asset_cache: failed to load clip %s of %s: %w", name, key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.assets[key] != asset {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotLoaded, key)
	}
	if existing, ok := c.clips[clipKey{key, name}]; ok {
		return existing, nil
	}
	clip = newAnimationClip(asset, parsed)
	c.clips[clipKey{key, name}] = clip
	return clip, nil
}

func (c *assetCache) UnloadAsset(key string) bool {
	key, err := NormalizeKey(key)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unloadLocked(key)
}

func (c *assetCache) unloadLocked(key string) bool {
	asset, ok := c.assets[key]
	if !ok {
		return false
	}
	delete(c.assets, key)
	asset.valid.Store(false)

	for k, clip := range c.clips {
		if k.asset == key {
			clip.valid.Store(false)
			asset.refs.Add(-1)
			delete(c.clips, k)
		}
	}
	c.logger.Debug("asset unloaded", logging.WithField("asset", key))
	return true
}

func (c *assetCache) Asset(key string) *AssetHandle {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil
	}
	return c.lookup(key)
}

func (c *assetCache) Clip(assetKey, name string) *AnimationClip {
	key, err := NormalizeKey(assetKey)
	if err != nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clips[clipKey{key, name}]
}

func (c *assetCache) Assets() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.assets))
	for k := range c.assets {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (c *assetCache) Preload(ctx context.Context, keys ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, _, err := c.LoadAsset(key)
			return err
		})
	}
	return g.Wait()
}

func (c *assetCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.assets {
		c.unloadLocked(key)
	}
}
