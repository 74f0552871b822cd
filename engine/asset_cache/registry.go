package asset_cache

import "sync"

var (
	registryMu sync.Mutex
	registry   AssetCache
)

// Init creates the process-wide cache. If one already exists it is returned unchanged and the
// options are ignored.
//
// Parameters:
//   - options: options applied to a newly created cache
//
// Returns:
//   - AssetCache: the process-wide cache
func Init(options ...AssetCacheBuilderOption) AssetCache {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry == nil {
		registry = NewAssetCache(options...)
	}
	return registry
}

// Default returns the process-wide cache, or nil before Init.
func Default() AssetCache {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry
}

// Teardown unloads everything in the process-wide cache and forgets it. A later Init starts over.
func Teardown() {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry != nil {
		registry.Clear()
		registry = nil
	}
}
