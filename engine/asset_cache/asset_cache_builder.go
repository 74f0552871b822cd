package asset_cache

import (
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

// AssetCacheBuilderOption is a functional option for configuring an AssetCache via NewAssetCache.
type AssetCacheBuilderOption func(*assetCache)

// WithParser is an option builder that sets the Parser used to turn sources into packets.
//
// Parameters:
//   - p: the parser
//
// Returns:
//   - AssetCacheBuilderOption: a function that applies the parser option to a cache
func WithParser(p pose.Parser) AssetCacheBuilderOption {
	return func(c *assetCache) {
		c.parser = p
	}
}

// WithSearchDirs is an option builder that sets the directories relative keys are resolved
// against when they do not exist as given.
//
// Parameters:
//   - dirs: the search directories, tried in order
//
// Returns:
//   - AssetCacheBuilderOption: a function that applies the search dirs option to a cache
func WithSearchDirs(dirs ...string) AssetCacheBuilderOption {
	return func(c *assetCache) {
		c.searchDirs = append(c.searchDirs, dirs...)
	}
}

// WithLogger is an option builder that sets the cache's logger.
func WithLogger(l logging.Logger) AssetCacheBuilderOption {
	return func(c *assetCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAsset is an option builder that pre-populates the cache with a parsed packet.
//
// Parameters:
//   - key: the cache key
//   - packet: the parsed packet
//
// Returns:
//   - AssetCacheBuilderOption: a function that applies the asset option to a cache
func WithAsset(key string, packet pose.Packet) AssetCacheBuilderOption {
	return func(c *assetCache) {
		if key, err := NormalizeKey(key); err == nil {
			c.assets[key] = newAssetHandle(key, "", packet)
		}
	}
}
