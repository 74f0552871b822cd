package creature

import (
	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/compositor"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"github.com/Carmen-Shannon/oxy-creature/engine/skeleton"
)

// CreatureBuilderOption is a functional option for configuring a Creature via NewCreature.
type CreatureBuilderOption func(*creature)

// WithCache is an option builder that sets the asset cache Init loads through. Without it the
// process-wide cache from asset_cache.Default is used.
//
// Parameters:
//   - cache: the asset cache
//
// Returns:
//   - CreatureBuilderOption: a function that applies the cache option to a creature
func WithCache(cache asset_cache.AssetCache) CreatureBuilderOption {
	return func(c *creature) {
		c.cache = cache
	}
}

// WithAsset is an option builder that sets the asset path key loaded by Init.
//
// Parameters:
//   - key: the asset key, resolved against the cache's search dirs
//
// Returns:
//   - CreatureBuilderOption: a function that applies the asset option to a creature
func WithAsset(key string) CreatureBuilderOption {
	return func(c *creature) {
		c.assetKey = key
		c.source = nil
		c.inline = false
	}
}

// WithSource is an option builder that loads the asset from an inline source under key.
//
// Parameters:
//   - key: the cache key for the source
//   - src: the raw asset source, rejected by Init when empty
//
// Returns:
//   - CreatureBuilderOption: a function that applies the source option to a creature
func WithSource(key string, src []byte) CreatureBuilderOption {
	return func(c *creature) {
		c.assetKey = key
		c.source = src
		c.inline = true
	}
}

// WithStartAnimation is an option builder that sets the clip activated by Init. An unknown or
// empty name falls back to the first clip.
func WithStartAnimation(name string) CreatureBuilderOption {
	return func(c *creature) {
		c.startAnimation = name
	}
}

// WithLooping is an option builder that sets whether the active clip wraps.
func WithLooping(loop bool) CreatureBuilderOption {
	return func(c *creature) {
		c.looping = loop
	}
}

// WithPlaying is an option builder that sets whether playback starts enabled.
func WithPlaying(play bool) CreatureBuilderOption {
	return func(c *creature) {
		c.playing = play
	}
}

// WithSmoothTransitions is an option builder that enables auto-blending from the start.
func WithSmoothTransitions(smooth bool) CreatureBuilderOption {
	return func(c *creature) {
		c.smooth = smooth
	}
}

// WithTimeScale is an option builder that overrides the solver's frames per second. Non-positive
// values keep the solver default.
func WithTimeScale(scale float32) CreatureBuilderOption {
	return func(c *creature) {
		c.timeScale = scale
	}
}

// WithOverlapDelta is an option builder that sets the depth step between regions.
//
// Parameters:
//   - delta: the z step
//
// Returns:
//   - CreatureBuilderOption: a function that applies the overlap delta to a creature
func WithOverlapDelta(delta float32) CreatureBuilderOption {
	return func(c *creature) {
		c.regionOptions = append(c.regionOptions, compositor.WithOverlapDelta(delta))
	}
}

// WithBoneFactors is an option builder that sets the bone transform scale factors.
//
// Parameters:
//   - lengthFactor: bone length to x scale
//   - size: y and z scale
//
// Returns:
//   - CreatureBuilderOption: a function that applies the bone factors to a creature
func WithBoneFactors(lengthFactor, size float32) CreatureBuilderOption {
	return func(c *creature) {
		c.boneOptions = append(c.boneOptions, skeleton.WithLengthFactor(lengthFactor), skeleton.WithSize(size))
	}
}

// WithRegionOrderTrack is an option builder that replaces the asset's own region-order metadata.
func WithRegionOrderTrack(track pose.RegionOrderTrack) CreatureBuilderOption {
	return func(c *creature) {
		c.trackOverride = track
	}
}

// WithEditorMode is an option builder that renders an untinted reference mesh.
func WithEditorMode(editor bool) CreatureBuilderOption {
	return func(c *creature) {
		c.editor = editor
	}
}

// WithRegionColors is an option builder that toggles the regions' tint channels. Defaults to true.
func WithRegionColors(enabled bool) CreatureBuilderOption {
	return func(c *creature) {
		c.regionColors = enabled
	}
}

// WithAnchorPoints is an option builder that applies the active clip's anchor point from Init.
func WithAnchorPoints(use bool) CreatureBuilderOption {
	return func(c *creature) {
		c.anchors = use
	}
}

// WithMeshModifier is an option builder that attaches a post-process hook, initialized by Init.
func WithMeshModifier(m draw_buffer.MeshModifier) CreatureBuilderOption {
	return func(c *creature) {
		c.modifier = m
	}
}

// WithBaseTransform is an option builder that sets the instance's world transform.
func WithBaseTransform(t skeleton.Transform) CreatureBuilderOption {
	return func(c *creature) {
		c.base = t
	}
}

// WithLogger is an option builder that sets the logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - CreatureBuilderOption: a function that applies the logger option to a creature
func WithLogger(l logging.Logger) CreatureBuilderOption {
	return func(c *creature) {
		if l != nil {
			c.logger = l
		}
	}
}
