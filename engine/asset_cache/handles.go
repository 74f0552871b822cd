package asset_cache

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

// AssetHandle is a loaded animation source. Identity is stable for as long as the asset stays
// loaded; a reload after UnloadAsset yields a new handle.
type AssetHandle struct {
	key    string
	path   string
	packet pose.Packet
	refs   atomic.Int32
	valid  atomic.Bool
}

func newAssetHandle(key, path string, packet pose.Packet) *AssetHandle {
	h := &AssetHandle{key: key, path: path, packet: packet}
	h.valid.Store(true)
	return h
}

// Key returns the normalized cache key.
func (h *AssetHandle) Key() string { return h.key }

// Path returns the resolved file path, or "" for inline sources.
func (h *AssetHandle) Path() string { return h.path }

// Packet returns the parsed template shared by every clip of the asset.
func (h *AssetHandle) Packet() pose.Packet { return h.packet }

// Refs returns the number of cached clips drawn from the asset.
func (h *AssetHandle) Refs() int { return int(h.refs.Load()) }

// Valid reports whether the asset is still loaded.
func (h *AssetHandle) Valid() bool { return h.valid.Load() }

// AnimationClip is one named animation of a loaded asset, shared by every instance using it.
type AnimationClip struct {
	asset *AssetHandle
	clip  pose.Clip
	valid atomic.Bool
}

func newAnimationClip(asset *AssetHandle, clip pose.Clip) *AnimationClip {
	c := &AnimationClip{asset: asset, clip: clip}
	c.valid.Store(true)
	asset.refs.Add(1)
	return c
}

// Asset returns the owning asset.
func (c *AnimationClip) Asset() *AssetHandle { return c.asset }

// Name returns the clip name.
func (c *AnimationClip) Name() string { return c.clip.Name() }

// Clip returns the parsed clip handed to solvers.
func (c *AnimationClip) Clip() pose.Clip { return c.clip }

// StartTime returns the clip's first frame.
func (c *AnimationClip) StartTime() float32 { return c.clip.StartTime() }

// EndTime returns the clip's last frame.
func (c *AnimationClip) EndTime() float32 { return c.clip.EndTime() }

// TimeScale returns the authored frames per second.
func (c *AnimationClip) TimeScale() float32 { return c.clip.TimeScale() }

// SetTimeRange narrows the clip for every instance sharing it.
func (c *AnimationClip) SetTimeRange(start, end float32) {
	c.clip.SetTimeRange(start, end)
}

// Valid reports whether the clip's asset is still loaded.
func (c *AnimationClip) Valid() bool { return c.valid.Load() }
