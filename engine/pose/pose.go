// Package pose declares the contracts consumed from the external pose engine: the parsed
// asset template, the per-instance solver that advances poses over time, and the read-only
// topology (points, indices, regions, bones) the compositors work on.
package pose

import "github.com/go-gl/mathgl/mgl32"

// Region is a named, contiguous range of mesh points and triangle indices with its own
// opacity and tint. Both ranges are inclusive.
type Region struct {
	Name       string
	ID         int
	StartPoint int
	EndPoint   int
	StartIndex int
	EndIndex   int

	// Opacity and tint channels are expressed in [0,100].
	Opacity float32
	Red     float32
	Green   float32
	Blue    float32
}

// NumPoints returns the number of points covered by the region.
func (r Region) NumPoints() int {
	return r.EndPoint - r.StartPoint + 1
}

// NumIndices returns the number of triangle indices covered by the region.
func (r Region) NumIndices() int {
	return r.EndIndex - r.StartIndex + 1
}

// Bone is a posed bone segment in world space, recomputed by the solver every update.
type Bone struct {
	Name       string
	Parent     string
	Children   []string
	WorldStart mgl32.Vec3
	WorldEnd   mgl32.Vec3
}

// Topology is the read-only view of the current pose. Slices returned by a Topology are owned by
// the solver and are only stable until its next Update.
type Topology interface {
	// NumPoints returns the number of mesh points.
	NumPoints() int

	// NumIndices returns the number of triangle indices.
	NumIndices() int

	// Indices returns the solver's triangle index buffer in natural region order.
	Indices() []uint32

	// Points returns the posed point positions, 3 floats per point.
	Points() []float32

	// UVs returns the texture coordinates, 2 floats per point.
	UVs() []float32

	// Regions returns the regions in natural order.
	Regions() []Region

	// Region looks up a region by name.
	//
	// Parameters:
	//   - name: the region name
	//
	// Returns:
	//   - Region: the region
	//   - bool: false when no region has that name
	Region(name string) (Region, bool)

	// Bones returns the posed bones in natural order.
	Bones() []Bone

	// Bone looks up a posed bone by name.
	//
	// Parameters:
	//   - name: the bone name
	//
	// Returns:
	//   - Bone: the bone
	//   - bool: false when no bone has that name
	Bone(name string) (Bone, bool)

	// RootBone returns the name of the root of the bone tree.
	RootBone() string
}

// Clip is one named animation parsed from a packet. Clips are shared between every instance
// drawing from the same asset, so SetTimeRange is visible to all of them.
type Clip interface {
	Name() string
	StartTime() float32
	EndTime() float32
	TimeScale() float32
	SetTimeRange(start, end float32)
}

// Solver is the per-instance pose manager. It is not safe for concurrent use; callers serialize
// access with their own guard.
type Solver interface {
	// Topology returns the current pose topology.
	Topology() Topology

	// Update advances the active animation by dt seconds, scaled by the time scale, and reposes.
	//
	// Parameters:
	//   - dt: elapsed time in seconds, may be zero to force a repose
	Update(dt float32)

	// RunTime returns the current animation clock in frames.
	RunTime() float32

	// SetRunTime moves the animation clock without reposing.
	SetRunTime(t float32)

	// ResetToStartTimes moves every clip clock back to its start time.
	ResetToStartTimes()

	// TimeScale returns the number of animation frames advanced per second.
	TimeScale() float32

	// SetTimeScale sets the number of animation frames advanced per second.
	SetTimeScale(scale float32)

	// AddAnimation registers a clip with the solver.
	AddAnimation(clip Clip)

	// HasAnimation reports whether a clip of that name has been registered.
	HasAnimation(name string) bool

	// Clip returns a registered clip.
	Clip(name string) (Clip, bool)

	// ActiveAnimation returns the active clip name, or "" if none is active.
	ActiveAnimation() string

	// SetActiveAnimation hard-switches to the named clip.
	//
	// Returns:
	//   - bool: false when the clip is not registered
	SetActiveAnimation(name string) bool

	// SetLooping sets whether the clock wraps at the clip end.
	SetLooping(looping bool)

	// SetPlaying sets whether Update advances the clock.
	SetPlaying(playing bool)

	// SetAutoBlending toggles cross-fading between clips.
	SetAutoBlending(enabled bool)

	// AutoBlendTo cross-fades towards the named clip by factor per update.
	AutoBlendTo(name string, factor float32)

	// SetPointCache toggles whether baked point caches are used when present.
	SetPointCache(enabled bool)

	// MakePointCache bakes the named clip. Approximation is the frame step between baked poses.
	MakePointCache(name string, approximation int)

	// ClearPointCache drops the baked poses of the named clip.
	ClearPointCache(name string)

	// SetRegionItemSwap shows the item tagged tag in place of the region's default texture.
	//
	// Parameters:
	//   - region: the region name
	//   - tag: the item tag authored on the region
	SetRegionItemSwap(region string, tag int)

	// RemoveRegionItemSwap restores the region's default texture.
	RemoveRegionItemSwap(region string)

	// SetAnchorPointsActive toggles whether posed points are shifted by the active clip's anchor.
	SetAnchorPointsActive(active bool)

	// AnchorPointsActive reports whether anchor points are applied.
	AnchorPointsActive() bool
}

// Packet is a parsed animation source shared by every instance loaded from it.
type Packet interface {
	// AnimationNames returns the clip names in authored order.
	AnimationNames() []string

	// Clip parses the named clip.
	//
	// Returns:
	//   - Clip: the parsed clip
	//   - error: error if the packet has no such clip
	Clip(name string) (Clip, error)

	// NewSolver creates a fresh solver posed on this packet's topology.
	NewSolver() (Solver, error)

	// RegionOrderTrack returns the packet's region-order metadata, or nil when it has none.
	RegionOrderTrack() RegionOrderTrack
}

// Parser turns animation sources into packets.
type Parser interface {
	// ParseFile reads and parses the file at path.
	ParseFile(path string) (Packet, error)

	// ParseSource parses an in-memory source. Name is used for diagnostics only.
	ParseSource(name string, src []byte) (Packet, error)
}
