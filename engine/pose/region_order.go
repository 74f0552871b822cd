package pose

// SkinSwapSet is a precomputed index permutation drawing one skin of the mesh, plus the ids of
// the regions it covers.
type SkinSwapSet struct {
	Indices []uint32
	Regions map[int]struct{}
}

// Covers reports whether the region id is part of the swap.
func (s *SkinSwapSet) Covers(id int) bool {
	if s == nil {
		return false
	}
	_, ok := s.Regions[id]
	return ok
}

// RegionOrderTrack is animation metadata that reorders regions over time and describes named
// skin swaps.
type RegionOrderTrack interface {
	// HasRegionOrder reports whether the animation has a region-order keyframe exactly at frame.
	//
	// Parameters:
	//   - animation: the active clip name
	//   - frame: the truncated run time
	//
	// Returns:
	//   - bool: true when a keyframe exists at that frame
	HasRegionOrder(animation string, frame int) bool

	// UpdateIndicesAndPoints writes the reordered index buffer into dst and assigns depth to the
	// points of every region it places. When swap is non-nil only regions covered by it are
	// written.
	//
	// Parameters:
	//   - dst: destination index buffer, at least len(src) long
	//   - src: the solver's index buffer
	//   - points: the point buffer whose z coordinates are rewritten
	//   - deltaZ: depth step between consecutive regions
	//   - topo: the current topology
	//   - animation: the active clip name
	//   - frame: the truncated run time
	//   - swap: the active skin swap, or nil
	//
	// Returns:
	//   - int: the number of indices written to dst
	UpdateIndicesAndPoints(dst, src []uint32, points []float32, deltaZ float32, topo Topology, animation string, frame int, swap *SkinSwapSet) int

	// BuildSkinSwap builds the named swap against the topology.
	//
	// Returns:
	//   - *SkinSwapSet: the swap set
	//   - bool: false when the track has no swap of that name
	BuildSkinSwap(name string, topo Topology) (*SkinSwapSet, bool)
}

// MorphStepper is optionally implemented by a RegionOrderTrack that carries morph-target data.
type MorphStepper interface {
	// MorphValid reports whether morph-target data is present and usable.
	MorphValid() bool

	// UpdateMorphStep advances the solver by dt using morph-target blending instead of Update.
	UpdateMorphStep(solver Solver, dt float32)
}
