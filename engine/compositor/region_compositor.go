// Package compositor turns the solver's pose into the instance's draw buffer: region depth and
// index ordering, then per-point colors.
package compositor

import (
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

// DefaultOverlapDelta is the depth step between consecutive regions.
const DefaultOverlapDelta float32 = 0.01

// Policy is the index ordering applied on a tick. Exactly one applies per tick.
type Policy int

const (
	// PolicyDefault copies the solver's indices unchanged.
	PolicyDefault Policy = iota
	// PolicyCustomOrder concatenates the index ranges of a user-supplied region order.
	PolicyCustomOrder
	// PolicySkinSwap copies the active skin-swap permutation.
	PolicySkinSwap
	// PolicyRegionOrder lets the animated region-order track write the indices.
	PolicyRegionOrder
)

func (p Policy) String() string {
	switch p {
	case PolicyCustomOrder:
		return "custom-order"
	case PolicySkinSwap:
		return "skin-swap"
	case PolicyRegionOrder:
		return "region-order"
	}
	return "default"
}

// RegionInput is the per-tick state that selects the ordering policy.
type RegionInput struct {
	// CustomOrder is a back-to-front list of region names. It is only applied when it is
	// non-empty and its length differs from the natural region count.
	CustomOrder []string

	// Track is the animated region-order metadata, or nil.
	Track pose.RegionOrderTrack

	// SkinSwap is the active skin swap, or nil when skin swapping is off or unavailable. A swap
	// with more indices than the mesh is ignored.
	SkinSwap *pose.SkinSwapSet

	// Animation and RunTime locate the current region-order keyframe.
	Animation string
	RunTime   float32
}

// RegionResult reports what a Compose pass wrote.
type RegionResult struct {
	Policy Policy
	Count  int
}

type regionCompositor struct {
	overlapDelta float32
	logger       logging.Logger
}

// RegionCompositor rewrites the index buffer and point depths of a draw buffer each tick.
type RegionCompositor interface {
	// Compose copies the pose into out, assigns region depths and writes the index buffer
	// under the policy selected by in. Only the first Count entries of out.Indices are valid;
	// out.NumIndices is set accordingly.
	//
	// Parameters:
	//   - topo: the current pose
	//   - in: the per-tick ordering state
	//   - out: the instance's draw buffer
	//
	// Returns:
	//   - RegionResult: the applied policy and the number of indices written
	Compose(topo pose.Topology, in RegionInput, out *draw_buffer.DrawBuffer) RegionResult

	// OverlapDelta returns the depth step between consecutive regions.
	OverlapDelta() float32

	// SetOverlapDelta sets the depth step between consecutive regions.
	SetOverlapDelta(delta float32)
}

var _ RegionCompositor = &regionCompositor{}

// NewRegionCompositor creates a RegionCompositor with the provided options applied.
//
// Parameters:
//   - options: a variadic list of RegionCompositorBuilderOption functions
//
// Returns:
//   - RegionCompositor: the compositor
func NewRegionCompositor(options ...RegionCompositorBuilderOption) RegionCompositor {
	rc := &regionCompositor{
		overlapDelta: DefaultOverlapDelta,
		logger:       logging.Default().WithComponent("compositor"),
	}
	for _, option := range options {
		option(rc)
	}
	return rc
}

func (rc *regionCompositor) OverlapDelta() float32 {
	return rc.overlapDelta
}

func (rc *regionCompositor) SetOverlapDelta(delta float32) {
	rc.overlapDelta = delta
}

func (rc *regionCompositor) Compose(topo pose.Topology, in RegionInput, out *draw_buffer.DrawBuffer) RegionResult {
	out.ResizeMesh(topo.NumPoints(), topo.NumIndices())
	copy(out.Points, topo.Points())
	copy(out.UVs, topo.UVs())

	regions := topo.Regions()
	src := topo.Indices()

	var res RegionResult
	if len(in.CustomOrder) > 0 && len(in.CustomOrder) != len(regions) {
		res = rc.composeCustom(topo, in.CustomOrder, src, out)
	} else {
		res = rc.composeNatural(topo, regions, in, src, out)
	}
	out.NumIndices = res.Count
	return res
}

func (rc *regionCompositor) composeCustom(topo pose.Topology, order []string, src []uint32, out *draw_buffer.DrawBuffer) RegionResult {
	z := float32(0)
	n := 0
	for _, name := range order {
		r, ok := topo.Region(name)
		if !ok {
			continue
		}
		setDepth(out.Points, r, z)
		z += rc.overlapDelta
		n += copy(out.Indices[n:], src[r.StartIndex:r.EndIndex+1])
	}
	return RegionResult{Policy: PolicyCustomOrder, Count: n}
}

func (rc *regionCompositor) composeNatural(topo pose.Topology, regions []pose.Region, in RegionInput, src []uint32, out *draw_buffer.DrawBuffer) RegionResult {
	z := float32(0)
	for _, r := range regions {
		setDepth(out.Points, r, z)
		z += rc.overlapDelta
	}

	if in.Track == nil {
		return RegionResult{Policy: PolicyDefault, Count: copy(out.Indices, src)}
	}

	frame := int(in.RunTime)
	swapping := in.SkinSwap != nil && len(in.SkinSwap.Indices) > 0
	if swapping && len(in.SkinSwap.Indices) > len(out.Indices) {
		rc.logger.Warn("skin swap exceeds the index buffer, ignoring it",
			logging.WithField("swap_indices", len(in.SkinSwap.Indices)),
			logging.WithField("indices", len(out.Indices)),
		)
		swapping = false
	}
	if swapping && !in.Track.HasRegionOrder(in.Animation, frame) {
		return RegionResult{Policy: PolicySkinSwap, Count: copy(out.Indices, in.SkinSwap.Indices)}
	}

	var swap *pose.SkinSwapSet
	if swapping {
		swap = in.SkinSwap
	}
	if n := in.Track.UpdateIndicesAndPoints(out.Indices, src, out.Points, rc.overlapDelta, topo, in.Animation, frame, swap); n > 0 {
		return RegionResult{Policy: PolicyRegionOrder, Count: min(n, len(out.Indices))}
	}
	if swapping {
		return RegionResult{Policy: PolicySkinSwap, Count: copy(out.Indices, in.SkinSwap.Indices)}
	}
	return RegionResult{Policy: PolicyDefault, Count: copy(out.Indices, src)}
}

func setDepth(points []float32, r pose.Region, z float32) {
	last := min(r.EndPoint, len(points)/3-1)
	for p := max(r.StartPoint, 0); p <= last; p++ {
		points[3*p+2] = z
	}
}
