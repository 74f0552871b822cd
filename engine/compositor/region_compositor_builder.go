package compositor

import "github.com/Carmen-Shannon/oxy-creature/engine/logging"

// RegionCompositorBuilderOption is a functional option for configuring a RegionCompositor via
// NewRegionCompositor.
type RegionCompositorBuilderOption func(*regionCompositor)

// WithOverlapDelta is an option builder that sets the depth step between consecutive regions.
//
// Parameters:
//   - delta: the depth step
//
// Returns:
//   - RegionCompositorBuilderOption: a function that applies the delta option to a compositor
func WithOverlapDelta(delta float32) RegionCompositorBuilderOption {
	return func(rc *regionCompositor) {
		rc.overlapDelta = delta
	}
}

// WithLogger is an option builder that sets the logger used for rejected inputs.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - RegionCompositorBuilderOption: a function that applies the logger option to a compositor
func WithLogger(l logging.Logger) RegionCompositorBuilderOption {
	return func(rc *regionCompositor) {
		if l != nil {
			rc.logger = l.WithComponent("compositor")
		}
	}
}
