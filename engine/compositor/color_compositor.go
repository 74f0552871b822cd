package compositor

import (
	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

// ColorInput is the per-tick state of the color pass.
type ColorInput struct {
	// Overrides force every point of the named region to a gray level equal to the alpha.
	Overrides map[string]uint8

	// Editor renders an untinted, fully opaque reference mesh.
	Editor bool

	// IgnoreTint drops the regions' color channels and keeps only their opacity.
	IgnoreTint bool
}

// ComposeColors writes one color per point of out from region opacity and tint.
// The color buffer is resized to the point count first and reset to white when recreated.
//
// Parameters:
//   - topo: the current pose
//   - in: overrides, editor mode and the tint gate
//   - out: the instance's draw buffer
func ComposeColors(topo pose.Topology, in ColorInput, out *draw_buffer.DrawBuffer) {
	n := topo.NumPoints()
	if out.ResizeColors(n) || in.Editor {
		fill(out.Colors, 0, n-1, common.White)
	}
	if in.Editor {
		return
	}

	for _, r := range topo.Regions() {
		if in.IgnoreTint {
			r.Red, r.Green, r.Blue = 100, 100, 100
		}
		fill(out.Colors, r.StartPoint, r.EndPoint, regionColor(r))
	}

	for name, alpha := range in.Overrides {
		if r, ok := topo.Region(name); ok {
			fill(out.Colors, r.StartPoint, r.EndPoint, common.Gray(alpha))
		}
	}
}

func regionColor(r pose.Region) common.Color {
	opacity := common.Clamp(r.Opacity, 0, 100) / 100
	channel := func(v float32) uint8 {
		return common.UnitToByte(common.Clamp(v, 0, 100) / 100 * opacity)
	}
	return common.Color{
		R: channel(r.Red),
		G: channel(r.Green),
		B: channel(r.Blue),
		A: common.UnitToByte(opacity),
	}
}

func fill(colors []common.Color, first, last int, c common.Color) {
	last = min(last, len(colors)-1)
	for i := max(first, 0); i <= last; i++ {
		colors[i] = c
	}
}
