// Package draw_buffer holds the per-instance render output and the guarded handle a renderer
// reads it through.
package draw_buffer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-creature/common"
)

// DrawBuffer is the output of one tick. It is overwritten in place every tick and only
// reallocated when the point or index count changes.
type DrawBuffer struct {
	Indices []uint32
	Points  []float32 // 3 per point
	UVs     []float32 // 2 per point
	Colors  []common.Color

	// NumIndices is the number of leading entries of Indices that are valid this tick.
	NumIndices int
}

// NumPoints returns the number of points held by the buffer.
func (b *DrawBuffer) NumPoints() int {
	return len(b.Points) / 3
}

// Resize makes the buffer hold numPoints points and room for numIndices indices.
// Existing contents are kept when the counts are unchanged.
//
// Parameters:
//   - numPoints: the point count
//   - numIndices: the index capacity
//
// Returns:
//   - bool: true if the color buffer was recreated and must be reinitialized
func (b *DrawBuffer) Resize(numPoints, numIndices int) bool {
	b.ResizeMesh(numPoints, numIndices)
	return b.ResizeColors(numPoints)
}

// ResizeMesh sizes the index, point and UV buffers. The index buffer keeps its backing array
// unless it must grow.
func (b *DrawBuffer) ResizeMesh(numPoints, numIndices int) {
	b.Indices = common.Grow(b.Indices, numIndices)
	if len(b.Points) != 3*numPoints {
		b.Points = make([]float32, 3*numPoints)
	}
	if len(b.UVs) != 2*numPoints {
		b.UVs = make([]float32, 2*numPoints)
	}
}

// ResizeColors sizes the color buffer.
//
// Returns:
//   - bool: true if the color buffer was recreated
func (b *DrawBuffer) ResizeColors(numPoints int) bool {
	if len(b.Colors) == numPoints && b.Colors != nil {
		return false
	}
	b.Colors = make([]common.Color, numPoints)
	return true
}

// View returns a view of the valid part of the buffer. The view aliases the buffer.
func (b *DrawBuffer) View() View {
	n := min(b.NumIndices, len(b.Indices))
	return View{
		Indices:   b.Indices[:n],
		Points:    b.Points,
		UVs:       b.UVs,
		Colors:    b.Colors,
		NumPoints: b.NumPoints(),
	}
}

// View is a read-only window on a DrawBuffer, valid until the next tick.
type View struct {
	Indices   []uint32
	Points    []float32
	UVs       []float32
	Colors    []common.Color
	NumPoints int
}

// NumIndices returns the number of valid indices.
func (v View) NumIndices() int {
	return len(v.Indices)
}

// Clone copies the view into a standalone DrawBuffer.
func (v View) Clone() DrawBuffer {
	return DrawBuffer{
		Indices:    slices.Clone(v.Indices),
		Points:     slices.Clone(v.Points),
		UVs:        slices.Clone(v.UVs),
		Colors:     slices.Clone(v.Colors),
		NumIndices: len(v.Indices),
	}
}
