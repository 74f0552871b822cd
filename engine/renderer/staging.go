package renderer

import (
	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
)

// StageDrawBuffer converts a view into one write per non-empty stream, appending to writes.
// The returned data aliases the view, so the writes must be uploaded before the snapshot read
// that produced the view returns.
//
// Parameters:
//   - v: the view to stage
//   - writes: a reusable slice, truncated before use
//
// Returns:
//   - []BufferWrite: the staged writes
func StageDrawBuffer(v draw_buffer.View, writes []BufferWrite) []BufferWrite {
	writes = writes[:0]
	for _, w := range [...]BufferWrite{
		{Stream: StreamIndex, Data: common.SliceToBytes(v.Indices)},
		{Stream: StreamPoint, Data: common.SliceToBytes(v.Points)},
		{Stream: StreamUV, Data: common.SliceToBytes(v.UVs)},
		{Stream: StreamColor, Data: common.SliceToBytes(v.Colors)},
	} {
		if len(w.Data) > 0 {
			writes = append(writes, w)
		}
	}
	return writes
}
