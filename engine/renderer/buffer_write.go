package renderer

// Stream identifies one of the per-instance GPU buffers a draw buffer is uploaded into.
type Stream int

const (
	// StreamIndex holds the triangle indices, uint32 each.
	StreamIndex Stream = iota
	// StreamPoint holds 3 float32 per point.
	StreamPoint
	// StreamUV holds 2 float32 per point.
	StreamUV
	// StreamColor holds 4 bytes RGBA per point.
	StreamColor

	streamCount
)

func (s Stream) String() string {
	switch s {
	case StreamIndex:
		return "index"
	case StreamPoint:
		return "point"
	case StreamUV:
		return "uv"
	case StreamColor:
		return "color"
	}
	return "unknown"
}

// BufferWrite describes a single GPU buffer write targeting one stream at a given byte offset.
type BufferWrite struct {
	Stream Stream
	Offset uint64
	Data   []byte
}
