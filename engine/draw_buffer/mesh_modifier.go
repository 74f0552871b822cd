package draw_buffer

// ModifierBuffer is the output owned by a MeshModifier. When Valid is set after an update it
// replaces the computed buffers wholesale.
type ModifierBuffer struct {
	DrawBuffer
	Valid bool
}

// MeshModifier post-processes the computed draw buffer every tick.
type MeshModifier interface {
	// InitData is called once when the modifier is attached, with buf sized to the current mesh.
	//
	// Parameters:
	//   - buf: the modifier's own buffer
	//   - src: the computed output at attach time
	InitData(buf *ModifierBuffer, src View)

	// Update is called at the end of every tick, after compositing.
	//
	// Parameters:
	//   - buf: the modifier's own buffer
	//   - src: this tick's computed output
	Update(buf *ModifierBuffer, src View)
}

// ModifierFuncs adapts a pair of functions to MeshModifier. Either may be nil.
type ModifierFuncs struct {
	Init func(buf *ModifierBuffer, src View)
	Step func(buf *ModifierBuffer, src View)
}

var _ MeshModifier = ModifierFuncs{}

func (m ModifierFuncs) InitData(buf *ModifierBuffer, src View) {
	if m.Init != nil {
		m.Init(buf, src)
	}
}

func (m ModifierFuncs) Update(buf *ModifierBuffer, src View) {
	if m.Step != nil {
		m.Step(buf, src)
	}
}

// NewModifierBuffer sizes a modifier buffer for a mesh.
//
// Parameters:
//   - numPoints: the point count
//   - numIndices: the index capacity
//
// Returns:
//   - *ModifierBuffer: the buffer, not yet valid
func NewModifierBuffer(numPoints, numIndices int) *ModifierBuffer {
	buf := &ModifierBuffer{}
	buf.Resize(numPoints, numIndices)
	return buf
}
