package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackend is the GPU surface the uploader needs: buffer creation, queue writes and
// release.
type RendererBackend interface {
	// CreateBuffer allocates a GPU buffer.
	//
	// Parameters:
	//   - label: the debug label
	//   - size: the size in bytes
	//   - usage: the buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: error if allocation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// WriteBuffer queues a write of data into buf at offset.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// ReleaseBuffer frees a buffer created by CreateBuffer.
	ReleaseBuffer(buf *wgpu.Buffer)
}
