package renderer

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackendImpl implements RendererBackend on a WebGPU device and queue owned by the
// host renderer.
type wgpuRendererBackendImpl struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPUBackend wraps an existing device and queue.
//
// Parameters:
//   - device: the WebGPU device
//   - queue: the device's queue
//
// Returns:
//   - RendererBackend: the backend
func NewWGPUBackend(device *wgpu.Device, queue *wgpu.Queue) RendererBackend {
	return &wgpuRendererBackendImpl{device: device, queue: queue}
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) ReleaseBuffer(buf *wgpu.Buffer) {
	buf.Release()
}
