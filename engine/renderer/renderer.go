// Package renderer stages instance draw buffers and uploads them into per-instance GPU buffers.
// Drawing itself belongs to the host.
package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuBuffer is one stream's GPU allocation. size is the allocated byte size, used is the size of
// the last write.
type gpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
	used uint64
}

// meshUploader is the implementation of the MeshUploader interface.
type meshUploader struct {
	mu      sync.Mutex
	backend RendererBackend
	label   string

	buffers    [streamCount]gpuBuffer
	indexCount int
	writes     []BufferWrite
}

// MeshUploader keeps one instance's GPU buffers in sync with its draw output. Buffers are
// reallocated only when a stream outgrows its allocation.
type MeshUploader interface {
	// Upload stages the view and writes every stream, growing buffers as needed. Call it
	// inside a snapshot read.
	//
	// Parameters:
	//   - v: the instance's current view
	//
	// Returns:
	//   - error: error if a buffer could not be allocated
	Upload(v draw_buffer.View) error

	// UploadSnapshot reads the snapshot and uploads it while the read is held.
	//
	// Parameters:
	//   - s: the instance's snapshot handle
	//
	// Returns:
	//   - error: error if a buffer could not be allocated
	UploadSnapshot(s *draw_buffer.Snapshot) error

	// Buffer returns the GPU buffer of a stream, or nil before the first upload.
	Buffer(s Stream) *wgpu.Buffer

	// Size returns the bytes written to a stream by the last upload.
	Size(s Stream) uint64

	// IndexCount returns the number of indices written by the last upload.
	IndexCount() int

	// Release frees every GPU buffer.
	Release()
}

var _ MeshUploader = &meshUploader{}

// NewMeshUploader creates a MeshUploader on the given backend.
//
// Parameters:
//   - backend: the GPU backend
//   - options: a variadic list of MeshUploaderBuilderOption functions
//
// Returns:
//   - MeshUploader: the uploader
func NewMeshUploader(backend RendererBackend, options ...MeshUploaderBuilderOption) MeshUploader {
	u := &meshUploader{
		backend: backend,
		label:   "creature",
		writes:  make([]BufferWrite, 0, int(streamCount)),
	}
	for _, option := range options {
		option(u)
	}
	return u
}

func (u *meshUploader) Upload(v draw_buffer.View) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.writes = StageDrawBuffer(v, u.writes)
	for i := range u.buffers {
		u.buffers[i].used = 0
	}
	for _, w := range u.writes {
		size := w.Offset + uint64(len(w.Data))
		if err := u.ensure(w.Stream, size); err != nil {
			return err
		}
		u.backend.WriteBuffer(u.buffers[w.Stream].buf, w.Offset, w.Data)
		u.buffers[w.Stream].used = size
	}
	u.indexCount = v.NumIndices()
	return nil
}

func (u *meshUploader) UploadSnapshot(s *draw_buffer.Snapshot) error {
	var err error
	s.Read(func(v draw_buffer.View) {
		err = u.Upload(v)
	})
	return err
}

// ensure grows the stream's buffer to hold size bytes. Callers hold mu.
func (u *meshUploader) ensure(s Stream, size uint64) error {
	b := &u.buffers[s]
	if b.buf != nil && b.size >= size {
		return nil
	}
	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if s == StreamIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	buf, err := u.backend.CreateBuffer(fmt.Sprintf("%s %s buffer", u.label, s), size, usage)
	if err != nil {
		return fmt.Errorf("renderer: failed to allocate %s buffer of %d bytes: %w", s, size, err)
	}
	if b.buf != nil {
		u.backend.ReleaseBuffer(b.buf)
	}
	b.buf = buf
	b.size = size
	return nil
}

func (u *meshUploader) Buffer(s Stream) *wgpu.Buffer {
	u.mu.Lock()
	defer u.mu.Unlock()
	if s < 0 || s >= streamCount {
		return nil
	}
	return u.buffers[s].buf
}

func (u *meshUploader) Size(s Stream) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if s < 0 || s >= streamCount {
		return 0
	}
	return u.buffers[s].used
}

func (u *meshUploader) IndexCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.indexCount
}

func (u *meshUploader) Release() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.buffers {
		if u.buffers[i].buf != nil {
			u.backend.ReleaseBuffer(u.buffers[i].buf)
		}
		u.buffers[i] = gpuBuffer{}
	}
	u.indexCount = 0
}
