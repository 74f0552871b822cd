package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeBackend struct {
	created  []uint64
	released int
	writes   map[*wgpu.Buffer][]byte
	fail     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{writes: make(map[*wgpu.Buffer][]byte)}
}

func (f *fakeBackend) CreateBuffer(_ string, size uint64, _ wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if f.fail {
		return nil, errors.New("out of memory")
	}
	f.created = append(f.created, size)
	return &wgpu.Buffer{}, nil
}

func (f *fakeBackend) WriteBuffer(buf *wgpu.Buffer, _ uint64, data []byte) {
	f.writes[buf] = append([]byte(nil), data...)
}

func (f *fakeBackend) ReleaseBuffer(*wgpu.Buffer) {
	f.released++
}

func quad(numIndices int) draw_buffer.DrawBuffer {
	var b draw_buffer.DrawBuffer
	b.Resize(4, 6)
	copy(b.Indices, []uint32{0, 1, 2, 0, 2, 3})
	b.NumIndices = numIndices
	for i := range b.Colors {
		b.Colors[i] = common.White
	}
	return b
}

func TestStageDrawBuffer(t *testing.T) {
	b := quad(6)
	writes := StageDrawBuffer(b.View(), nil)
	if len(writes) != 4 {
		t.Fatalf("writes = %d", len(writes))
	}
	want := map[Stream]int{StreamIndex: 24, StreamPoint: 48, StreamUV: 32, StreamColor: 16}
	for _, w := range writes {
		if len(w.Data) != want[w.Stream] {
			t.Errorf("%s: %d bytes, want %d", w.Stream, len(w.Data), want[w.Stream])
		}
	}

	writes = StageDrawBuffer(draw_buffer.View{}, writes)
	if len(writes) != 0 {
		t.Fatalf("empty view staged %d writes", len(writes))
	}
}

func TestUploadGrowsOnlyWhenNeeded(t *testing.T) {
	fb := newFakeBackend()
	u := NewMeshUploader(fb, WithLabel("hero"))

	b := quad(6)
	if err := u.Upload(b.View()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if len(fb.created) != 4 || u.IndexCount() != 6 {
		t.Fatalf("created = %v, indices = %d", fb.created, u.IndexCount())
	}
	first := u.Buffer(StreamIndex)

	b.NumIndices = 3
	if err := u.Upload(b.View()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if len(fb.created) != 4 || fb.released != 0 {
		t.Fatal("shrinking must reuse the buffers")
	}
	if u.Buffer(StreamIndex) != first || u.Size(StreamIndex) != 12 {
		t.Fatalf("index size = %d", u.Size(StreamIndex))
	}
	if got := fb.writes[first]; len(got) != 12 {
		t.Fatalf("index write = %d bytes", len(got))
	}

	var big draw_buffer.DrawBuffer
	big.Resize(8, 12)
	big.NumIndices = 12
	if err := u.Upload(big.View()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if fb.released != 4 || len(fb.created) != 8 {
		t.Fatalf("growth: created %d, released %d", len(fb.created), fb.released)
	}

	u.Release()
	if fb.released != 8 || u.Buffer(StreamPoint) != nil {
		t.Fatal("Release must free every buffer")
	}
}

func TestUploadSnapshotAndFailure(t *testing.T) {
	fb := newFakeBackend()
	u := NewMeshUploader(fb)

	var mu fakeLocker
	b := quad(6)
	snap := draw_buffer.NewSnapshot(&mu, b.View)
	if err := u.UploadSnapshot(snap); err != nil {
		t.Fatalf("UploadSnapshot: %v", err)
	}
	if mu.locks != 1 {
		t.Fatalf("snapshot locked %d times", mu.locks)
	}

	fb2 := newFakeBackend()
	fb2.fail = true
	if err := NewMeshUploader(fb2).Upload(b.View()); err == nil {
		t.Fatal("allocation failure must be returned")
	}
}

type fakeLocker struct {
	locks int
}

func (l *fakeLocker) Lock()   { l.locks++ }
func (l *fakeLocker) Unlock() {}
