// Package attachment pins objects such as weapons, effects or hit boxes to a creature bone.
package attachment

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-creature/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// BoneSource resolves bone transforms. creature.Creature satisfies it.
type BoneSource interface {
	BoneTransform(name string, world bool, slide float32) (skeleton.Transform, bool)
}

type attachment struct {
	id        uint64
	enabled   atomic.Bool
	ephemeral bool

	mu     sync.RWMutex
	source BoneSource
	bone   string
	slide  float32
	world  bool
	offset skeleton.Transform

	transform skeleton.Transform
	attached  bool
}

// Attachment follows one bone of a BoneSource. Its transform is the offset applied in bone
// space, refreshed by Update; between updates it holds the last resolved value.
type Attachment interface {
	// ID returns the attachment's identifier.
	//
	// Returns:
	//   - uint64: the attachment ID
	ID() uint64

	// Enabled returns whether Update refreshes the attachment.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether the attachment should be dropped when its source is removed.
	Ephemeral() bool

	// Source returns the bone source, or nil if unset.
	Source() BoneSource

	// Bone returns the name of the followed bone.
	Bone() string

	// Slide returns the position along the bone: 0 is the midpoint and -0.5 and 0.5 are its ends.
	// Magnitudes under skeleton.SlideDeadZone use the midpoint.
	Slide() float32

	// World returns whether the source's base transform is applied.
	World() bool

	// Attached reports whether the last Update resolved the bone.
	Attached() bool

	// Update pulls the bone's current transform from the source.
	//
	// Returns:
	//   - bool: false if disabled, unsourced or the bone is unknown; the previous transform is kept
	Update() bool

	// Transform returns the resolved transform.
	//
	// Returns:
	//   - skeleton.Transform: the offset composed with the bone transform
	Transform() skeleton.Transform

	// Position returns the resolved translation.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the resolved rotation.
	Rotation() mgl32.Quat

	// Scale returns the resolved scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// ModelMatrix returns the resolved transform as a column-major matrix.
	ModelMatrix() mgl32.Mat4

	// SetID sets the attachment's identifier.
	SetID(id uint64)

	// SetEnabled sets whether Update refreshes the attachment.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetSource changes the bone source. The attachment is detached until the next Update.
	//
	// Parameters:
	//   - source: the new source, or nil
	SetSource(source BoneSource)

	// SetBone changes the followed bone. The attachment is detached until the next Update.
	//
	// Parameters:
	//   - name: the bone name
	//   - slide: the position along the bone, 0 at the midpoint and ±0.5 at the ends
	SetBone(name string, slide float32)

	// SetWorld sets whether the source's base transform is applied.
	SetWorld(world bool)

	// SetOffset sets the transform applied in bone space.
	//
	// Parameters:
	//   - offset: the local offset
	SetOffset(offset skeleton.Transform)
}

var _ Attachment = &attachment{}

// NewAttachment creates a new Attachment configured with the given options. It is enabled,
// world-space and has an identity offset unless the options say otherwise.
//
// Parameters:
//   - options: functional options to configure the attachment
//
// Returns:
//   - Attachment: the newly created attachment
func NewAttachment(options ...AttachmentBuilderOption) Attachment {
	a := &attachment{
		world:     true,
		offset:    skeleton.Identity(),
		transform: skeleton.Identity(),
	}
	a.enabled.Store(true)
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *attachment) ID() uint64 {
	return a.id
}

func (a *attachment) Enabled() bool {
	return a.enabled.Load()
}

func (a *attachment) Ephemeral() bool {
	return a.ephemeral
}

func (a *attachment) Source() BoneSource {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}

func (a *attachment) Bone() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bone
}

func (a *attachment) Slide() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.slide
}

func (a *attachment) World() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.world
}

func (a *attachment) Attached() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.attached
}

func (a *attachment) Update() bool {
	if !a.enabled.Load() {
		return false
	}

	a.mu.RLock()
	source, bone, slide, world, offset := a.source, a.bone, a.slide, a.world, a.offset
	a.mu.RUnlock()
	if source == nil || bone == "" {
		return false
	}

	// resolved outside the lock, the source takes its own
	xf, ok := source.BoneTransform(bone, world, slide)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.source != source || a.bone != bone {
		return false
	}
	a.attached = ok
	if ok {
		a.transform = offset.Then(xf)
	}
	return ok
}

func (a *attachment) Transform() skeleton.Transform {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transform
}

func (a *attachment) Position() (x, y, z float32) {
	t := a.Transform().Translation
	return t[0], t[1], t[2]
}

func (a *attachment) Rotation() mgl32.Quat {
	return a.Transform().Rotation
}

func (a *attachment) Scale() (sx, sy, sz float32) {
	s := a.Transform().Scale
	return s[0], s[1], s[2]
}

func (a *attachment) ModelMatrix() mgl32.Mat4 {
	return a.Transform().Mat4()
}

func (a *attachment) SetID(id uint64) {
	a.id = id
}

func (a *attachment) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

func (a *attachment) SetSource(source BoneSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = source
	a.attached = false
}

func (a *attachment) SetBone(name string, slide float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bone = name
	a.slide = slide
	a.attached = false
}

func (a *attachment) SetWorld(world bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.world = world
}

func (a *attachment) SetOffset(offset skeleton.Transform) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = offset
}
