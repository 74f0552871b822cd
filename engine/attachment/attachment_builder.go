package attachment

import (
	"github.com/Carmen-Shannon/oxy-creature/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// AttachmentBuilderOption is a functional option for configuring an Attachment during construction.
type AttachmentBuilderOption func(*attachment)

// WithID sets the ID of the Attachment.
//
// Parameters:
//   - id: identifier for the Attachment
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the ID
func WithID(id uint64) AttachmentBuilderOption {
	return func(a *attachment) {
		a.id = id
	}
}

// WithEnabled sets whether the Attachment refreshes on Update.
//
// Parameters:
//   - enabled: false to freeze the attachment at its last transform
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) AttachmentBuilderOption {
	return func(a *attachment) {
		a.enabled.Store(enabled)
	}
}

// WithEphemeral marks the Attachment as ephemeral.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) AttachmentBuilderOption {
	return func(a *attachment) {
		a.ephemeral = ephemeral
	}
}

// WithSource sets the bone source the Attachment follows.
//
// Parameters:
//   - source: the bone source, usually a creature
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the source
func WithSource(source BoneSource) AttachmentBuilderOption {
	return func(a *attachment) {
		a.source = source
	}
}

// WithBone sets the followed bone and the position along it.
//
// Parameters:
//   - name: the bone name
//   - slide: 0 at the bone midpoint, -0.5 at its start and 0.5 at its end
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the bone
func WithBone(name string, slide float32) AttachmentBuilderOption {
	return func(a *attachment) {
		a.bone = name
		a.slide = slide
	}
}

// WithWorld sets whether the source's base transform is applied.
//
// Parameters:
//   - world: false for transforms in the creature's local space
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the space
func WithWorld(world bool) AttachmentBuilderOption {
	return func(a *attachment) {
		a.world = world
	}
}

// WithOffset sets the transform applied in bone space.
//
// Parameters:
//   - offset: the local offset
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the offset
func WithOffset(offset skeleton.Transform) AttachmentBuilderOption {
	return func(a *attachment) {
		a.offset = offset
	}
}

// WithPosition sets the translation part of the offset.
//
// Parameters:
//   - x, y, z: the offset translation in bone space
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the offset translation
func WithPosition(x, y, z float32) AttachmentBuilderOption {
	return func(a *attachment) {
		a.offset.Translation = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the scale part of the offset.
//
// Parameters:
//   - sx, sy, sz: the offset scale
//
// Returns:
//   - AttachmentBuilderOption: functional option to set the offset scale
func WithScale(sx, sy, sz float32) AttachmentBuilderOption {
	return func(a *attachment) {
		a.offset.Scale = mgl32.Vec3{sx, sy, sz}
	}
}
