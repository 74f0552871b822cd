package skeleton

import "github.com/go-gl/mathgl/mgl32"

// Transform is a translation, rotation and non-uniform scale, applied scale first.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Then returns the transform that applies t first and then next.
//
// Parameters:
//   - next: the transform applied after t
//
// Returns:
//   - Transform: the composition
func (t Transform) Then(next Transform) Transform {
	return Transform{
		Translation: next.Rotation.Rotate(mulVec(next.Scale, t.Translation)).Add(next.Translation),
		Rotation:    next.Rotation.Mul(t.Rotation).Normalize(),
		Scale:       mulVec(t.Scale, next.Scale),
	}
}

// TransformPoint maps a local point into the transform's parent space.
func (t Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(mulVec(t.Scale, p)).Add(t.Translation)
}

// InverseTransformPoint maps a parent-space point into local space. Zero scale components map
// to zero.
func (t Transform) InverseTransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	local := t.Rotation.Inverse().Rotate(p.Sub(t.Translation))
	for i := range local {
		if t.Scale[i] == 0 {
			local[i] = 0
			continue
		}
		local[i] /= t.Scale[i]
	}
	return local
}

// Mat4 returns the column-major matrix of the transform.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Blend interpolates between a and b: linearly for translation and scale, spherically for
// rotation. Alpha is clamped to [0,1].
//
// Parameters:
//   - a: the transform at alpha 0
//   - b: the transform at alpha 1
//   - alpha: the blend weight
//
// Returns:
//   - Transform: the blended transform
func Blend(a, b Transform, alpha float32) Transform {
	switch {
	case alpha <= 0:
		return a
	case alpha >= 1:
		return b
	}
	return Transform{
		Translation: lerpVec(a.Translation, b.Translation, alpha),
		Rotation:    mgl32.QuatSlerp(a.Rotation, b.Rotation, alpha),
		Scale:       lerpVec(a.Scale, b.Scale, alpha),
	}
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func lerpVec(a, b mgl32.Vec3, w float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(w))
}
