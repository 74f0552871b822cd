// Package skeleton derives attachment transforms from posed bones and answers geometric queries
// against them.
package skeleton

import (
	"math"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultLengthFactor scales bone length onto the transform's x scale.
	DefaultLengthFactor float32 = 0.02
	// DefaultSize is the transform's y and z scale.
	DefaultSize float32 = 0.01
	// SlideDeadZone is the slide factor magnitude below which the midpoint transform is used.
	SlideDeadZone float32 = 0.01
)

// AxisCorrection is the fixed rotation applied last to every bone transform, -90 degrees about x.
var AxisCorrection = mgl32.QuatRotate(mgl32.DegToRad(-90), mgl32.Vec3{1, 0, 0})

// BoneData is the derived state of one bone for the current tick.
type BoneData struct {
	Name  string
	Start mgl32.Vec3
	End   mgl32.Vec3

	// Transform is anchored at the bone midpoint; StartTransform and EndTransform at its ends.
	Transform      Transform
	StartTransform Transform
	EndTransform   Transform
}

type deriver struct {
	lengthFactor float32
	size         float32

	bones []BoneData
	index map[string]int
}

// Deriver recomputes bone attachment transforms from the posed skeleton every tick.
// It is not safe for concurrent use; callers guard it with the instance lock.
type Deriver interface {
	// Fill recomputes every bone from its current world endpoints.
	//
	// Parameters:
	//   - bones: the posed bones in natural order
	Fill(bones []pose.Bone)

	// Bones returns the derived data in natural order. The slice is overwritten by Fill.
	Bones() []BoneData

	// Bone returns the derived data of one bone.
	Bone(name string) (BoneData, bool)

	// BoneTransform returns a bone's attachment transform. A slide factor outside the dead
	// zone blends between the start- and end-anchored transforms with weight slide+0.5. When
	// world is set the result is composed with base.
	//
	// Parameters:
	//   - name: the bone name
	//   - world: whether to compose with base
	//   - slide: the slide factor, 0 for the midpoint, -0.5 for the start, 0.5 for the end
	//   - base: the instance's world transform
	//
	// Returns:
	//   - Transform: the transform
	//   - bool: false if no bone has that name
	BoneTransform(name string, world bool, slide float32, base Transform) (Transform, bool)

	// LengthFactor returns the bone length to x scale factor.
	LengthFactor() float32

	// Size returns the y and z scale.
	Size() float32
}

var _ Deriver = &deriver{}

// NewDeriver creates a Deriver with the provided options applied.
//
// Parameters:
//   - options: a variadic list of DeriverBuilderOption functions
//
// Returns:
//   - Deriver: the deriver
func NewDeriver(options ...DeriverBuilderOption) Deriver {
	d := &deriver{
		lengthFactor: DefaultLengthFactor,
		size:         DefaultSize,
		index:        make(map[string]int),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

func (d *deriver) LengthFactor() float32 { return d.lengthFactor }

func (d *deriver) Size() float32 { return d.size }

func (d *deriver) Bones() []BoneData { return d.bones }

func (d *deriver) Fill(bones []pose.Bone) {
	if len(d.bones) != len(bones) {
		d.bones = make([]BoneData, len(bones))
	}
	reindex := len(d.index) != len(bones)
	for i, b := range bones {
		reindex = reindex || d.bones[i].Name != b.Name
		d.bones[i] = d.derive(b)
	}
	if reindex {
		clear(d.index)
		for i, b := range d.bones {
			d.index[b.Name] = i
		}
	}
}

func (d *deriver) derive(b pose.Bone) BoneData {
	vec := b.WorldEnd.Sub(b.WorldStart)
	length := vec.Len()
	unit := mgl32.Vec3{1, 0, 0}
	if length > 0 {
		unit = vec.Mul(1 / length)
	}
	normal := mgl32.Vec3{-unit[1], unit[0], unit[2]}

	basis := mgl32.Mat3FromCols(
		mgl32.Vec3{unit[0], unit[1], 0},
		mgl32.Vec3{normal[0], normal[1], 0},
		mgl32.Vec3{0, 0, 1},
	)
	shape := Transform{
		Rotation: mgl32.Mat4ToQuat(basis.Mat4()).Normalize(),
		Scale:    mgl32.Vec3{length * d.lengthFactor, d.size, d.size},
	}
	fix := Transform{Rotation: AxisCorrection, Scale: mgl32.Vec3{1, 1, 1}}
	at := func(p mgl32.Vec3) Transform {
		return shape.Then(Transform{Translation: p, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}).Then(fix)
	}

	return BoneData{
		Name:           b.Name,
		Start:          b.WorldStart,
		End:            b.WorldEnd,
		Transform:      at(b.WorldStart.Add(b.WorldEnd).Mul(0.5)),
		StartTransform: at(b.WorldStart),
		EndTransform:   at(b.WorldEnd),
	}
}

func (d *deriver) Bone(name string) (BoneData, bool) {
	i, ok := d.index[name]
	if !ok {
		return BoneData{}, false
	}
	return d.bones[i], true
}

func (d *deriver) BoneTransform(name string, world bool, slide float32, base Transform) (Transform, bool) {
	b, ok := d.Bone(name)
	if !ok {
		return Identity(), false
	}
	ret := b.Transform
	if float32(math.Abs(float64(slide))) > SlideDeadZone {
		ret = Blend(b.StartTransform, b.EndTransform, slide+0.5)
	}
	if world {
		ret = ret.Then(base)
	}
	return ret, true
}

// Collide reports the first bone, in natural order, whose segment passes within radius of a
// world-space point. The point is brought into the instance's local space with base first.
// A radius <= 0 is treated as 1.
//
// Parameters:
//   - bones: the posed bones in natural order
//   - point: the world-space test point
//   - radius: the perpendicular tolerance
//   - base: the instance's world transform
//
// Returns:
//   - string: the name of the first bone hit
//   - bool: true on a hit
func Collide(bones []pose.Bone, point mgl32.Vec3, radius float32, base Transform) (string, bool) {
	if radius <= 0 {
		radius = 1
	}
	local := base.InverseTransformPoint(point)
	for _, b := range bones {
		vec := b.WorldEnd.Sub(b.WorldStart)
		length := vec.Len()
		if length == 0 {
			continue
		}
		unit := vec.Mul(1 / length)
		rel := local.Sub(b.WorldStart)

		along := rel.Dot(unit)
		if along < 0 || along > length {
			continue
		}
		normal := mgl32.Vec3{-unit[1], unit[0], unit[2]}
		if float32(math.Abs(float64(rel.Dot(normal)))) <= radius {
			return b.Name, true
		}
	}
	return "", false
}

// ChildrenWithIgnore walks the bone tree depth first from base and returns every bone visited,
// pruning the subtree rooted at ignore. An empty base starts at the root bone.
//
// Parameters:
//   - topo: the pose topology
//   - ignore: the name of the subtree to skip
//   - base: the bone to start from, "" for the root
//
// Returns:
//   - []string: the bone names in visiting order
func ChildrenWithIgnore(topo pose.Topology, ignore, base string) []string {
	if base == "" {
		base = topo.RootBone()
	}
	var out []string
	var walk func(name string)
	walk = func(name string) {
		if name == ignore {
			return
		}
		b, ok := topo.Bone(name)
		if !ok {
			return
		}
		out = append(out, name)
		for _, child := range b.Children {
			walk(child)
		}
	}
	walk(base)
	return out
}
