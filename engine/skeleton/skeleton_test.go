package skeleton

import (
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-creature/engine/fixture"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func xBone() pose.Bone {
	return pose.Bone{Name: "arm", WorldStart: mgl32.Vec3{0, 0, 0}, WorldEnd: mgl32.Vec3{10, 0, 0}}
}

// uncorrected strips the fixed axis correction from a translation.
func uncorrected(v mgl32.Vec3) mgl32.Vec3 {
	return AxisCorrection.Inverse().Rotate(v)
}

func TestBoneScaleAndMidpoint(t *testing.T) {
	d := NewDeriver()
	d.Fill([]pose.Bone{xBone()})

	b, ok := d.Bone("arm")
	if !ok {
		t.Fatal("bone not derived")
	}
	if want := (mgl32.Vec3{0.2, 0.01, 0.01}); !b.Transform.Scale.ApproxEqualThreshold(want, eps) {
		t.Errorf("scale = %v, want %v", b.Transform.Scale, want)
	}
	if got := uncorrected(b.Transform.Translation); !got.ApproxEqualThreshold(mgl32.Vec3{5, 0, 0}, eps) {
		t.Errorf("midpoint before correction = %v, want (5,0,0)", got)
	}
	if got := uncorrected(b.EndTransform.Translation); !got.ApproxEqualThreshold(mgl32.Vec3{10, 0, 0}, eps) {
		t.Errorf("end anchor before correction = %v", got)
	}
	if !b.Transform.Rotation.OrientationEqualThreshold(AxisCorrection, eps) {
		t.Errorf("x-aligned bone rotation = %v, want the axis correction only", b.Transform.Rotation)
	}
}

func TestBoneRotationFollowsBoneAxis(t *testing.T) {
	d := NewDeriver()
	d.Fill([]pose.Bone{{Name: "up", WorldEnd: mgl32.Vec3{0, 4, 0}}})
	b, _ := d.Bone("up")

	// Local x maps onto the bone axis before correction.
	axis := AxisCorrection.Inverse().Mul(b.Transform.Rotation).Rotate(mgl32.Vec3{1, 0, 0})
	if !axis.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, eps) {
		t.Errorf("bone axis = %v, want (0,1,0)", axis)
	}
}

func TestSlideFactor(t *testing.T) {
	d := NewDeriver()
	d.Fill([]pose.Bone{xBone()})
	b, _ := d.Bone("arm")

	tests := []struct {
		name  string
		slide float32
		want  Transform
	}{
		{"zero uses midpoint", 0, b.Transform},
		{"inside dead zone uses midpoint", 0.009, b.Transform},
		{"half is end anchored", 0.5, b.EndTransform},
		{"minus half is start anchored", -0.5, b.StartTransform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.BoneTransform("arm", false, tt.slide, Identity())
			if !ok {
				t.Fatal("bone missing")
			}
			if !got.Translation.ApproxEqualThreshold(tt.want.Translation, eps) {
				t.Errorf("translation = %v, want %v", got.Translation, tt.want.Translation)
			}
		})
	}

	quarter, _ := d.BoneTransform("arm", false, 0.25, Identity())
	if got := uncorrected(quarter.Translation); !got.ApproxEqualThreshold(mgl32.Vec3{7.5, 0, 0}, eps) {
		t.Errorf("slide 0.25 = %v, want (7.5,0,0)", got)
	}

	if _, ok := d.BoneTransform("ghost", false, 0, Identity()); ok {
		t.Error("unknown bone must report false")
	}
}

func TestBoneTransformWorldComposesBase(t *testing.T) {
	d := NewDeriver()
	d.Fill([]pose.Bone{xBone()})
	base := Transform{Translation: mgl32.Vec3{100, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{2, 2, 2}}

	local, _ := d.BoneTransform("arm", false, 0, base)
	world, _ := d.BoneTransform("arm", true, 0, base)

	want := local.Translation.Mul(2).Add(mgl32.Vec3{100, 0, 0})
	if !world.Translation.ApproxEqualThreshold(want, eps) {
		t.Errorf("world translation = %v, want %v", world.Translation, want)
	}
	if !world.Scale.ApproxEqualThreshold(local.Scale.Mul(2), eps) {
		t.Errorf("world scale = %v", world.Scale)
	}
}

func TestFillRecomputesEveryTick(t *testing.T) {
	d := NewDeriver(WithLengthFactor(0.1), WithSize(0.5))
	bone := xBone()
	d.Fill([]pose.Bone{bone})
	bone.WorldEnd = mgl32.Vec3{20, 0, 0}
	d.Fill([]pose.Bone{bone})

	b, _ := d.Bone("arm")
	if want := (mgl32.Vec3{2, 0.5, 0.5}); !b.Transform.Scale.ApproxEqualThreshold(want, eps) {
		t.Errorf("scale = %v, want %v", b.Transform.Scale, want)
	}

	d.Fill([]pose.Bone{{Name: "other", WorldEnd: mgl32.Vec3{1, 0, 0}}})
	if _, ok := d.Bone("arm"); ok {
		t.Error("stale bone survived a topology change")
	}
}

func TestCollide(t *testing.T) {
	bones := []pose.Bone{
		xBone(),
		{Name: "leg", WorldStart: mgl32.Vec3{0, 0, 0}, WorldEnd: mgl32.Vec3{0, -10, 0}},
	}
	id := Identity()

	tests := []struct {
		name   string
		point  mgl32.Vec3
		radius float32
		base   Transform
		want   string
		hit    bool
	}{
		{"on segment within radius", mgl32.Vec3{5, 0.5, 0}, 1, id, "arm", true},
		{"beyond end", mgl32.Vec3{11, 0, 0}, 1, id, "", false},
		{"too far sideways", mgl32.Vec3{5, 3, 0}, 1, id, "", false},
		{"second bone", mgl32.Vec3{0.5, -5, 0}, 1, id, "leg", true},
		{"first bone wins", mgl32.Vec3{0, 0, 0}, 1, id, "arm", true},
		{"non-positive radius becomes one", mgl32.Vec3{5, 0.9, 0}, 0, id, "arm", true},
		{"base moves the point", mgl32.Vec3{105, 0, 0}, 1,
			Transform{Translation: mgl32.Vec3{100, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}, "arm", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := Collide(bones, tt.point, tt.radius, tt.base)
			if got != tt.want || hit != tt.hit {
				t.Errorf("Collide = %q, %v; want %q, %v", got, hit, tt.want, tt.hit)
			}
		})
	}
}

func TestChildrenWithIgnore(t *testing.T) {
	a := fixture.Quads("r")
	a.Bones = []fixture.BoneDef{
		{Name: "root"},
		{Name: "spine", Parent: "root"},
		{Name: "head", Parent: "spine"},
		{Name: "arm", Parent: "spine"},
		{Name: "hand", Parent: "arm"},
		{Name: "leg", Parent: "root"},
	}
	pkt, err := fixture.NewPacket(a)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := pkt.NewSolver()

	got := ChildrenWithIgnore(s.Topology(), "arm", "")
	if want := []string{"root", "spine", "head", "leg"}; !slices.Equal(got, want) {
		t.Errorf("ChildrenWithIgnore = %v, want %v", got, want)
	}
	if got := ChildrenWithIgnore(s.Topology(), "", "arm"); !slices.Equal(got, []string{"arm", "hand"}) {
		t.Errorf("subtree = %v", got)
	}
	if got := ChildrenWithIgnore(s.Topology(), "root", ""); len(got) != 0 {
		t.Errorf("ignored root = %v", got)
	}
}

func TestTransformInverse(t *testing.T) {
	tr := Transform{
		Translation: mgl32.Vec3{1, 2, 3},
		Rotation:    mgl32.QuatRotate(0.7, mgl32.Vec3{0, 0, 1}),
		Scale:       mgl32.Vec3{2, 3, 4},
	}
	p := mgl32.Vec3{-4, 5, 6}
	if got := tr.InverseTransformPoint(tr.TransformPoint(p)); !got.ApproxEqualThreshold(p, eps) {
		t.Errorf("round trip = %v, want %v", got, p)
	}
	if got := tr.Mat4().Mul4x1(p.Vec4(1)).Vec3(); !got.ApproxEqualThreshold(tr.TransformPoint(p), eps) {
		t.Errorf("Mat4 = %v, TransformPoint = %v", got, tr.TransformPoint(p))
	}
}
