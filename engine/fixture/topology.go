package fixture

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

type topology struct {
	indices []uint32
	points  []float32
	uvs     []float32

	regions   []pose.Region
	regionIdx map[string]int

	bones   []pose.Bone
	boneIdx map[string]int
	root    string
}

var _ pose.Topology = &topology{}

func newTopology(a *Asset) *topology {
	t := &topology{
		indices:   slices.Clone(a.Indices),
		points:    make([]float32, 3*len(a.Points)),
		uvs:       make([]float32, 2*len(a.Points)),
		regions:   make([]pose.Region, len(a.Regions)),
		regionIdx: make(map[string]int, len(a.Regions)),
		bones:     make([]pose.Bone, len(a.Bones)),
		boneIdx:   make(map[string]int, len(a.Bones)),
	}
	for i, p := range a.Points {
		copy(t.points[3*i:], p[:])
	}
	for i, uv := range a.UVs {
		copy(t.uvs[2*i:], uv[:])
	}
	for i, r := range a.Regions {
		opacity := float32(100)
		if r.Opacity != nil {
			opacity = *r.Opacity
		}
		t.regions[i] = pose.Region{
			Name:       r.Name,
			ID:         r.ID,
			StartPoint: r.StartPoint,
			EndPoint:   r.EndPoint,
			StartIndex: r.StartIndex,
			EndIndex:   r.EndIndex,
			Opacity:    opacity,
			Red:        r.Tint[0],
			Green:      r.Tint[1],
			Blue:       r.Tint[2],
		}
		t.regionIdx[r.Name] = i
	}
	for i, b := range a.Bones {
		t.bones[i] = pose.Bone{
			Name:       b.Name,
			Parent:     b.Parent,
			WorldStart: b.Start,
			WorldEnd:   b.End,
		}
		t.boneIdx[b.Name] = i
		if b.Parent == "" {
			t.root = b.Name
		}
	}
	for _, b := range a.Bones {
		if b.Parent == "" {
			continue
		}
		parent := &t.bones[t.boneIdx[b.Parent]]
		parent.Children = append(parent.Children, b.Name)
	}
	return t
}

func (t *topology) NumPoints() int { return len(t.points) / 3 }
func (t *topology) NumIndices() int { return len(t.indices) }
func (t *topology) Indices() []uint32 { return t.indices }
func (t *topology) Points() []float32 { return t.points }
func (t *topology) UVs() []float32 { return t.uvs }
func (t *topology) Regions() []pose.Region { return t.regions }
func (t *topology) Bones() []pose.Bone { return t.bones }
func (t *topology) RootBone() string { return t.root }

func (t *topology) Region(name string) (pose.Region, bool) {
	i, ok := t.regionIdx[name]
	if !ok {
		return pose.Region{}, false
	}
	return t.regions[i], true
}

func (t *topology) Bone(name string) (pose.Bone, bool) {
	i, ok := t.boneIdx[name]
	if !ok {
		return pose.Bone{}, false
	}
	return t.bones[i], true
}
