package fixture

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

// Meta is the region-order track of an asset.
type Meta struct {
	orders map[string][]OrderKey
	swaps  map[string][]string
}

var _ pose.RegionOrderTrack = &Meta{}

func newMeta(def *MetaDef) *Meta {
	m := &Meta{
		orders: make(map[string][]OrderKey, len(def.RegionOrders)),
		swaps:  def.SkinSwaps,
	}
	for anim, keys := range def.RegionOrders {
		sorted := slices.Clone(keys)
		slices.SortFunc(sorted, func(a, b OrderKey) int { return a.Frame - b.Frame })
		m.orders[anim] = sorted
	}
	return m
}

func (m *Meta) HasRegionOrder(animation string, frame int) bool {
	for _, k := range m.orders[animation] {
		if k.Frame == frame {
			return true
		}
	}
	return false
}

// orderAt returns the order keyed at or before frame, or nil when the animation has none.
func (m *Meta) orderAt(animation string, frame int) []string {
	keys := m.orders[animation]
	var order []string
	for _, k := range keys {
		if k.Frame > frame {
			break
		}
		order = k.Order
	}
	if order == nil && len(keys) > 0 {
		order = keys[0].Order
	}
	return order
}

func (m *Meta) UpdateIndicesAndPoints(dst, src []uint32, points []float32, deltaZ float32, topo pose.Topology, animation string, frame int, swap *pose.SkinSwapSet) int {
	regions := topo.Regions()
	visit := make([]pose.Region, 0, len(regions))
	placed := make(map[string]struct{}, len(regions))
	for _, name := range m.orderAt(animation, frame) {
		if r, ok := topo.Region(name); ok {
			if _, dup := placed[name]; !dup {
				visit = append(visit, r)
				placed[name] = struct{}{}
			}
		}
	}
	for _, r := range regions {
		if _, ok := placed[r.Name]; !ok {
			visit = append(visit, r)
		}
	}

	n := 0
	z := float32(0)
	for _, r := range visit {
		if swap != nil && !swap.Covers(r.ID) {
			continue
		}
		for p := r.StartPoint; p <= r.EndPoint; p++ {
			points[3*p+2] = z
		}
		z += deltaZ
		n += copy(dst[n:], src[r.StartIndex:r.EndIndex+1])
	}
	return n
}

func (m *Meta) BuildSkinSwap(name string, topo pose.Topology) (*pose.SkinSwapSet, bool) {
	names, ok := m.swaps[name]
	if !ok {
		return nil, false
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	src := topo.Indices()
	set := &pose.SkinSwapSet{Regions: make(map[int]struct{}, len(names))}
	for _, r := range topo.Regions() {
		if _, ok := want[r.Name]; !ok {
			continue
		}
		set.Regions[r.ID] = struct{}{}
		set.Indices = append(set.Indices, src[r.StartIndex:r.EndIndex+1]...)
	}
	return set, true
}
