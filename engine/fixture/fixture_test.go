package fixture

import (
	"errors"
	"path/filepath"
	"testing"
)

func loadTwoRegions(t *testing.T) *Packet {
	t.Helper()
	pkt, err := NewParser().ParseFile(filepath.Join("testdata", "two_regions.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return pkt.(*Packet)
}

func TestParseFile(t *testing.T) {
	pkt := loadTwoRegions(t)

	names := pkt.AnimationNames()
	if len(names) != 2 || names[0] != "idle" || names[1] != "wave" {
		t.Fatalf("AnimationNames = %v", names)
	}

	s, err := pkt.NewSolver()
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	topo := s.Topology()
	if topo.NumPoints() != 8 || topo.NumIndices() != 12 {
		t.Fatalf("got %d points %d indices", topo.NumPoints(), topo.NumIndices())
	}
	if topo.RootBone() != "root" {
		t.Errorf("RootBone = %q", topo.RootBone())
	}
	root, _ := topo.Bone("root")
	if len(root.Children) != 1 || root.Children[0] != "forearm" {
		t.Errorf("root children = %v", root.Children)
	}
	arm, ok := topo.Region("arm")
	if !ok || arm.Opacity != 50 {
		t.Errorf("arm region = %+v, %v", arm, ok)
	}
}

func TestParseSourceRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index out of range", "points: [[0,0,0]]\nindices: [0, 0, 1]\n"},
		{"partial triangle", "points: [[0,0,0]]\nindices: [0, 0]\n"},
		{"region past points", "points: [[0,0,0]]\nindices: [0,0,0]\nregions:\n  - {name: a, start_point: 0, end_point: 3, start_index: 0, end_index: 2}\n"},
		{"orphan bone", "bones:\n  - {name: a, parent: missing}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseSource(tt.name, []byte(tt.src))
			if !errors.Is(err, ErrInvalidAsset) {
				t.Fatalf("err = %v, want ErrInvalidAsset", err)
			}
		})
	}
}

func TestSolverAdvancesAndLoops(t *testing.T) {
	pkt := loadTwoRegions(t)
	s, _ := pkt.NewSolver()
	clip, _ := pkt.Clip("idle")
	s.AddAnimation(clip)
	if !s.SetActiveAnimation("idle") {
		t.Fatal("SetActiveAnimation failed")
	}
	s.SetTimeScale(1)
	s.SetPlaying(true)

	s.Update(50)
	if got := s.RunTime(); got != 50 {
		t.Fatalf("RunTime = %v, want 50", got)
	}
	arm, _ := s.Topology().Region("arm")
	if arm.Opacity != 50 {
		t.Errorf("arm opacity at 50 = %v, want 50", arm.Opacity)
	}
	if y := s.Topology().Points()[3*4+1]; y != 5 {
		t.Errorf("arm point y = %v, want 5", y)
	}

	s.Update(60)
	if got := s.RunTime(); got != 10 {
		t.Errorf("looped RunTime = %v, want 10", got)
	}

	s.SetLooping(false)
	s.Update(500)
	if got := s.RunTime(); got != 100 {
		t.Errorf("clamped RunTime = %v, want 100", got)
	}
}

func TestSolverAutoBlend(t *testing.T) {
	pkt := loadTwoRegions(t)
	s, _ := pkt.NewSolver()
	for _, name := range pkt.AnimationNames() {
		c, _ := pkt.Clip(name)
		s.AddAnimation(c)
	}
	s.SetActiveAnimation("idle")
	s.SetAutoBlending(true)
	s.SetPlaying(true)
	s.AutoBlendTo("wave", 0.5)

	s.Update(0.01)
	if s.ActiveAnimation() != "idle" {
		t.Fatalf("switched too early to %q", s.ActiveAnimation())
	}
	s.Update(0.01)
	if s.ActiveAnimation() != "wave" {
		t.Fatalf("ActiveAnimation = %q, want wave", s.ActiveAnimation())
	}
}

func TestSolverPointCache(t *testing.T) {
	pkt := loadTwoRegions(t)
	s, _ := pkt.NewSolver()
	c, _ := pkt.Clip("idle")
	s.AddAnimation(c)
	s.SetActiveAnimation("idle")
	s.SetTimeScale(1)
	s.SetPlaying(true)
	s.MakePointCache("idle", 10)
	s.SetPointCache(true)

	s.Update(15)
	if y := s.Topology().Points()[3*4+1]; y != 1 {
		t.Errorf("cached y at 15 = %v, want baked frame 10 value 1", y)
	}

	s.ClearPointCache("idle")
	s.Update(0)
	if y := s.Topology().Points()[3*4+1]; y != 1.5 {
		t.Errorf("live y at 15 = %v, want 1.5", y)
	}
}

func TestSolverItemSwapAndAnchors(t *testing.T) {
	pkt := loadTwoRegions(t)
	s, _ := pkt.NewSolver()
	c, _ := pkt.Clip("idle")
	s.AddAnimation(c)
	s.SetActiveAnimation("idle")
	s.Update(0)

	armV := func() float32 { return s.Topology().UVs()[2*4+1] }
	if armV() != 0 {
		t.Fatalf("arm v = %v before swap", armV())
	}

	s.SetRegionItemSwap("arm", 2)
	s.SetRegionItemSwap("body", 9)
	s.Update(0)
	if armV() != 0.5 {
		t.Errorf("arm v = %v, want item offset 0.5", armV())
	}
	if v := s.Topology().UVs()[1]; v != 0 {
		t.Errorf("untagged item must not move body uvs, got %v", v)
	}

	s.RemoveRegionItemSwap("arm")
	s.Update(0)
	if armV() != 0 {
		t.Errorf("arm v = %v after removal", armV())
	}

	if s.AnchorPointsActive() {
		t.Fatal("anchors must start inactive")
	}
	s.SetAnchorPointsActive(true)
	s.Update(0)
	if x := s.Topology().Points()[0]; x != -1 {
		t.Errorf("anchored x = %v, want -1", x)
	}
	s.SetAnchorPointsActive(false)
	s.Update(0)
	if x := s.Topology().Points()[0]; x != 0 {
		t.Errorf("x = %v after disabling anchors", x)
	}
}

func TestMetaRegionOrder(t *testing.T) {
	pkt := loadTwoRegions(t)
	s, _ := pkt.NewSolver()
	meta := pkt.RegionOrderTrack()
	if meta == nil {
		t.Fatal("expected region order track")
	}
	if !meta.HasRegionOrder("idle", 10) || meta.HasRegionOrder("idle", 11) {
		t.Fatal("HasRegionOrder must match the exact keyed frame")
	}

	topo := s.Topology()
	src := topo.Indices()
	dst := make([]uint32, len(src))
	pts := append([]float32(nil), topo.Points()...)
	n := meta.UpdateIndicesAndPoints(dst, src, pts, 0.01, topo, "idle", 12, nil)
	if n != 12 {
		t.Fatalf("count = %d, want 12", n)
	}
	if dst[0] != 4 || dst[6] != 0 {
		t.Errorf("arm must come first, got %v", dst)
	}
	if pts[2] != 0.01 || pts[3*4+2] != 0 {
		t.Errorf("depths body=%v arm=%v", pts[2], pts[3*4+2])
	}

	swap, ok := meta.BuildSkinSwap("armless", topo)
	if !ok || len(swap.Indices) != 6 || !swap.Covers(0) || swap.Covers(1) {
		t.Fatalf("swap = %+v, %v", swap, ok)
	}
	n = meta.UpdateIndicesAndPoints(dst, src, pts, 0.01, topo, "idle", 12, swap)
	if n != 6 {
		t.Errorf("swapped count = %d, want 6", n)
	}
}

func TestQuadsRoundTrip(t *testing.T) {
	src, err := Marshal(Quads("a", "b", "c"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	pkt, err := NewParser().ParseSource("quads", src)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	s, _ := pkt.NewSolver()
	if got := len(s.Topology().Regions()); got != 3 {
		t.Fatalf("regions = %d", got)
	}
}
