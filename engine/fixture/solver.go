package fixture

import (
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"github.com/go-gl/mathgl/mgl32"
)

// pointCache holds baked point positions of one clip, one frame every step frames.
type pointCache struct {
	start  float32
	step   float32
	frames [][]float32
}

type solver struct {
	asset *Asset
	topo  *topology

	clips map[string]pose.Clip

	active    string
	runTime   float32
	timeScale float32
	looping   bool
	playing   bool

	autoBlend   bool
	blendTarget string
	blendFactor float32
	blendWeight float32

	cacheEnabled bool
	caches       map[string]*pointCache

	items   map[string]int
	anchors bool
}

var _ pose.Solver = &solver{}

func newSolver(a *Asset) *solver {
	return &solver{
		asset:     a,
		topo:      newTopology(a),
		clips:     make(map[string]pose.Clip),
		timeScale: DefaultTimeScale,
		looping:   true,
		caches:    make(map[string]*pointCache),
		items:     make(map[string]int),
	}
}

func (s *solver) Topology() pose.Topology {
	return s.topo
}

func (s *solver) Update(dt float32) {
	clip, ok := s.clips[s.active]
	if !ok {
		s.pose(nil, 0)
		return
	}

	if s.playing {
		s.runTime = s.advance(clip, s.runTime+dt*s.timeScale)
	}

	if s.autoBlend && s.blendTarget != "" && dt > 0 {
		s.blendWeight += s.blendFactor
		if s.blendWeight >= 1 {
			s.active = s.blendTarget
			s.blendTarget = ""
			s.blendWeight = 0
			clip = s.clips[s.active]
			s.runTime = s.advance(clip, s.runTime)
		}
	}

	s.pose(clip, s.runTime)
}

func (s *solver) advance(clip pose.Clip, t float32) float32 {
	start, end := clip.StartTime(), clip.EndTime()
	if t <= end {
		return max(t, start)
	}
	if !s.looping {
		return end
	}
	span := end - start
	if span <= 0 {
		return start
	}
	return start + float32(math.Mod(float64(t-start), float64(span)))
}

func (s *solver) RunTime() float32 {
	return s.runTime
}

func (s *solver) SetRunTime(t float32) {
	s.runTime = t
}

func (s *solver) ResetToStartTimes() {
	if clip, ok := s.clips[s.active]; ok {
		s.runTime = clip.StartTime()
	}
}

func (s *solver) TimeScale() float32 {
	return s.timeScale
}

func (s *solver) SetTimeScale(scale float32) {
	s.timeScale = scale
}

func (s *solver) AddAnimation(clip pose.Clip) {
	s.clips[clip.Name()] = clip
}

func (s *solver) HasAnimation(name string) bool {
	_, ok := s.clips[name]
	return ok
}

func (s *solver) Clip(name string) (pose.Clip, bool) {
	c, ok := s.clips[name]
	return c, ok
}

func (s *solver) ActiveAnimation() string {
	return s.active
}

func (s *solver) SetActiveAnimation(name string) bool {
	clip, ok := s.clips[name]
	if !ok {
		return false
	}
	s.active = name
	s.blendTarget = ""
	s.blendWeight = 0
	s.runTime = clip.StartTime()
	return true
}

func (s *solver) SetLooping(looping bool) {
	s.looping = looping
}

func (s *solver) SetPlaying(playing bool) {
	s.playing = playing
}

func (s *solver) SetAutoBlending(enabled bool) {
	s.autoBlend = enabled
	if !enabled {
		s.blendTarget = ""
		s.blendWeight = 0
	}
}

func (s *solver) AutoBlendTo(name string, factor float32) {
	if !s.HasAnimation(name) {
		return
	}
	if s.active == "" {
		s.SetActiveAnimation(name)
		return
	}
	if name == s.active {
		s.blendTarget = ""
		s.blendWeight = 0
		return
	}
	s.blendTarget = name
	s.blendFactor = factor
	s.blendWeight = 0
}

func (s *solver) SetPointCache(enabled bool) {
	s.cacheEnabled = enabled
}

func (s *solver) MakePointCache(name string, approximation int) {
	clip, ok := s.clips[name]
	if !ok {
		return
	}
	step := float32(max(approximation, 1))
	pc := &pointCache{start: clip.StartTime(), step: step}
	for t := clip.StartTime(); t <= clip.EndTime(); t += step {
		pts := make([]float32, len(s.topo.points))
		s.posePoints(clip, t, pts)
		pc.frames = append(pc.frames, pts)
	}
	s.caches[name] = pc
}

func (s *solver) ClearPointCache(name string) {
	delete(s.caches, name)
}

func (s *solver) SetRegionItemSwap(region string, tag int) {
	s.items[region] = tag
}

func (s *solver) RemoveRegionItemSwap(region string) {
	delete(s.items, region)
}

func (s *solver) SetAnchorPointsActive(active bool) {
	s.anchors = active
}

func (s *solver) AnchorPointsActive() bool {
	return s.anchors
}

// pose evaluates the clip at t into the topology. A nil clip poses the rest pose.
func (s *solver) pose(clip pose.Clip, t float32) {
	for i, r := range s.asset.Regions {
		opacity := float32(100)
		if r.Opacity != nil {
			opacity = *r.Opacity
		}
		if def := clipDef(clip); def != nil {
			if keys := def.Regions[r.Name]; len(keys) > 0 {
				opacity, _ = sampleRegion(keys, t)
			}
		}
		s.topo.regions[i].Opacity = opacity
	}

	for i, b := range s.asset.Bones {
		start, end := mgl32.Vec3(b.Start), mgl32.Vec3(b.End)
		if def := clipDef(clip); def != nil {
			if keys := def.Bones[b.Name]; len(keys) > 0 {
				start, end = sampleBone(keys, t)
			}
		}
		if target := clipDef(s.clips[s.blendTarget]); target != nil && s.blendTarget != "" {
			if keys := target.Bones[b.Name]; len(keys) > 0 {
				ts, te := sampleBone(keys, t)
				start = lerpVec(start, ts, s.blendWeight)
				end = lerpVec(end, te, s.blendWeight)
			}
		}
		s.topo.bones[i].WorldStart = start
		s.topo.bones[i].WorldEnd = end
	}

	if pc, ok := s.caches[s.active]; ok && s.cacheEnabled && len(pc.frames) > 0 {
		frame := int((t - pc.start) / pc.step)
		frame = min(max(frame, 0), len(pc.frames)-1)
		copy(s.topo.points, pc.frames[frame])
	} else {
		s.posePoints(clip, t, s.topo.points)
	}
	s.applyAnchor(s.topo.points)
	s.poseUVs()
}

// applyAnchor moves the active clip's anchor point to the origin.
func (s *solver) applyAnchor(points []float32) {
	if !s.anchors || s.asset.Meta == nil {
		return
	}
	anchor, ok := s.asset.Meta.AnchorPoints[s.active]
	if !ok {
		return
	}
	for i := 0; i+2 < len(points); i += 3 {
		points[i] -= anchor[0]
		points[i+1] -= anchor[1]
	}
}

// poseUVs rewrites the texture coordinates, offsetting regions that show a swapped item.
func (s *solver) poseUVs() {
	for i, uv := range s.asset.UVs {
		copy(s.topo.uvs[2*i:2*i+2], uv[:])
	}
	for _, r := range s.asset.Regions {
		tag, ok := s.items[r.Name]
		if !ok {
			continue
		}
		offset, ok := r.Items[tag]
		if !ok {
			continue
		}
		for p := r.StartPoint; p <= r.EndPoint; p++ {
			s.topo.uvs[2*p] += offset[0]
			s.topo.uvs[2*p+1] += offset[1]
		}
	}
}

func (s *solver) posePoints(clip pose.Clip, t float32, out []float32) {
	for i, p := range s.asset.Points {
		copy(out[3*i:3*i+3], p[:])
	}
	def := clipDef(clip)
	if def == nil {
		return
	}
	for _, r := range s.asset.Regions {
		keys := def.Regions[r.Name]
		if len(keys) == 0 {
			continue
		}
		_, offset := sampleRegion(keys, t)
		for p := r.StartPoint; p <= r.EndPoint; p++ {
			out[3*p] += offset[0]
			out[3*p+1] += offset[1]
		}
	}
}

func clipDef(clip pose.Clip) *ClipDef {
	if c, ok := clip.(*Clip); ok && c != nil {
		return c.def
	}
	return nil
}

// bracket returns the indices of the keys surrounding t and the interpolation weight between them.
func bracket(n int, frame func(int) float32, t float32) (int, int, float32) {
	hi := sort.Search(n, func(i int) bool { return frame(i) >= t })
	switch {
	case hi == 0:
		return 0, 0, 0
	case hi == n:
		return n - 1, n - 1, 0
	}
	lo := hi - 1
	span := frame(hi) - frame(lo)
	if span <= 0 {
		return hi, hi, 0
	}
	return lo, hi, (t - frame(lo)) / span
}

func sampleBone(keys []BoneKey, t float32) (mgl32.Vec3, mgl32.Vec3) {
	lo, hi, w := bracket(len(keys), func(i int) float32 { return keys[i].Frame }, t)
	a, b := keys[lo], keys[hi]
	return lerpVec(a.Start, b.Start, w), lerpVec(a.End, b.End, w)
}

func sampleRegion(keys []RegionKey, t float32) (float32, [2]float32) {
	lo, hi, w := bracket(len(keys), func(i int) float32 { return keys[i].Frame }, t)
	a, b := keys[lo], keys[hi]
	opacity := a.Opacity + (b.Opacity-a.Opacity)*w
	offset := [2]float32{
		a.Offset[0] + (b.Offset[0]-a.Offset[0])*w,
		a.Offset[1] + (b.Offset[1]-a.Offset[1])*w,
	}
	return opacity, offset
}

func lerpVec(a, b mgl32.Vec3, w float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(w))
}
