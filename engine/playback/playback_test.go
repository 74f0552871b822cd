package playback

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

type fakeClip struct {
	name       string
	start, end float32
}

func (c *fakeClip) Name() string { return c.name }
func (c *fakeClip) StartTime() float32 { return c.start }
func (c *fakeClip) EndTime() float32 { return c.end }
func (c *fakeClip) TimeScale() float32 { return 1 }
func (c *fakeClip) SetTimeRange(start, end float32) { c.start, c.end = start, end }

// fakeSolver advances its clock by dt*timeScale and records the calls that matter here.
type fakeSolver struct {
	pose.Solver

	clips     map[string]*fakeClip
	active    string
	runTime   float32
	timeScale float32
	looping   bool
	playing   bool

	updates     []float32
	autoBlend   bool
	blendTarget string
	blendFactor float32
	resets      int
}

func newFakeSolver() *fakeSolver {
	return &fakeSolver{
		clips: map[string]*fakeClip{
			"walk": {name: "walk", start: 0, end: 100},
			"run":  {name: "run", start: 0, end: 40},
		},
		active:    "walk",
		timeScale: 1,
	}
}

func (s *fakeSolver) Update(dt float32) {
	s.updates = append(s.updates, dt)
	if s.playing {
		s.runTime += dt * s.timeScale
	}
}
func (s *fakeSolver) RunTime() float32 { return s.runTime }
func (s *fakeSolver) SetRunTime(t float32) { s.runTime = t }
func (s *fakeSolver) ResetToStartTimes() { s.resets++; s.runTime = s.clips[s.active].start }
func (s *fakeSolver) TimeScale() float32 { return s.timeScale }
func (s *fakeSolver) SetTimeScale(v float32) { s.timeScale = v }
func (s *fakeSolver) ActiveAnimation() string { return s.active }
func (s *fakeSolver) SetLooping(v bool) { s.looping = v }
func (s *fakeSolver) SetPlaying(v bool) { s.playing = v }
func (s *fakeSolver) SetAutoBlending(v bool) { s.autoBlend = v }
func (s *fakeSolver) HasAnimation(n string) bool { _, ok := s.clips[n]; return ok }

func (s *fakeSolver) Clip(name string) (pose.Clip, bool) {
	c, ok := s.clips[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (s *fakeSolver) SetActiveAnimation(name string) bool {
	if _, ok := s.clips[name]; !ok {
		return false
	}
	s.active = name
	return true
}

func (s *fakeSolver) AutoBlendTo(name string, factor float32) {
	s.blendTarget, s.blendFactor = name, factor
}

type fakeMorph struct {
	valid bool
	steps int
}

func (m *fakeMorph) MorphValid() bool { return m.valid }
func (m *fakeMorph) UpdateMorphStep(pose.Solver, float32) { m.steps++ }

func TestStartEdgeFiresOnce(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s, WithLooping(false))
	if c.Phase() != PhasePlayPendingStart {
		t.Fatalf("phase = %v", c.Phase())
	}

	s.runTime = 0.005
	c.Tick(0.001)
	if !c.TakeStarted() {
		t.Fatal("start edge not raised at 0.005")
	}
	if c.TakeStarted() {
		t.Fatal("start signal must be cleared by the read")
	}
	for range 3 {
		c.Tick(0.001)
		if c.TakeStarted() {
			t.Fatal("start edge raised twice")
		}
	}
	if c.Phase() != PhasePlayPendingEnd {
		t.Fatalf("phase = %v", c.Phase())
	}
}

func TestEndEdgeStopsPlayback(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s, WithLooping(false))

	s.runTime = 99.2
	c.Tick(0)
	if c.TakeEnded() {
		t.Fatal("end edge requires elapsed time")
	}
	c.Tick(0.016)
	if !c.TakeEnded() {
		t.Fatal("end edge not raised at 99.2")
	}
	if c.Playing() || c.Phase() != PhaseStopped {
		t.Fatal("end edge must clear should-play")
	}
	updates := len(s.updates)
	c.Tick(0.016)
	if c.TakeEnded() {
		t.Fatal("end edge raised twice")
	}
	if len(s.updates) != updates {
		t.Fatal("stopped playback must not advance the solver")
	}
}

func TestLoopingRaisesNoEdges(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s)
	if !s.looping || !s.playing {
		t.Fatal("controller must configure the solver")
	}
	s.runTime = 0
	c.Tick(1)
	s.runTime = 99.5
	c.Tick(1)
	if c.TakeStarted() || c.TakeEnded() {
		t.Fatal("looping playback raised an edge")
	}
	if c.Phase() != PhasePlaying {
		t.Fatalf("phase = %v", c.Phase())
	}
}

func TestSetPlayingRearmsOnlyWhenStarting(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s, WithLooping(false))
	s.runTime = 0
	c.Tick(0.001)
	c.TakeStarted()

	c.SetPlaying(false)
	if st := c.State(); !st.StartDone {
		t.Fatal("pausing must not re-arm edges")
	}
	c.SetPlaying(true)
	if st := c.State(); st.StartDone || st.EndDone {
		t.Fatal("playing must re-arm edges")
	}
	s.runTime = 0
	c.Tick(0.001)
	if !c.TakeStarted() {
		t.Fatal("start edge must re-trigger after replay")
	}
}

func TestResetToStartAndEnd(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s, WithLooping(false))
	s.runTime = 99.5
	c.Tick(1)
	c.TakeEnded()

	c.ResetToStart()
	if s.runTime != 0 || s.resets != 1 || c.Frame() != 0 {
		t.Fatalf("runTime = %v frame = %v", s.runTime, c.Frame())
	}
	if last := s.updates[len(s.updates)-1]; last != 0 {
		t.Fatalf("reset must force a zero update, got %v", last)
	}
	if st := c.State(); st.StartDone || st.EndDone || st.ShouldPlay {
		t.Fatalf("state after reset = %+v", st)
	}

	c.ResetToEnd()
	if s.runTime != 100 || c.Frame() != 100 {
		t.Fatalf("runTime = %v", s.runTime)
	}

	c.PlayFromStart()
	if !c.Playing() || s.runTime != 0 {
		t.Fatal("PlayFromStart must reset and play")
	}
}

func TestSetFrame(t *testing.T) {
	s := newFakeSolver()
	s.timeScale = 60
	c := NewController(s)
	s.runTime = 30

	c.SetFrame(90)
	if got := s.updates[len(s.updates)-1]; got != 1 {
		t.Fatalf("update dt = %v, want 1", got)
	}
	if c.Frame() != 90 {
		t.Fatalf("Frame = %v", c.Frame())
	}
}

func TestBlending(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s)

	if c.BlendTo("fly", 0.5) {
		t.Fatal("blend to unknown clip must fail")
	}
	if c.SmoothTransitions() {
		t.Fatal("failed blend must not enable smooth transitions")
	}

	tests := []struct {
		in, want float32
	}{
		{0, 0.001},
		{0.5, 0.5},
		{3, 1},
	}
	for _, tt := range tests {
		if !c.BlendTo("run", tt.in) {
			t.Fatal("BlendTo failed")
		}
		if s.blendFactor != tt.want || s.blendTarget != "run" || !s.autoBlend {
			t.Errorf("factor %v: solver got %v %q %v", tt.in, s.blendFactor, s.blendTarget, s.autoBlend)
		}
	}

	if !c.SetActiveAnimation("run") || s.autoBlend {
		t.Fatal("hard switch must disable blending")
	}
	if !c.SmoothTransitions() {
		t.Fatal("smooth transitions stay on once requested")
	}
}

func TestMorphTargetsReplaceUpdate(t *testing.T) {
	s := newFakeSolver()
	c := NewController(s)
	m := &fakeMorph{valid: true}

	c.SetMorphTargets(m, true)
	c.Tick(0.1)
	if m.steps != 1 || len(s.updates) != 0 {
		t.Fatalf("morph steps = %d, updates = %d", m.steps, len(s.updates))
	}

	m.valid = false
	c.Tick(0.1)
	if m.steps != 1 || len(s.updates) != 1 {
		t.Fatal("invalid morph data must fall back to Update")
	}
}
