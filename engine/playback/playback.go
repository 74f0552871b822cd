// Package playback owns an instance's playback flags and detects animation start and end edges.
package playback

import (
	"math"

	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

const (
	// StartTolerance is how close to the clip start the clock must be to raise the start edge.
	StartTolerance float32 = 0.01
	// EndLead is how many frames before the clip end the end edge is raised.
	EndLead float32 = 1.0

	minBlendFactor float32 = 0.001
	maxBlendFactor float32 = 1.0
)

// Phase is the playback state derived from the flags.
type Phase int

const (
	// PhaseStopped means the clock is not advanced.
	PhaseStopped Phase = iota
	// PhasePlaying means the clock advances and no edge is pending, e.g. while looping.
	PhasePlaying
	// PhasePlayPendingStart means the start edge has not been raised yet.
	PhasePlayPendingStart
	// PhasePlayPendingEnd means the start edge was raised and the end edge is pending.
	PhasePlayPendingEnd
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePlayPendingStart:
		return "pending-start"
	case PhasePlayPendingEnd:
		return "pending-end"
	}
	return "stopped"
}

// State is a copy of the playback flags and clock.
type State struct {
	ShouldPlay  bool
	Looping     bool
	StartDone   bool
	EndDone     bool
	RunTime     float32
	TimeScale   float32
	BlendTarget string
	BlendFactor float32
}

// controller is the implementation of the Controller interface.
type controller struct {
	solver pose.Solver

	shouldPlay bool
	looping    bool
	startDone  bool
	endDone    bool

	started bool
	ended   bool

	frame float32

	smoothTransitions bool
	blendTarget       string
	blendFactor       float32

	morph    pose.MorphStepper
	runMorph bool
}

// Controller drives a solver's clock and raises one-shot start and end signals for non-looping
// playback. It is not safe for concurrent use; the owning instance serializes calls.
type Controller interface {
	// Tick checks for edges at the current run time and then advances the solver by dt if
	// playback is on.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Tick(dt float32)

	// Phase returns the state derived from the flags.
	Phase() Phase

	// State returns a copy of the flags and clock.
	State() State

	// TakeStarted returns and clears the start signal.
	TakeStarted() bool

	// TakeEnded returns and clears the end signal.
	TakeEnded() bool

	// Playing reports whether the clock is advanced on Tick.
	Playing() bool

	// SetPlaying starts or stops playback. Starting re-arms both edges; stopping leaves them.
	SetPlaying(play bool)

	// Looping reports whether the clip wraps.
	Looping() bool

	// SetLooping sets whether the clip wraps.
	SetLooping(loop bool)

	// TimeScale returns the frames advanced per second.
	TimeScale() float32

	// SetTimeScale sets the frames advanced per second.
	SetTimeScale(scale float32)

	// Frame returns the run time observed at the last Tick or jump.
	Frame() float32

	// SetFrame jumps the clock to t by advancing the solver by the equivalent time.
	SetFrame(t float32)

	// ResetToStart moves to the clip start, reposes immediately and re-arms both edges.
	ResetToStart()

	// ResetToEnd moves to the clip end, reposes immediately and re-arms both edges.
	ResetToEnd()

	// PlayFromStart resets to the start and starts playback.
	PlayFromStart()

	// ActiveAnimation returns the active clip name.
	ActiveAnimation() string

	// SetActiveAnimation hard-switches to a clip and disables blending.
	//
	// Returns:
	//   - bool: false if the clip is not registered
	SetActiveAnimation(name string) bool

	// BlendTo cross-fades to a clip. The factor is clamped to [0.001, 1] and smooth transitions
	// stay enabled from then on.
	//
	// Returns:
	//   - bool: false if the clip is not registered
	BlendTo(name string, factor float32) bool

	// SmoothTransitions reports whether blending has ever been requested or enabled.
	SmoothTransitions() bool

	// SetMorphTargets sets the morph stepper used instead of Update while run is set and the
	// stepper reports valid data.
	SetMorphTargets(stepper pose.MorphStepper, run bool)
}

var _ Controller = &controller{}

// NewController creates a Controller for solver with the provided options applied. Playback
// starts enabled and looping.
//
// Parameters:
//   - solver: the pose solver to drive
//   - options: a variadic list of ControllerBuilderOption functions
//
// Returns:
//   - Controller: the controller
func NewController(solver pose.Solver, options ...ControllerBuilderOption) Controller {
	c := &controller{
		solver:     solver,
		shouldPlay: true,
		looping:    true,
	}
	for _, option := range options {
		option(c)
	}
	solver.SetLooping(c.looping)
	solver.SetPlaying(true)
	if c.smoothTransitions {
		solver.SetAutoBlending(true)
	}
	c.frame = solver.RunTime()
	return c
}

func (c *controller) Tick(dt float32) {
	c.detectEdges(dt)
	if !c.shouldPlay {
		return
	}
	if c.runMorph && c.morph != nil && c.morph.MorphValid() {
		c.morph.UpdateMorphStep(c.solver, dt)
		return
	}
	c.solver.Update(dt)
}

func (c *controller) detectEdges(dt float32) {
	rt := c.solver.RunTime()
	c.frame = rt

	clip, ok := c.solver.Clip(c.solver.ActiveAnimation())
	if !ok || c.looping || !c.shouldPlay {
		return
	}

	if !c.startDone && float32(math.Abs(float64(rt-clip.StartTime()))) <= StartTolerance {
		c.startDone = true
		c.started = true
	}
	if !c.endDone && dt > 0 && rt+EndLead >= clip.EndTime() {
		c.endDone = true
		c.shouldPlay = false
		c.ended = true
	}
}

func (c *controller) Phase() Phase {
	switch {
	case !c.shouldPlay:
		return PhaseStopped
	case c.looping:
		return PhasePlaying
	case !c.startDone:
		return PhasePlayPendingStart
	case !c.endDone:
		return PhasePlayPendingEnd
	}
	return PhasePlaying
}

func (c *controller) State() State {
	return State{
		ShouldPlay:  c.shouldPlay,
		Looping:     c.looping,
		StartDone:   c.startDone,
		EndDone:     c.endDone,
		RunTime:     c.solver.RunTime(),
		TimeScale:   c.solver.TimeScale(),
		BlendTarget: c.blendTarget,
		BlendFactor: c.blendFactor,
	}
}

func (c *controller) TakeStarted() bool {
	v := c.started
	c.started = false
	return v
}

func (c *controller) TakeEnded() bool {
	v := c.ended
	c.ended = false
	return v
}

func (c *controller) Playing() bool {
	return c.shouldPlay
}

func (c *controller) SetPlaying(play bool) {
	c.shouldPlay = play
	if play {
		c.rearm()
	}
}

func (c *controller) rearm() {
	c.startDone = false
	c.endDone = false
}

func (c *controller) Looping() bool {
	return c.looping
}

func (c *controller) SetLooping(loop bool) {
	c.looping = loop
	c.solver.SetLooping(loop)
}

func (c *controller) TimeScale() float32 {
	return c.solver.TimeScale()
}

func (c *controller) SetTimeScale(scale float32) {
	c.solver.SetTimeScale(scale)
}

func (c *controller) Frame() float32 {
	return c.frame
}

func (c *controller) SetFrame(t float32) {
	if ts := c.solver.TimeScale(); ts != 0 {
		c.solver.Update((t - c.solver.RunTime()) / ts)
	} else {
		c.solver.SetRunTime(t)
		c.solver.Update(0)
	}
	c.frame = c.solver.RunTime()
}

func (c *controller) ResetToStart() {
	c.solver.ResetToStartTimes()
	c.frame = c.solver.RunTime()
	c.solver.Update(0)
	c.rearm()
}

func (c *controller) ResetToEnd() {
	if clip, ok := c.solver.Clip(c.solver.ActiveAnimation()); ok {
		c.solver.SetRunTime(clip.EndTime())
		c.frame = clip.EndTime()
		c.solver.Update(0)
	}
	c.rearm()
}

func (c *controller) PlayFromStart() {
	c.ResetToStart()
	c.SetPlaying(true)
}

func (c *controller) ActiveAnimation() string {
	return c.solver.ActiveAnimation()
}

func (c *controller) SetActiveAnimation(name string) bool {
	ok := c.solver.SetActiveAnimation(name)
	c.solver.SetAutoBlending(false)
	c.blendTarget = ""
	return ok
}

func (c *controller) BlendTo(name string, factor float32) bool {
	if !c.solver.HasAnimation(name) {
		return false
	}
	factor = common.Clamp(factor, minBlendFactor, maxBlendFactor)
	c.smoothTransitions = true
	c.blendTarget = name
	c.blendFactor = factor
	c.solver.SetAutoBlending(true)
	c.solver.AutoBlendTo(name, factor)
	return true
}

func (c *controller) SmoothTransitions() bool {
	return c.smoothTransitions
}

func (c *controller) SetMorphTargets(stepper pose.MorphStepper, run bool) {
	c.morph = stepper
	c.runMorph = run
}
