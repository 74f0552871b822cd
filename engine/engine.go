// Package engine runs the headless tick and render loops that drive creature directors.
package engine

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/engine/director"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/profiler"
)

// engine implements the Engine interface.
// Coordinates the tick, render and quit goroutines.
type engine struct {
	mu              sync.RWMutex
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	logger           logging.Logger
	tickProfiler     *profiler.Profiler
	renderProfiler   *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	directors map[int]director.Director

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxTicks         int64         // quit after this many ticks; 0 = unlimited
	ticks            atomic.Int64
}

// Engine is the main entry point for a headless host.
// It advances registered directors at a fixed rate and runs a render loop that reads their
// snapshots through the render callback.
type Engine interface {
	// EnableProfiler enables tick and render rate output to the log.
	EnableProfiler()

	// DisableProfiler disables rate output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after every active
	// director has been ticked.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame. Use it to read
	// instance snapshots and upload them.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddDirector registers a director at the given key. Directors tick in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key
	//   - d: the Director to register
	AddDirector(key int, d director.Director)

	// RemoveDirector removes the director at the given key.
	RemoveDirector(key int)

	// Director retrieves the director registered at the given key. Returns nil if not found.
	Director(key int) director.Director

	// Directors returns a copy of all registered directors keyed by order.
	Directors() map[int]director.Director

	// Ticks returns the number of ticks run so far.
	Ticks() int64

	// Run starts the loops and blocks until Quit is called or the tick limit is reached.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		directors:       make(map[int]director.Director),
		logger:          logging.Default(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.logger = e.logger.WithComponent("engine")
	e.tickProfiler = profiler.NewProfiler(e.logger, "tick")
	e.renderProfiler = profiler.NewProfiler(e.logger, "render")
	return e
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	e.wg.Wait()
	e.running.Store(false)
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// orderedDirectors returns the registered directors in ascending key order.
func (e *engine) orderedDirectors() []director.Director {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]int, 0, len(e.directors))
	for k := range e.directors {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]director.Director, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.directors[k])
	}
	return out
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Ticks every active director, then fires the tick callback, and listens for dynamic rate
// changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			for _, d := range e.orderedDirectors() {
				d.Tick(dt)
			}
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
			if e.profilingEnabled.Load() {
				e.tickProfiler.Tick()
			}

			if n := e.ticks.Add(1); e.maxTicks > 0 && n >= e.maxTicks {
				e.signalQuit()
				return
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", logging.WithField("panic", r))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled.Load() {
				e.renderProfiler.Tick()
			}

			// Frame rate limiting; uncapped frames still sleep 1ms.
			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - time.Since(lastRender); remaining > 0 {
					time.Sleep(remaining)
				}
			} else {
				time.Sleep(time.Millisecond)
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send; a pending update is replaced.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddDirector(key int, d director.Director) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.directors[key] = d
}

func (e *engine) RemoveDirector(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.directors, key)
}

func (e *engine) Director(key int) director.Director {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.directors[key]
}

func (e *engine) Directors() map[int]director.Director {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]director.Director, len(e.directors))
	for k, v := range e.directors {
		cp[k] = v
	}
	return cp
}

func (e *engine) Ticks() int64 {
	return e.ticks.Load()
}
