// Package profiler reports loop rate and memory statistics through the engine logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
)

// Profiler tracks the rate of a loop and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         logging.Logger
	label          string
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - l: the logger the stats are written to
//   - label: the name of the profiled loop, e.g. "tick"
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(l logging.Logger, label string, options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         l.WithComponent("profiler"),
		label:          label,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Tick should be called once per loop iteration.
// Logs statistics when the update interval has elapsed: rate, heap usage, allocation rate,
// GC count and pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info(p.label,
		logging.WithField("rate", float64(p.frameCount)/elapsed.Seconds()),
		logging.WithField("heap_mb", allocMB),
		logging.WithField("alloc_mb_s", allocRateMB),
		logging.WithField("gc", gcCount),
		logging.WithField("gc_last_us", lastPauseUs),
		logging.WithField("gc_max_us", maxPauseUs),
		logging.WithField("sys_mb", sysMB),
	)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
