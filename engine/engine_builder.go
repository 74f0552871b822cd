package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-creature/engine/director"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables rate output.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithDirector registers a director at the given key during engine construction.
//
// Parameters:
//   - key: the ordering key (lower ticks first)
//   - d: the Director to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDirector(key int, d director.Director) EngineBuilderOption {
	return func(e *engine) {
		e.directors[key] = d
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxTicks makes Run return after n ticks. 0 runs until Quit.
//
// Parameters:
//   - n: the tick limit
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxTicks(n int64) EngineBuilderOption {
	return func(e *engine) {
		e.maxTicks = max(n, 0)
	}
}

// WithLogger sets the engine's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l logging.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}
