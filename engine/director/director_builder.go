package director

import (
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
)

// DirectorBuilderOption is a functional option for configuring a Director.
// Use the With* functions to create options.
type DirectorBuilderOption func(d *director)

// WithActive sets whether the director ticks its instances.
//
// Parameters:
//   - active: whether the director is active
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithActive(active bool) DirectorBuilderOption {
	return func(d *director) {
		d.active = active
	}
}

// WithInstances registers initial instances, each under a fresh id.
//
// Parameters:
//   - instances: the instances to add
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithInstances(instances ...creature.Creature) DirectorBuilderOption {
	return func(d *director) {
		for _, c := range instances {
			d.Add(c)
		}
	}
}

// WithTickWorkers sets the number of goroutines ticking instances in parallel.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithTickWorkers(n int) DirectorBuilderOption {
	return func(d *director) {
		d.tickWorkers = max(n, 1)
	}
}

// WithLogger sets the director's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithLogger(l logging.Logger) DirectorBuilderOption {
	return func(d *director) {
		if l != nil {
			d.logger = l
		}
	}
}
