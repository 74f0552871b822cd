// Package director groups creature instances and ticks them in parallel on a shared worker pool.
package director

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/google/uuid"
)

const (
	defaultQueueSize = 256
	workerIdle       = 1 * time.Second
)

// Director owns a set of creature instances keyed by id and advances them together.
// Instances share nothing but their asset cache, so each tick fans out one task per instance.
// Thread-safe for concurrent access.
type Director interface {
	// Name returns the director's identifier.
	Name() string

	// Active returns whether Tick advances the instances.
	Active() bool

	// SetActive sets whether Tick advances the instances.
	SetActive(active bool)

	// Add registers an instance and returns its id.
	//
	// Parameters:
	//   - c: the instance, loaded or not
	//
	// Returns:
	//   - uuid.UUID: the assigned id
	Add(c creature.Creature) uuid.UUID

	// Get retrieves an instance by id. Returns nil if not found.
	Get(id uuid.UUID) creature.Creature

	// Remove unregisters an instance.
	//
	// Returns:
	//   - bool: false if the id was not registered
	Remove(id uuid.UUID) bool

	// Count returns the number of registered instances.
	Count() int

	// IDs returns every registered id in a stable order.
	IDs() []uuid.UUID

	// Each calls fn for every instance in IDs order. fn must not call back into the director.
	Each(fn func(id uuid.UUID, c creature.Creature))

	// Tick advances every instance by dt in parallel and waits for all of them.
	//
	// Parameters:
	//   - dt: elapsed seconds
	//
	// Returns:
	//   - int: the number of instances that recomputed their output
	Tick(dt float32) int

	// Clear unregisters every instance.
	Clear()

	// Release stops the worker pool. Tick is a no-op afterwards.
	Release()
}

// director implements the Director interface.
type director struct {
	mu     sync.RWMutex
	name   string
	active bool
	logger logging.Logger

	registry map[uuid.UUID]creature.Creature
	order    []uuid.UUID

	// tickPool runs one task per instance; a WaitGroup gives the per-tick barrier.
	tickPool    worker.DynamicWorkerPool
	tickWorkers int
	released    atomic.Bool
	releaseOnce sync.Once
}

var _ Director = &director{}

// NewDirector creates an active Director with the provided options applied.
//
// Parameters:
//   - name: the director's identifier
//   - options: a variadic list of DirectorBuilderOption functions
//
// Returns:
//   - Director: the newly created director
func NewDirector(name string, options ...DirectorBuilderOption) Director {
	d := &director{
		name:        name,
		active:      true,
		logger:      logging.Default(),
		registry:    make(map[uuid.UUID]creature.Creature),
		tickWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(d)
	}
	d.logger = d.logger.WithComponent("director")
	d.tickPool = worker.NewDynamicWorkerPool(d.tickWorkers, defaultQueueSize, workerIdle)
	return d
}

func (d *director) Name() string {
	return d.name
}

func (d *director) Active() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

func (d *director) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = active
}

func (d *director) Add(c creature.Creature) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.New()
	d.registry[id] = c
	d.order = append(d.order, id)
	d.logger.Debug("instance added", logging.WithField("id", id), logging.WithField("asset", c.AssetKey()))
	return id
}

func (d *director) Get(id uuid.UUID) creature.Creature {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.registry[id]
}

func (d *director) Remove(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.registry[id]; !ok {
		return false
	}
	delete(d.registry, id)
	d.order = slices.DeleteFunc(d.order, func(v uuid.UUID) bool { return v == id })
	return true
}

func (d *director) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.registry)
}

func (d *director) IDs() []uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

func (d *director) Each(fn func(id uuid.UUID, c creature.Creature)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, id := range d.order {
		fn(id, d.registry[id])
	}
}

func (d *director) Tick(dt float32) int {
	if d.released.Load() {
		return 0
	}

	d.mu.RLock()
	if !d.active {
		d.mu.RUnlock()
		return 0
	}
	instances := make([]creature.Creature, 0, len(d.order))
	for _, id := range d.order {
		instances = append(instances, d.registry[id])
	}
	d.mu.RUnlock()

	var wg sync.WaitGroup
	var ticked atomic.Int32
	for i, c := range instances {
		wg.Add(1)
		d.tickPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if c.Tick(dt) {
					ticked.Add(1)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return int(ticked.Load())
}

func (d *director) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registry = make(map[uuid.UUID]creature.Creature)
	d.order = nil
}

func (d *director) Release() {
	d.releaseOnce.Do(func() {
		d.released.Store(true)
		d.tickPool.Stop()
	})
}
