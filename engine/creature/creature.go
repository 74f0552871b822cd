// Package creature is the per-instance core: it owns one solver, its playback state, draw buffer
// and bone table, and recomposes them every tick under a single guard.
package creature

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/compositor"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/playback"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"github.com/Carmen-Shannon/oxy-creature/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrMissingManager is logged when an operation needs a loaded solver and Init has not succeeded.
	ErrMissingManager = errors.New("creature: no pose manager loaded")
	// ErrNotLoaded is logged when an operation names an animation the instance does not have.
	ErrNotLoaded = errors.New("creature: animation not loaded")
	// ErrNoAsset is returned by Init when neither an asset key nor an inline source was configured.
	ErrNoAsset = errors.New("creature: no asset configured")
	// ErrNoCache is returned by Init when no cache was configured and no process-wide cache exists.
	ErrNoCache = errors.New("creature: no asset cache")
)

const (
	minPointCacheApprox = 1
	maxPointCacheApprox = 10
)

// creature is the implementation of the Creature interface.
type creature struct {
	mu     sync.Mutex
	logger logging.Logger

	// configuration, read by Init
	cache          asset_cache.AssetCache
	assetKey       string
	source         []byte
	inline         bool
	startAnimation string
	looping        bool
	playing        bool
	smooth         bool
	timeScale      float32
	trackOverride  pose.RegionOrderTrack
	regionOptions  []compositor.RegionCompositorBuilderOption
	boneOptions    []skeleton.DeriverBuilderOption

	// loaded state
	asset    *asset_cache.AssetHandle
	clips    map[string]*asset_cache.AnimationClip
	solver   pose.Solver
	track    pose.RegionOrderTrack
	playback playback.Controller
	regions  compositor.RegionCompositor
	bones    skeleton.Deriver

	buf      draw_buffer.DrawBuffer
	snapshot *draw_buffer.Snapshot
	last     compositor.RegionResult

	base         skeleton.Transform
	customOrder  []string
	overrides    map[string]uint8
	editor       bool
	regionColors bool
	disabled     bool
	driven       bool
	runMorph     bool

	// applied to the solver by Init, then forwarded on every change
	items   map[string]int
	anchors bool

	swapName   string
	swap       *pose.SkinSwapSet
	swapActive bool

	modifier draw_buffer.MeshModifier
	modBuf   *draw_buffer.ModifierBuffer
}

// Creature is one animated instance drawn from a cached asset.
//
// Every method is safe for concurrent use. Tick holds the instance guard for the whole
// compositing pass; readers and mutators take the same guard.
type Creature interface {
	// Init loads the asset through the cache, creates the solver, registers every clip and
	// selects the start animation. Calling Init again after success is a no-op.
	//
	// Returns:
	//   - error: error if the asset or any of its clips could not be loaded
	Init() error

	// Loaded reports whether Init has succeeded.
	Loaded() bool

	// Tick advances playback by dt and recomposes the draw buffer and bone table.
	//
	// Parameters:
	//   - dt: elapsed seconds
	//
	// Returns:
	//   - bool: false when nothing was recomputed (not loaded, or disabled)
	Tick(dt float32) bool

	// Snapshot returns the guarded handle a renderer reads the draw output through. When a
	// mesh modifier has produced valid data its buffers are exposed instead.
	Snapshot() *draw_buffer.Snapshot

	// AssetKey returns the cache key of the asset this instance draws from.
	AssetKey() string

	// BoneTransform returns a bone's attachment transform.
	//
	// Parameters:
	//   - name: the bone name
	//   - world: whether to compose with the base transform
	//   - slide: slide factor along the bone, 0 for the midpoint
	//
	// Returns:
	//   - skeleton.Transform: the transform
	//   - bool: false if not loaded or no bone has that name
	BoneTransform(name string, world bool, slide float32) (skeleton.Transform, bool)

	// Bones returns a copy of the derived bone table.
	Bones() []skeleton.BoneData

	// BonesCollide tests a world-space point against every bone segment.
	//
	// Parameters:
	//   - point: the world-space point
	//   - radius: the cylinder radius, non-positive means 1
	//
	// Returns:
	//   - string: the first bone hit in natural order
	//   - bool: true on a hit
	BonesCollide(point mgl32.Vec3, radius float32) (string, bool)

	// ChildrenWithIgnore returns every bone under the root except the ignored bone and its subtree.
	ChildrenWithIgnore(ignore string) []string

	// BaseTransform returns the instance's world transform.
	BaseTransform() skeleton.Transform

	// SetBaseTransform sets the instance's world transform.
	SetBaseTransform(t skeleton.Transform)

	// TakeStarted returns and clears the animation-started signal.
	TakeStarted() bool

	// TakeEnded returns and clears the animation-ended signal.
	TakeEnded() bool

	// ActiveIndexCount returns the number of valid indices in the exposed buffer.
	ActiveIndexCount() int

	// State returns a copy of the playback state.
	State() playback.State

	// Playing reports whether playback advances on Tick.
	Playing() bool
	SetPlaying(play bool)
	SetLooping(loop bool)
	SetTimeScale(scale float32)
	Frame() float32
	SetFrame(t float32)
	ResetToStart()
	ResetToEnd()
	PlayFromStart()

	// ActiveAnimation returns the active clip name, or "" if not loaded.
	ActiveAnimation() string

	// Animations returns the clip names available to this instance, sorted.
	Animations() []string

	// SetActiveAnimation hard-switches to a clip and disables blending.
	//
	// Returns:
	//   - bool: false if not loaded or the clip is unknown
	SetActiveAnimation(name string) bool

	// BlendTo cross-fades to a clip with the factor clamped to [0.001, 1].
	//
	// Returns:
	//   - bool: false if not loaded or the clip is unknown
	BlendTo(name string, factor float32) bool

	// SetClipTimeRange narrows a clip's playable range. Clips are shared through the cache,
	// so every instance of the same asset sees the change.
	//
	// Returns:
	//   - bool: false if not loaded or the clip is unknown
	SetClipTimeRange(name string, start, end float32) bool

	// EnableSkinSwap activates the named skin swap, or deactivates skin swapping. Before Init
	// the name is kept and resolved by Init; swapping stays off until it resolves.
	//
	// Parameters:
	//   - name: the swap name, ignored when deactivating
	//   - active: whether swapping is on
	//
	// Returns:
	//   - bool: false when activation found no swap of that name or the instance is not loaded
	EnableSkinSwap(name string, active bool) bool

	// SkinSwapActive reports whether a resolved skin swap is applied.
	SkinSwapActive() bool

	// SetRegionItemSwap shows the item tagged tag on a region in place of its default texture.
	//
	// Parameters:
	//   - region: the region name
	//   - tag: the item tag authored on the region
	SetRegionItemSwap(region string, tag int)

	// RemoveRegionItemSwap restores a region's default texture.
	RemoveRegionItemSwap(region string)

	// SetUseAnchorPoints toggles shifting the pose so the active clip's anchor sits at the origin.
	SetUseAnchorPoints(use bool)

	// UseAnchorPoints reports whether anchor points are applied.
	UseAnchorPoints() bool

	// SetRegionColors toggles the regions' tint channels. Opacity always applies.
	SetRegionColors(enabled bool)

	// RegionColors reports whether region tints are applied.
	RegionColors() bool

	// ReadyPlay reports whether the instance is loaded with an active animation.
	ReadyPlay() bool

	// SetCustomOrder sets a back-to-front region order. Unknown names are dropped each tick.
	SetCustomOrder(names []string)
	ClearCustomOrder()

	// SetRegionAlpha forces every point of a region to a gray level equal to alpha. An empty
	// name is ignored.
	SetRegionAlpha(name string, alpha uint8)
	RemoveRegionAlpha(name string)

	// SetMeshModifier attaches a post-process hook. Its InitData runs immediately when loaded,
	// otherwise at the end of Init.
	SetMeshModifier(m draw_buffer.MeshModifier)
	ClearMeshModifier()

	// SetDisabled stops Tick from doing any work.
	SetDisabled(disabled bool)

	// SetDriven makes Tick recompose without advancing playback, for poses set externally.
	SetDriven(driven bool)

	// SetEditorMode renders an untinted, opaque reference mesh.
	SetEditorMode(editor bool)

	// SetRunMorphTargets advances through the morph-target stepper when the track provides one.
	SetRunMorphTargets(run bool)

	// SetPointCache toggles the use of baked point caches.
	SetPointCache(enabled bool)

	// MakePointCache bakes a clip. The approximation is clamped to [1, 10].
	MakePointCache(name string, approximation int)

	// ClearPointCache drops a clip's baked poses.
	ClearPointCache(name string)
}

var _ Creature = &creature{}

// NewCreature creates an unloaded Creature with the provided options applied. Call Init before
// ticking.
//
// Parameters:
//   - options: a variadic list of CreatureBuilderOption functions
//
// Returns:
//   - Creature: the instance
func NewCreature(options ...CreatureBuilderOption) Creature {
	c := &creature{
		logger:    logging.Default(),
		looping:   true,
		playing:   true,
		base:      skeleton.Identity(),
		overrides: make(map[string]uint8),
		items:     make(map[string]int),

		regionColors: true,
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.WithComponent("creature")
	c.regions = compositor.NewRegionCompositor(append([]compositor.RegionCompositorBuilderOption{compositor.WithLogger(c.logger)}, c.regionOptions...)...)
	c.bones = skeleton.NewDeriver(c.boneOptions...)
	c.snapshot = draw_buffer.NewSnapshot(&c.mu, c.output)
	return c
}

func (c *creature) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.solver != nil {
		return nil
	}
	if c.cache == nil {
		c.cache = asset_cache.Default()
		if c.cache == nil {
			return ErrNoCache
		}
	}

	asset, err := c.loadAsset()
	if err != nil {
		c.logger.Warn("asset load failed", logging.WithField("asset", c.assetKey), logging.WithField("error", err))
		return err
	}

	solver, err := asset.Packet().NewSolver()
	if err != nil {
		return fmt.Errorf("creature: failed to create solver for %s: %w", asset.Key(), err)
	}

	names := asset.Packet().AnimationNames()
	clips := make(map[string]*asset_cache.AnimationClip, len(names))
	for _, name := range names {
		clip, err := c.cache.LoadClip(asset.Key(), name)
		if err != nil {
			return fmt.Errorf("creature: failed to load clip %s: %w", name, err)
		}
		solver.AddAnimation(clip.Clip())
		clips[name] = clip
	}

	start := c.startAnimation
	if start == "" || !solver.HasAnimation(start) {
		if start != "" {
			c.logger.Warn(ErrNotLoaded.Error(), logging.WithField("asset", asset.Key()), logging.WithField("clip", start))
		}
		start = ""
		if len(names) > 0 {
			start = names[0]
		}
	}
	if start != "" {
		solver.SetActiveAnimation(start)
	}
	if c.timeScale > 0 {
		solver.SetTimeScale(c.timeScale)
	}

	c.track = c.trackOverride
	if c.track == nil {
		c.track = asset.Packet().RegionOrderTrack()
	}

	c.asset = asset
	c.clips = clips
	c.solver = solver
	c.playback = playback.NewController(solver,
		playback.WithLooping(c.looping),
		playback.WithPlaying(c.playing),
		playback.WithSmoothTransitions(c.smooth),
	)
	c.applyMorph()
	for region, tag := range c.items {
		solver.SetRegionItemSwap(region, tag)
	}
	solver.SetAnchorPointsActive(c.anchors)
	if c.swapName != "" && !c.resolveSwap() {
		c.logger.Warn("skin swap not resolved", logging.WithField("asset", asset.Key()), logging.WithField("swap", c.swapName))
	}

	solver.Update(0)
	c.compose()
	if c.modifier != nil {
		c.attachModifier()
	}

	topo := solver.Topology()
	c.logger.Info("creature loaded",
		logging.WithField("asset", asset.Key()),
		logging.WithField("animation", start),
		logging.WithField("regions", len(topo.Regions())),
		logging.WithField("bones", len(topo.Bones())),
	)
	return nil
}

func (c *creature) loadAsset() (*asset_cache.AssetHandle, error) {
	switch {
	case c.inline:
		asset, _, err := c.cache.LoadAssetSource(c.assetKey, c.source)
		return asset, err
	case c.assetKey != "":
		asset, _, err := c.cache.LoadAsset(c.assetKey)
		return asset, err
	}
	return nil, ErrNoAsset
}

func (c *creature) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.solver != nil
}

func (c *creature) Tick(dt float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.solver == nil {
		return false
	}
	if c.driven {
		c.compose()
		return true
	}
	if c.disabled {
		return false
	}

	c.playback.Tick(dt)
	c.compose()
	return true
}

// compose runs the region, color, bone and modifier passes on the current pose. Callers hold mu.
func (c *creature) compose() {
	topo := c.solver.Topology()

	c.last = c.regions.Compose(topo, compositor.RegionInput{
		CustomOrder: c.customOrder,
		Track:       c.track,
		SkinSwap:    c.activeSwap(),
		Animation:   c.solver.ActiveAnimation(),
		RunTime:     c.solver.RunTime(),
	}, &c.buf)

	compositor.ComposeColors(topo, compositor.ColorInput{
		Overrides:  c.overrides,
		Editor:     c.editor,
		IgnoreTint: !c.regionColors,
	}, &c.buf)

	c.bones.Fill(topo.Bones())

	if c.modifier != nil {
		c.modifier.Update(c.modBuf, c.buf.View())
	}
}

func (c *creature) activeSwap() *pose.SkinSwapSet {
	if c.track == nil || !c.swapActive || c.swap == nil || len(c.swap.Indices) == 0 {
		return nil
	}
	return c.swap
}

// output returns the buffer exposed to readers. Callers hold mu.
func (c *creature) output() draw_buffer.View {
	if c.modifier != nil && c.modBuf != nil && c.modBuf.Valid {
		return c.modBuf.View()
	}
	return c.buf.View()
}

func (c *creature) Snapshot() *draw_buffer.Snapshot {
	return c.snapshot
}

func (c *creature) AssetKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.asset != nil {
		return c.asset.Key()
	}
	return c.assetKey
}

func (c *creature) ActiveIndexCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output().NumIndices()
}

func (c *creature) Animations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.clips))
	for name := range c.clips {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ready reports whether the solver is loaded, logging MissingManager for op when it is not.
// Callers hold mu.
func (c *creature) ready(op string) bool {
	if c.solver != nil {
		return true
	}
	c.logger.Warn(ErrMissingManager.Error(), logging.WithField("op", op))
	return false
}
