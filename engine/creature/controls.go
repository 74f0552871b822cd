package creature

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/Carmen-Shannon/oxy-creature/engine/playback"
	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"github.com/Carmen-Shannon/oxy-creature/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

func (c *creature) BoneTransform(name string, world bool, slide float32) (skeleton.Transform, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.solver == nil {
		return skeleton.Identity(), false
	}
	return c.bones.BoneTransform(name, world, slide, c.base)
}

func (c *creature) Bones() []skeleton.BoneData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.bones.Bones())
}

func (c *creature) BonesCollide(point mgl32.Vec3, radius float32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready("bones_collide") {
		return "", false
	}
	return skeleton.Collide(c.solver.Topology().Bones(), point, radius, c.base)
}

func (c *creature) ChildrenWithIgnore(ignore string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready("children_with_ignore") {
		return nil
	}
	topo := c.solver.Topology()
	return skeleton.ChildrenWithIgnore(topo, ignore, topo.RootBone())
}

func (c *creature) BaseTransform() skeleton.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base
}

func (c *creature) SetBaseTransform(t skeleton.Transform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = t
}

func (c *creature) TakeStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playback != nil && c.playback.TakeStarted()
}

func (c *creature) TakeEnded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playback != nil && c.playback.TakeEnded()
}

func (c *creature) State() playback.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback == nil {
		return playback.State{ShouldPlay: c.playing, Looping: c.looping}
	}
	return c.playback.State()
}

func (c *creature) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback == nil {
		return false
	}
	return c.playback.Playing()
}

func (c *creature) SetPlaying(play bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("set_playing") {
		c.playback.SetPlaying(play)
	}
}

func (c *creature) SetLooping(loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("set_looping") {
		c.playback.SetLooping(loop)
	}
}

func (c *creature) SetTimeScale(scale float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("set_time_scale") {
		c.playback.SetTimeScale(scale)
	}
}

func (c *creature) Frame() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback == nil {
		return 0
	}
	return c.playback.Frame()
}

func (c *creature) SetFrame(t float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("set_frame") {
		c.playback.SetFrame(t)
		c.compose()
	}
}

func (c *creature) ResetToStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("reset_to_start") {
		c.playback.ResetToStart()
		c.compose()
	}
}

func (c *creature) ResetToEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("reset_to_end") {
		c.playback.ResetToEnd()
		c.compose()
	}
}

func (c *creature) PlayFromStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("play_from_start") {
		c.playback.PlayFromStart()
		c.compose()
	}
}

func (c *creature) ActiveAnimation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback == nil {
		return ""
	}
	return c.playback.ActiveAnimation()
}

func (c *creature) SetActiveAnimation(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready("set_active_animation") {
		return false
	}
	if !c.playback.SetActiveAnimation(name) {
		c.logger.Warn(ErrNotLoaded.Error(), logging.WithField("op", "set_active_animation"), logging.WithField("clip", name))
		return false
	}
	return true
}

func (c *creature) BlendTo(name string, factor float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready("blend_to") {
		return false
	}
	if !c.playback.BlendTo(name, factor) {
		c.logger.Warn(ErrNotLoaded.Error(), logging.WithField("op", "blend_to"), logging.WithField("clip", name))
		return false
	}
	return true
}

func (c *creature) SetClipTimeRange(name string, start, end float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready("set_clip_time_range") {
		return false
	}
	clip, ok := c.clips[name]
	if !ok || !clip.Valid() {
		c.logger.Warn(ErrNotLoaded.Error(), logging.WithField("op", "set_clip_time_range"), logging.WithField("clip", name))
		return false
	}
	clip.SetTimeRange(start, end)
	return true
}

func (c *creature) EnableSkinSwap(name string, active bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.swap = nil
	c.swapActive = false
	if !active {
		c.swapName = ""
		return true
	}
	c.swapName = name
	if !c.ready("enable_skin_swap") {
		return false
	}
	return c.resolveSwap()
}

func (c *creature) SkinSwapActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSwap() != nil
}

func (c *creature) SetRegionItemSwap(region string, tag int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if region == "" {
		return
	}
	c.items[region] = tag
	if c.solver != nil {
		c.solver.SetRegionItemSwap(region, tag)
		c.repose()
	}
}

func (c *creature) RemoveRegionItemSwap(region string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, region)
	if c.solver != nil {
		c.solver.RemoveRegionItemSwap(region)
		c.repose()
	}
}

func (c *creature) SetUseAnchorPoints(use bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchors = use
	if c.solver != nil {
		c.solver.SetAnchorPointsActive(use)
		c.repose()
	}
}

func (c *creature) UseAnchorPoints() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.solver != nil {
		return c.solver.AnchorPointsActive()
	}
	return c.anchors
}

func (c *creature) SetRegionColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regionColors = enabled
	if c.solver != nil {
		c.compose()
	}
}

func (c *creature) RegionColors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regionColors
}

func (c *creature) ReadyPlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.solver != nil && c.solver.ActiveAnimation() != ""
}

// repose re-evaluates the current frame without advancing the clock. Callers hold mu.
func (c *creature) repose() {
	c.solver.Update(0)
	c.compose()
}

// resolveSwap builds the pending swap against the loaded topology. Callers hold mu.
func (c *creature) resolveSwap() bool {
	if c.track == nil || c.swapName == "" {
		return false
	}
	swap, ok := c.track.BuildSkinSwap(c.swapName, c.solver.Topology())
	if !ok {
		return false
	}
	c.swap = swap
	c.swapActive = true
	return true
}

func (c *creature) SetCustomOrder(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customOrder = slices.Clone(names)
}

func (c *creature) ClearCustomOrder() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customOrder = nil
}

func (c *creature) SetRegionAlpha(name string, alpha uint8) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[name] = alpha
}

func (c *creature) RemoveRegionAlpha(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.overrides, name)
}

func (c *creature) SetMeshModifier(m draw_buffer.MeshModifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modifier = m
	c.modBuf = nil
	if m != nil && c.solver != nil {
		c.attachModifier()
	}
}

// attachModifier sizes a fresh modifier buffer to the current mesh and hands it to InitData.
// Callers hold mu.
func (c *creature) attachModifier() {
	c.modBuf = draw_buffer.NewModifierBuffer(c.buf.NumPoints(), len(c.buf.Indices))
	c.modifier.InitData(c.modBuf, c.buf.View())
}

func (c *creature) ClearMeshModifier() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modifier = nil
	c.modBuf = nil
}

func (c *creature) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = disabled
}

func (c *creature) SetDriven(driven bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.driven = driven
}

func (c *creature) SetEditorMode(editor bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor = editor
}

func (c *creature) SetRunMorphTargets(run bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runMorph = run
	c.applyMorph()
}

// applyMorph hands the track's morph stepper to playback when it has one. Callers hold mu.
func (c *creature) applyMorph() {
	if c.playback == nil {
		return
	}
	if m, ok := c.track.(pose.MorphStepper); ok {
		c.playback.SetMorphTargets(m, c.runMorph)
		return
	}
	c.playback.SetMorphTargets(nil, false)
}

func (c *creature) SetPointCache(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("set_point_cache") {
		c.solver.SetPointCache(enabled)
	}
}

func (c *creature) MakePointCache(name string, approximation int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready("make_point_cache") {
		return
	}
	c.solver.MakePointCache(name, common.Clamp(approximation, minPointCacheApprox, maxPointCacheApprox))
}

func (c *creature) ClearPointCache(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready("clear_point_cache") {
		c.solver.ClearPointCache(name)
	}
}
