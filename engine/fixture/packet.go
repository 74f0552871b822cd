package fixture

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
)

// Packet is a validated asset, shared by every solver created from it.
type Packet struct {
	asset *Asset
	clips map[string]*ClipDef
	meta  *Meta
}

var _ pose.Packet = &Packet{}

// NewPacket validates the asset and sorts its keyframes.
//
// Parameters:
//   - a: the decoded asset
//
// Returns:
//   - *Packet: the packet
//   - error: error if validation fails
func NewPacket(a *Asset) (*Packet, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	p := &Packet{
		asset: a,
		clips: make(map[string]*ClipDef, len(a.Animations)),
	}
	for i := range a.Animations {
		def := &a.Animations[i]
		if _, dup := p.clips[def.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate animation %q", ErrInvalidAsset, def.Name)
		}
		for _, keys := range def.Bones {
			slices.SortFunc(keys, func(a, b BoneKey) int { return cmpFrame(a.Frame, b.Frame) })
		}
		for _, keys := range def.Regions {
			slices.SortFunc(keys, func(a, b RegionKey) int { return cmpFrame(a.Frame, b.Frame) })
		}
		p.clips[def.Name] = def
	}
	if a.Meta != nil {
		p.meta = newMeta(a.Meta)
	}
	return p, nil
}

func (p *Packet) AnimationNames() []string {
	names := make([]string, 0, len(p.asset.Animations))
	for _, c := range p.asset.Animations {
		names = append(names, c.Name)
	}
	return names
}

func (p *Packet) Clip(name string) (pose.Clip, error) {
	def, ok := p.clips[name]
	if !ok {
		return nil, fmt.Errorf("fixture: no animation named %q", name)
	}
	return &Clip{
		def:   def,
		start: def.Start,
		end:   def.End,
	}, nil
}

func (p *Packet) NewSolver() (pose.Solver, error) {
	return newSolver(p.asset), nil
}

func (p *Packet) RegionOrderTrack() pose.RegionOrderTrack {
	if p.meta == nil {
		return nil
	}
	return p.meta
}

// Clip is a parsed animation with an editable time range.
type Clip struct {
	mu    sync.RWMutex
	def   *ClipDef
	start float32
	end   float32
}

var _ pose.Clip = &Clip{}

func (c *Clip) Name() string {
	return c.def.Name
}

func (c *Clip) StartTime() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.start
}

func (c *Clip) EndTime() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.end
}

func (c *Clip) TimeScale() float32 {
	if c.def.TimeScale <= 0 {
		return DefaultTimeScale
	}
	return c.def.TimeScale
}

func (c *Clip) SetTimeRange(start, end float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start, c.end = start, end
}

func cmpFrame(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
