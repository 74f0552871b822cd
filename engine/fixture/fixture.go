// Package fixture is a small YAML-backed pose engine. It implements the pose contracts well enough
// to drive the compositing layer from hand-written assets: linear keyframes on bone endpoints and
// region opacity/offsets, a looping clock, auto-blending and baked point caches.
package fixture

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-creature/engine/pose"
	"gopkg.in/yaml.v3"
)

// DefaultTimeScale is the number of animation frames advanced per second of Update.
const DefaultTimeScale float32 = 60

// ErrInvalidAsset is wrapped by every validation failure.
var ErrInvalidAsset = errors.New("fixture: invalid asset")

// Asset is the on-disk document.
type Asset struct {
	Points     [][3]float32 `yaml:"points"`
	UVs        [][2]float32 `yaml:"uvs"`
	Indices    []uint32     `yaml:"indices"`
	Regions    []RegionDef  `yaml:"regions"`
	Bones      []BoneDef    `yaml:"bones"`
	Animations []ClipDef    `yaml:"animations"`
	Meta       *MetaDef     `yaml:"meta,omitempty"`
}

// RegionDef describes one region. Ranges are inclusive.
type RegionDef struct {
	Name       string     `yaml:"name"`
	ID         int        `yaml:"id"`
	StartPoint int        `yaml:"start_point"`
	EndPoint   int        `yaml:"end_point"`
	StartIndex int        `yaml:"start_index"`
	EndIndex   int        `yaml:"end_index"`
	Opacity    *float32   `yaml:"opacity,omitempty"`
	Tint       [3]float32 `yaml:"tint"`

	// Items maps an item tag to the UV offset that shows it.
	Items map[int][2]float32 `yaml:"items,omitempty"`
}

// BoneDef describes a bone in its rest pose.
type BoneDef struct {
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent"`
	Start  [3]float32 `yaml:"start"`
	End    [3]float32 `yaml:"end"`
}

// ClipDef describes one animation.
type ClipDef struct {
	Name      string                 `yaml:"name"`
	Start     float32                `yaml:"start"`
	End       float32                `yaml:"end"`
	TimeScale float32                `yaml:"time_scale"`
	Bones     map[string][]BoneKey   `yaml:"bones"`
	Regions   map[string][]RegionKey `yaml:"regions"`
}

// BoneKey keys both endpoints of a bone at a frame.
type BoneKey struct {
	Frame float32    `yaml:"frame"`
	Start [3]float32 `yaml:"start"`
	End   [3]float32 `yaml:"end"`
}

// RegionKey keys a region's opacity and point offset at a frame.
type RegionKey struct {
	Frame   float32    `yaml:"frame"`
	Opacity float32    `yaml:"opacity"`
	Offset  [2]float32 `yaml:"offset"`
}

// MetaDef carries region-order, skin-swap and anchor metadata.
type MetaDef struct {
	RegionOrders map[string][]OrderKey `yaml:"region_orders"`
	SkinSwaps    map[string][]string   `yaml:"skin_swaps"`

	// AnchorPoints maps an animation to the point moved to the origin when anchors are active.
	AnchorPoints map[string][2]float32 `yaml:"anchor_points,omitempty"`
}

// OrderKey lists region names back to front from a frame onwards.
type OrderKey struct {
	Frame int      `yaml:"frame"`
	Order []string `yaml:"order"`
}

type parser struct{}

var _ pose.Parser = &parser{}

// NewParser creates a Parser reading the YAML asset format.
//
// Returns:
//   - pose.Parser: the parser
func NewParser() pose.Parser {
	return &parser{}
}

func (p *parser) ParseFile(path string) (pose.Packet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: failed to read %s: %w", path, err)
	}
	return p.ParseSource(path, src)
}

func (p *parser) ParseSource(name string, src []byte) (pose.Packet, error) {
	var a Asset
	if err := yaml.Unmarshal(src, &a); err != nil {
		return nil, fmt.Errorf("fixture: failed to parse %s: %w", name, err)
	}
	return NewPacket(&a)
}

// Marshal encodes an asset back to YAML.
//
// Parameters:
//   - a: the asset
//
// Returns:
//   - []byte: the YAML document
//   - error: error if encoding fails
func Marshal(a *Asset) ([]byte, error) {
	return yaml.Marshal(a)
}

// Validate checks that every range and reference in the asset is in bounds.
//
// Returns:
//   - error: an error wrapping ErrInvalidAsset, or nil
func (a *Asset) Validate() error {
	numPts := len(a.Points)
	if len(a.UVs) != 0 && len(a.UVs) != numPts {
		return fmt.Errorf("%w: %d uvs for %d points", ErrInvalidAsset, len(a.UVs), numPts)
	}
	if len(a.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidAsset, len(a.Indices))
	}
	for _, idx := range a.Indices {
		if int(idx) >= numPts {
			return fmt.Errorf("%w: index %d out of range", ErrInvalidAsset, idx)
		}
	}

	names := make(map[string]struct{}, len(a.Regions))
	for _, r := range a.Regions {
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidAsset, r.Name)
		}
		names[r.Name] = struct{}{}
		if r.StartPoint < 0 || r.EndPoint >= numPts || r.StartPoint > r.EndPoint {
			return fmt.Errorf("%w: region %q point range [%d,%d]", ErrInvalidAsset, r.Name, r.StartPoint, r.EndPoint)
		}
		if r.StartIndex < 0 || r.EndIndex >= len(a.Indices) || r.StartIndex > r.EndIndex {
			return fmt.Errorf("%w: region %q index range [%d,%d]", ErrInvalidAsset, r.Name, r.StartIndex, r.EndIndex)
		}
	}

	bones := make(map[string]struct{}, len(a.Bones))
	for _, b := range a.Bones {
		bones[b.Name] = struct{}{}
	}
	roots := 0
	for _, b := range a.Bones {
		if b.Parent == "" {
			roots++
			continue
		}
		if _, ok := bones[b.Parent]; !ok {
			return fmt.Errorf("%w: bone %q has unknown parent %q", ErrInvalidAsset, b.Name, b.Parent)
		}
	}
	if len(a.Bones) > 0 && roots != 1 {
		return fmt.Errorf("%w: expected one root bone, found %d", ErrInvalidAsset, roots)
	}

	for _, c := range a.Animations {
		if c.End < c.Start {
			return fmt.Errorf("%w: animation %q ends before it starts", ErrInvalidAsset, c.Name)
		}
	}
	return nil
}
