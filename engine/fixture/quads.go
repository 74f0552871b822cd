package fixture

// Quads builds an asset with one unit quad per region name, laid out left to right along x and
// a single bone spanning (0,0,0) to (10,0,0). Region i owns points [4i,4i+3] and indices
// [6i,6i+5]. The asset has one 100-frame animation named "default".
//
// Parameters:
//   - names: the region names in natural order
//
// Returns:
//   - *Asset: the asset
func Quads(names ...string) *Asset {
	a := &Asset{
		Bones: []BoneDef{{Name: "root", End: [3]float32{10, 0, 0}}},
		Animations: []ClipDef{{
			Name:      "default",
			Start:     0,
			End:       100,
			TimeScale: DefaultTimeScale,
		}},
	}
	for i, name := range names {
		x := float32(i)
		base := uint32(4 * i)
		a.Points = append(a.Points,
			[3]float32{x, 0, 0}, [3]float32{x + 1, 0, 0},
			[3]float32{x + 1, 1, 0}, [3]float32{x, 1, 0})
		a.UVs = append(a.UVs, [2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 1}, [2]float32{0, 1})
		a.Indices = append(a.Indices, base, base+1, base+2, base, base+2, base+3)
		a.Regions = append(a.Regions, RegionDef{
			Name:       name,
			ID:         i,
			StartPoint: 4 * i,
			EndPoint:   4*i + 3,
			StartIndex: 6 * i,
			EndIndex:   6*i + 5,
			Tint:       [3]float32{100, 100, 100},
		})
	}
	return a
}
