package common

// Color is a packed 8-bit RGBA vertex color, laid out the way vertex color buffers expect it.
type Color struct {
	R, G, B, A uint8
}

// White is opaque white, the neutral vertex color.
var White = Color{R: 255, G: 255, B: 255, A: 255}

// Gray returns a color with all four channels set to v.
//
// Parameters:
//   - v: the channel value
//
// Returns:
//   - Color: the gray-scale color
func Gray(v uint8) Color {
	return Color{R: v, G: v, B: v, A: v}
}
