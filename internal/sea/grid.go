package sea

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GridMapping converts between world positions and texel indices for a patch
// centered at Center (world X, Z) covering Extent. Build a fresh mapping
// whenever the extent changes.
type GridMapping struct {
	Center mgl32.Vec2
	Extent mgl32.Vec2
	Width  int
	Height int
}

func NewGridMapping(center, extent mgl32.Vec2, width, height int) GridMapping {
	return GridMapping{Center: center, Extent: extent, Width: width, Height: height}
}

// Normalize maps a world position to patch coordinates, (0,0) at the min
// corner and (1,1) at the max corner. Values outside [0,1) are off the patch.
func (m GridMapping) Normalize(pos mgl32.Vec3) (u, v float64) {
	ex, ez := float64(m.Extent.X()), float64(m.Extent.Y())
	u = (float64(pos.X()) - float64(m.Center.X()) + ex/2) / ex
	v = (float64(pos.Z()) - float64(m.Center.Y()) + ez/2) / ez
	return u, v
}

// TexelAt returns the texel containing pos, with ok false when pos falls
// outside the grid.
func (m GridMapping) TexelAt(pos mgl32.Vec3) (x, z int, ok bool) {
	if m.Width <= 0 || m.Height <= 0 || !(m.Extent.X() > 0) || !(m.Extent.Y() > 0) {
		return 0, 0, false
	}
	u, v := m.Normalize(pos)
	fx := math.Floor(u * float64(m.Width))
	fz := math.Floor(v * float64(m.Height))
	// NaN fails every comparison and lands here too.
	if !(fx >= 0 && fx < float64(m.Width) && fz >= 0 && fz < float64(m.Height)) {
		return 0, 0, false
	}
	return int(fx), int(fz), true
}

// Index flattens a texel coordinate, row-major along X.
func (m GridMapping) Index(x, z int) int {
	return x + z*m.Width
}

// CellSize is the world size of one texel.
func (m GridMapping) CellSize() mgl32.Vec2 {
	return mgl32.Vec2{m.Extent.X() / float32(m.Width), m.Extent.Y() / float32(m.Height)}
}

// CellCenter returns the world position (y = 0) of a texel's center.
func (m GridMapping) CellCenter(x, z int) mgl32.Vec3 {
	ex, ez := float64(m.Extent.X()), float64(m.Extent.Y())
	wx := float64(m.Center.X()) - ex/2 + (float64(x)+0.5)*ex/float64(m.Width)
	wz := float64(m.Center.Y()) - ez/2 + (float64(z)+0.5)*ez/float64(m.Height)
	return mgl32.Vec3{float32(wx), 0, float32(wz)}
}

// Contains reports whether pos lies on the patch.
func (m GridMapping) Contains(pos mgl32.Vec3) bool {
	_, _, ok := m.TexelAt(pos)
	return ok
}
