package sea

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTexelAtInsideAndOutside(t *testing.T) {
	m := NewGridMapping(mgl32.Vec2{2, -3}, mgl32.Vec2{10, 20}, 128, 64)
	minX, maxX := float32(2-5), float32(2+5)
	minZ, maxZ := float32(-3-10), float32(-3+10)

	for x := minX - 1; x <= maxX+1; x += 0.173 {
		for z := minZ - 1; z <= maxZ+1; z += 0.311 {
			inside := x >= minX && x < maxX && z >= minZ && z < maxZ
			tx, tz, ok := m.TexelAt(mgl32.Vec3{x, 5, z})
			// Skip points within float rounding of an edge.
			if nearAny(x, minX, maxX) || nearAny(z, minZ, maxZ) {
				continue
			}
			if ok != inside {
				t.Fatalf("(%v,%v): ok=%v, inside=%v", x, z, ok, inside)
			}
			if ok && (tx < 0 || tx >= 128 || tz < 0 || tz >= 64) {
				t.Fatalf("(%v,%v): texel (%d,%d) out of grid", x, z, tx, tz)
			}
		}
	}
}

func TestTexelAtEdges(t *testing.T) {
	m := NewGridMapping(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 10}, 16, 16)
	if x, z, ok := m.TexelAt(mgl32.Vec3{-5, 0, -5}); !ok || x != 0 || z != 0 {
		t.Errorf("min corner: got (%d,%d,%v)", x, z, ok)
	}
	if _, _, ok := m.TexelAt(mgl32.Vec3{5, 0, 0}); ok {
		t.Error("max edge is outside the patch")
	}
	nan := float32(math.NaN())
	if _, _, ok := m.TexelAt(mgl32.Vec3{nan, 0, 0}); ok {
		t.Error("NaN position must be out of range")
	}
	empty := NewGridMapping(mgl32.Vec2{}, mgl32.Vec2{10, 10}, 0, 16)
	if empty.Contains(mgl32.Vec3{}) {
		t.Error("empty grid contains nothing")
	}
}

func TestCellCenterRoundTrip(t *testing.T) {
	m := NewGridMapping(mgl32.Vec2{7, 3}, mgl32.Vec2{12, 9}, 24, 18)
	for z := 0; z < m.Height; z++ {
		for x := 0; x < m.Width; x++ {
			gx, gz, ok := m.TexelAt(m.CellCenter(x, z))
			if !ok || gx != x || gz != z {
				t.Fatalf("center of (%d,%d) maps to (%d,%d,%v)", x, z, gx, gz, ok)
			}
		}
	}
	if m.Index(3, 2) != 3+2*24 {
		t.Errorf("Expected row-major index, got %d", m.Index(3, 2))
	}
	if cs := m.CellSize(); cs != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("Expected cell size 0.5, got %v", cs)
	}
}

func nearAny(v float32, edges ...float32) bool {
	for _, e := range edges {
		if math.Abs(float64(v-e)) < 1e-4 {
			return true
		}
	}
	return false
}
