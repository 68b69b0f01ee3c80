package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshBounds returns the planar (X by Z) size of a vertex set. An empty set
// has zero size.
func MeshBounds(vertices []mgl32.Vec3) mgl32.Vec2 {
	if len(vertices) == 0 {
		return mgl32.Vec2{}
	}
	minX, maxX := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	minZ, maxZ := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, v := range vertices {
		minX = min(minX, v.X())
		maxX = max(maxX, v.X())
		minZ = min(minZ, v.Z())
		maxZ = max(maxZ, v.Z())
	}
	return mgl32.Vec2{maxX - minX, maxZ - minZ}
}
