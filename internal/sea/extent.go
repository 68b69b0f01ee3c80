package sea

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ScaleTarget is the transform whose planar scale sizes the patch.
type ScaleTarget interface {
	LocalScale() mgl32.Vec3
	ParentScale() mgl32.Vec3
	SetScale(mgl32.Vec3)
}

// SizeController maps between a world-space footprint and the patch
// transform's scale. Only the X and Z axes are ever written.
type SizeController struct {
	mesh   mgl32.Vec2
	target ScaleTarget
}

// NewSizeController fails fast on mesh bounds without planar area.
func NewSizeController(meshBounds mgl32.Vec2, target ScaleTarget) (*SizeController, error) {
	if !(meshBounds.X() > 0) || !(meshBounds.Y() > 0) {
		return nil, configErr("mesh_bounds", ErrZeroMeshBounds)
	}
	if target == nil {
		return nil, configErr("patch", errors.New("scale target is nil"))
	}
	return &SizeController{mesh: meshBounds, target: target}, nil
}

func (c *SizeController) MeshBounds() mgl32.Vec2 {
	return c.mesh
}

// Extent is the effective world footprint: mesh bounds times world scale.
func (c *SizeController) Extent() mgl32.Vec2 {
	local := c.target.LocalScale()
	parent := c.target.ParentScale()
	return mgl32.Vec2{
		c.mesh.X() * (local.X() * parent.X()),
		c.mesh.Y() * (local.Z() * parent.Z()),
	}
}

// SetExtent rescales the planar axes so the footprint equals size. The
// result is derived from the mesh bounds and the parent scale only, never
// from the previous local scale, so repeated calls do not drift.
func (c *SizeController) SetExtent(size mgl32.Vec2) error {
	if !(size.X() > 0) || !(size.Y() > 0) {
		return errors.New("sea extent must be positive on both axes")
	}
	local := c.target.LocalScale()
	parent := c.target.ParentScale()
	px, pz := parent.X(), parent.Z()
	if px == 0 || pz == 0 {
		return errors.New("parent scale collapses a planar axis")
	}

	c.target.SetScale(mgl32.Vec3{
		size.X() / c.mesh.X() / px,
		local.Y(),
		size.Y() / c.mesh.Y() / pz,
	})
	return nil
}
