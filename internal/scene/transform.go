// Package scene holds the world-space handles the sea reads and writes:
// transforms, the ordered object registry and mesh bounds.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a node in the scene hierarchy. Position and Rotation are
// world-space; Scale is local and combines with the parent chain.
type Transform struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Parent   *Transform
}

// NewTransform returns an identity transform at the origin.
func NewTransform(name string) *Transform {
	return &Transform{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t *Transform) Translate(delta mgl32.Vec3) {
	t.Position = t.Position.Add(delta)
}

func (t *Transform) SetPosition(pos mgl32.Vec3) {
	t.Position = pos
}

func (t *Transform) SetRotation(rot mgl32.Quat) {
	t.Rotation = rot
}

func (t *Transform) SetScale(scale mgl32.Vec3) {
	t.Scale = scale
}

func (t *Transform) LocalScale() mgl32.Vec3 {
	return t.Scale
}

// ParentScale is the combined scale of every ancestor.
func (t *Transform) ParentScale() mgl32.Vec3 {
	s := mgl32.Vec3{1, 1, 1}
	for p := t.Parent; p != nil; p = p.Parent {
		s = mgl32.Vec3{s[0] * p.Scale[0], s[1] * p.Scale[1], s[2] * p.Scale[2]}
	}
	return s
}

// WorldScale is the local scale combined with every ancestor.
func (t *Transform) WorldScale() mgl32.Vec3 {
	p := t.ParentScale()
	return mgl32.Vec3{t.Scale[0] * p[0], t.Scale[1] * p[1], t.Scale[2] * p[2]}
}

// WorldPosition returns the position used for surface queries.
func (t *Transform) WorldPosition() mgl32.Vec3 {
	return t.Position
}

func (t *Transform) Up() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

func (t *Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}
