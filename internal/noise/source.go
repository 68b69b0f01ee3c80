// Package noise bakes the tiling noise textures that drive the sea surface
// and samples them on the CPU.
package noise

import (
	"fmt"
	"math"
)

// Source is a read-only 2D noise texture with values in [0, 1].
type Source interface {
	Width() int
	Height() int
	At(x, y int) float32
	Sample(u, v float64) float32
}

// Texture is an immutable, CPU-resident noise texture.
type Texture struct {
	width, height int
	texels        []float32
}

// NewTexture wraps texels (row-major, width*height) without copying.
func NewTexture(width, height int, texels []float32) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("noise texture size %dx%d must be positive", width, height)
	}
	if len(texels) != width*height {
		return nil, fmt.Errorf("noise texture expects %d texels, got %d", width*height, len(texels))
	}
	return &Texture{width: width, height: height, texels: texels}, nil
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Texels exposes the backing store for device upload. Callers must not mutate it.
func (t *Texture) Texels() []float32 { return t.texels }

// At returns the texel at (x, y), wrapping out of range coordinates.
func (t *Texture) At(x, y int) float32 {
	x = wrap(x, t.width)
	y = wrap(y, t.height)
	return t.texels[y*t.width+x]
}

// Sample filters bilinearly at normalized coordinates with repeat addressing.
func (t *Texture) Sample(u, v float64) float32 {
	fx := u*float64(t.width) - 0.5
	fy := v*float64(t.height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := float32(fx - x0)
	ty := float32(fy - y0)
	ix, iy := int(x0), int(y0)

	a := t.At(ix, iy)
	b := t.At(ix+1, iy)
	c := t.At(ix, iy+1)
	d := t.At(ix+1, iy+1)
	top := a + (b-a)*tx
	bottom := c + (d-c)*tx
	return top + (bottom-top)*ty
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
