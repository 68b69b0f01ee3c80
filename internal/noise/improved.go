package noise

import (
	"math"
	"math/rand"
)

// ImprovedPerlin is Ken Perlin's 2002 noise: quintic fade and the twelve
// cube-edge gradients.
type ImprovedPerlin struct {
	perm [512]int
}

var edgeGradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// NewImprovedPerlin builds the permutation table from seed.
func NewImprovedPerlin(seed int64) *ImprovedPerlin {
	p := &ImprovedPerlin{}
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < 256; i++ {
		p.perm[i] = i
	}
	// Fisher-Yates
	for i := 255; i > 0; i-- {
		j := rng.Intn(i + 1)
		p.perm[i], p.perm[j] = p.perm[j], p.perm[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[256+i] = p.perm[i]
	}
	return p
}

// 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y, z float64) float64 {
	g := edgeGradients[hash%12]
	return g[0]*x + g[1]*y + g[2]*z
}

// Noise3D returns noise in roughly [-1, 1].
func (p *ImprovedPerlin) Noise3D(x, y, z float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	u := fade(x)
	v := fade(y)
	w := fade(z)

	A := p.perm[X] + Y
	AA := p.perm[A] + Z
	AB := p.perm[A+1] + Z
	B := p.perm[X+1] + Y
	BA := p.perm[B] + Z
	BB := p.perm[B+1] + Z

	return lerp(w,
		lerp(v,
			lerp(u, grad(p.perm[AA], x, y, z), grad(p.perm[BA], x-1, y, z)),
			lerp(u, grad(p.perm[AB], x, y-1, z), grad(p.perm[BB], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p.perm[AA+1], x, y, z-1), grad(p.perm[BA+1], x-1, y, z-1)),
			lerp(u, grad(p.perm[AB+1], x, y-1, z-1), grad(p.perm[BB+1], x-1, y-1, z-1))))
}

// Noise2D samples the z=0 slice.
func (p *ImprovedPerlin) Noise2D(x, y float64) float64 {
	return p.Noise3D(x, y, 0)
}

// fractal sums octaves of a 2D generator, normalised back to the single
// octave range.
type fractal struct {
	base        Generator
	octaves     int
	persistence float64
}

func (f fractal) Noise2D(x, y float64) float64 {
	value := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxValue := 0.0
	for i := 0; i < f.octaves; i++ {
		value += f.base.Noise2D(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= f.persistence
		frequency *= 2
	}
	if maxValue == 0 {
		return 0
	}
	return value / maxValue
}
