package noise

import (
	"fmt"
	"math"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Generator kinds accepted by New.
const (
	KindPerlin   = "perlin"
	KindSimplex  = "simplex"
	KindImproved = "improved"
)

// Generator is any continuous 2D noise function.
type Generator interface {
	Noise2D(x, y float64) float64
}

// Params describes a baked noise texture.
type Params struct {
	Kind        string  `yaml:"kind"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Seed        int64   `yaml:"seed"`
	Scale       float64 `yaml:"scale"` // noise cells across the texture
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
}

// DefaultParams matches the 128x128 noise texture the sea shader ships with.
func DefaultParams() Params {
	return Params{
		Kind:        KindPerlin,
		Width:       128,
		Height:      128,
		Seed:        1,
		Scale:       8,
		Octaves:     3,
		Persistence: 0.5,
	}
}

type simplexAdapter struct {
	n opensimplex.Noise
}

func (s simplexAdapter) Noise2D(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

// New returns the generator named by p.Kind.
func New(p Params) (Generator, error) {
	octaves := p.Octaves
	if octaves < 1 {
		octaves = 1
	}
	switch p.Kind {
	case KindPerlin, "":
		// go-perlin sums its own octaves; alpha 2 / beta 2 halves the weight
		// and doubles the frequency per octave.
		return perlin.NewPerlin(2, 2, int32(octaves), p.Seed), nil
	case KindSimplex:
		return fractal{base: simplexAdapter{opensimplex.New(p.Seed)}, octaves: octaves, persistence: p.Persistence}, nil
	case KindImproved:
		return fractal{base: NewImprovedPerlin(p.Seed), octaves: octaves, persistence: p.Persistence}, nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", p.Kind)
	}
}

// Bake renders a seamless texture from the generator described by p.
func Bake(p Params) (*Texture, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("noise texture size %dx%d must be positive", p.Width, p.Height)
	}
	gen, err := New(p)
	if err != nil {
		return nil, err
	}
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}

	w, h := float64(p.Width), float64(p.Height)
	raw := make([]float64, p.Width*p.Height)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			// Blend four offset copies so the texture wraps without seams.
			fx, fy := float64(x)/w, float64(y)/h
			sx, sy := fx*scale, fy*scale
			v := gen.Noise2D(sx, sy)*(1-fx)*(1-fy) +
				gen.Noise2D(sx-scale, sy)*fx*(1-fy) +
				gen.Noise2D(sx-scale, sy-scale)*fx*fy +
				gen.Noise2D(sx, sy-scale)*(1-fx)*fy
			raw[y*p.Width+x] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	texels := make([]float32, len(raw))
	span := hi - lo
	for i, v := range raw {
		if span > 0 {
			texels[i] = float32((v - lo) / span)
		} else {
			texels[i] = 0.5
		}
	}
	return NewTexture(p.Width, p.Height, texels)
}
