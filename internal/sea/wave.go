// Package sea simulates a procedural water patch: a compute pass fills a
// height/normal grid every tick, samplers answer height queries against it and
// a binder floats registered objects on the result.
package sea

import (
	"errors"
	"math"

	"CartoonSea/internal/noise"

	"github.com/go-gl/mathgl/mgl32"
)

// WaveConfig holds the wave parameters for a session. Colors are not used by
// the simulation and are passed through to the renderer untouched.
type WaveConfig struct {
	Noise noise.Source

	ShallowColor mgl32.Vec4
	DeepColor    mgl32.Vec4
	FoamColor    mgl32.Vec4

	WaveSpeed        float32 // noise scroll speed, texture units per second
	WaveHeight       float32 // amplitude
	WaveDensity      float32 // spatial frequency
	WaveMoveVelocity mgl32.Vec2

	// NoiseStrength blends noise detail into the height, as a fraction of
	// WaveHeight. Zero gives the pure product of sines.
	NoiseStrength float32
}

// DefaultWaveConfig returns the stock cartoon sea parameters.
func DefaultWaveConfig(src noise.Source) WaveConfig {
	return WaveConfig{
		Noise:            src,
		ShallowColor:     mgl32.Vec4{0, 0.8, 1, 0.5},
		DeepColor:        mgl32.Vec4{0, 0.1, 0.5, 1},
		FoamColor:        mgl32.Vec4{1, 1, 1, 1},
		WaveSpeed:        0.01,
		WaveHeight:       0.4,
		WaveDensity:      0.5,
		WaveMoveVelocity: mgl32.Vec2{0.4, 0.4},
	}
}

// Validate reports the first configuration error, if any.
func (c *WaveConfig) Validate() error {
	if c.Noise == nil {
		return configErr("noise", ErrMissingNoise)
	}
	if c.Noise.Width() <= 0 || c.Noise.Height() <= 0 {
		return configErr("noise", ErrZeroGrid)
	}
	if !(c.WaveHeight > 0) {
		return configErr("wave_height", errors.New("must be positive"))
	}
	if !(c.WaveDensity > 0) {
		return configErr("wave_density", errors.New("must be positive"))
	}
	if c.NoiseStrength < 0 {
		return configErr("noise_strength", errors.New("must not be negative"))
	}
	return nil
}

// WaveSample is the surface state at one point.
type WaveSample struct {
	Height float32
	Normal mgl32.Vec3
}

// Evaluate computes the surface at world (x, z). Every sampling path, the CPU
// device and the analytic sampler, goes through this function so their
// results agree exactly.
func Evaluate(cfg *WaveConfig, m GridMapping, tv TimeVector, x, z float32) WaveSample {
	amp := float64(cfg.WaveHeight)
	density := float64(cfg.WaveDensity)
	lx := float64(x - m.Center.X())
	lz := float64(z - m.Center.Y())

	a := lx*density + float64(tv.Y())*float64(cfg.WaveMoveVelocity.X())
	b := lz*density + float64(tv.Y())*float64(cfg.WaveMoveVelocity.Y())
	sa, ca := math.Sincos(a)
	sb, cb := math.Sincos(b)

	h := sa * sb * amp
	dhdx := amp * density * ca * sb
	dhdz := amp * density * sa * cb

	if cfg.NoiseStrength > 0 && cfg.Noise != nil && m.Extent.X() > 0 && m.Extent.Y() > 0 {
		ex, ez := float64(m.Extent.X()), float64(m.Extent.Y())
		scroll := float64(tv.X()) * float64(cfg.WaveSpeed)
		u := lx/ex + 0.5 + scroll
		v := lz/ez + 0.5 + scroll
		k := float64(cfg.NoiseStrength) * amp
		n := float64(cfg.Noise.Sample(u, v))
		h += k * (2*n - 1)

		// One-texel central differences, converted to world units.
		du := 1 / float64(cfg.Noise.Width())
		dv := 1 / float64(cfg.Noise.Height())
		dndu := float64(cfg.Noise.Sample(u+du, v)-cfg.Noise.Sample(u-du, v)) / (2 * du)
		dndv := float64(cfg.Noise.Sample(u, v+dv)-cfg.Noise.Sample(u, v-dv)) / (2 * dv)
		dhdx += 2 * k * dndu / ex
		dhdz += 2 * k * dndv / ez
	}

	n := mgl32.Vec3{float32(-dhdx), 1, float32(-dhdz)}.Normalize()
	return WaveSample{Height: float32(h), Normal: n}
}
