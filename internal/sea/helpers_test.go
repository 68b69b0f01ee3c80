package sea

import (
	"testing"

	"CartoonSea/internal/noise"

	"github.com/go-gl/mathgl/mgl32"
)

func flatNoise(t testing.TB, w, h int) *noise.Texture {
	t.Helper()
	texels := make([]float32, w*h)
	for i := range texels {
		texels[i] = 0.5
	}
	tex, err := noise.NewTexture(w, h, texels)
	if err != nil {
		t.Fatalf("building noise texture: %v", err)
	}
	return tex
}

func bakedNoise(t testing.TB, w, h int) *noise.Texture {
	t.Helper()
	p := noise.DefaultParams()
	p.Width, p.Height = w, h
	tex, err := noise.Bake(p)
	if err != nil {
		t.Fatalf("baking noise: %v", err)
	}
	return tex
}

func testWave(t testing.TB, w, h int) WaveConfig {
	cfg := DefaultWaveConfig(flatNoise(t, w, h))
	cfg.WaveHeight = 0.4
	cfg.WaveDensity = 0.5
	cfg.WaveMoveVelocity = mgl32.Vec2{0.4, 0.4}
	return cfg
}

func approx(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
