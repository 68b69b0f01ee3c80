package sea

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWaveFieldComputeZeroGrid(t *testing.T) {
	cfg := testWave(t, 8, 8)
	dev := NewCPUDevice(1)
	defer dev.Release()
	sink := &countingSink{}
	c, err := NewWaveFieldCompute(dev, 0, 16, 0, sink)
	if err != nil {
		t.Fatal(err)
	}
	if c.BlockSize() != DefaultBlockSize {
		t.Errorf("Expected default block size, got %d", c.BlockSize())
	}
	if c.Groups().Total() != 0 {
		t.Errorf("Expected no groups, got %v", c.Groups())
	}

	m := NewGridMapping(mgl32.Vec2{}, mgl32.Vec2{10, 10}, 0, 16)
	if _, err := c.Dispatch(1, &cfg, m, NewTimeVector(1)); err != nil {
		t.Fatal(err)
	}
	if c.Dispatches() != 0 {
		t.Error("zero grid should not dispatch")
	}
	if len(sink.published) != 1 {
		t.Error("snapshot should still be published")
	}
}

func TestWaveFieldComputeRejectsStaleMapping(t *testing.T) {
	cfg := testWave(t, 8, 8)
	dev := NewCPUDevice(1)
	defer dev.Release()
	c, err := NewWaveFieldCompute(dev, 16, 16, 8, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := NewGridMapping(mgl32.Vec2{}, mgl32.Vec2{10, 10}, 8, 8)
	if _, err := c.Dispatch(1, &cfg, m, NewTimeVector(1)); err == nil {
		t.Error("Expected a mapping mismatch error")
	}

	if err := c.Resize(8, 8); err != nil {
		t.Fatal(err)
	}
	snap, err := c.Dispatch(2, &cfg, m, NewTimeVector(1))
	if err != nil {
		t.Fatal(err)
	}
	if snap.WaveData.Width != 8 || snap.WaveData.Height != 8 || c.Dispatches() != 1 {
		t.Errorf("unexpected snapshot buffer %+v", snap.WaveData)
	}
}

func TestUniformsCarryEveryProperty(t *testing.T) {
	cfg := testWave(t, 8, 8)
	m := NewGridMapping(mgl32.Vec2{}, mgl32.Vec2{12, 6}, 8, 8)
	snap := newSnapshot(4, &cfg, m, NewTimeVector(2), BufferHandle{Width: 8, Height: 8, Stride: TexelStride})
	u := snap.Uniforms()
	for _, name := range []string{
		UniformCustomTime, UniformWaveHeight, UniformWaveDensity, UniformWaveSpeed,
		UniformWaveMoveVelocity, UniformShallowColor, UniformDeepColor, UniformFoamColor,
		UniformSeaSize, UniformNoise, UniformWaveData,
	} {
		if _, ok := u[name]; !ok {
			t.Errorf("missing uniform %s", name)
		}
	}
	if u[UniformWaveDensity] != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("Expected density as vec2, got %v", u[UniformWaveDensity])
	}
	if u[UniformDeepColor] != cfg.DeepColor {
		t.Errorf("Expected deep color passed through, got %v", u[UniformDeepColor])
	}

	u[UniformWaveHeight] = float32(99)
	if snap.Uniforms()[UniformWaveHeight] != cfg.WaveHeight {
		t.Error("Uniforms must return a fresh map")
	}
}

func TestSnapshotStoreLatest(t *testing.T) {
	var s SnapshotStore
	if s.Latest() != nil {
		t.Error("Expected nil before the first publish")
	}
	s.Publish(ParameterSnapshot{Tick: 1})
	s.Publish(ParameterSnapshot{Tick: 2})
	if s.Latest().Tick != 2 {
		t.Errorf("Expected tick 2, got %d", s.Latest().Tick)
	}
}
