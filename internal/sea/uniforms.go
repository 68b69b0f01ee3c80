package sea

import (
	"sync/atomic"

	"CartoonSea/internal/noise"

	"github.com/go-gl/mathgl/mgl32"
)

// Shader property names shared with the water material.
const (
	UniformCustomTime       = "_CustomTime"
	UniformWaveHeight       = "_WaveHeight"
	UniformWaveDensity      = "_WaveDensity"
	UniformWaveSpeed        = "_WaveSpeed"
	UniformWaveMoveVelocity = "_WaveMoveVelocity"
	UniformShallowColor     = "_ShallowColor"
	UniformDeepColor        = "_DeepColor"
	UniformFoamColor        = "_FoamColor"
	UniformSeaSize          = "_SeaSize"
	UniformNoise            = "_Noise"
	UniformWaveData         = "_WaveData"
)

// BufferHandle identifies the wave buffer for a renderer that binds it
// directly. It carries no data.
type BufferHandle struct {
	Device string
	Width  int
	Height int
	Stride int
}

// ParameterSnapshot is the immutable set of values published to the renderer
// each tick.
type ParameterSnapshot struct {
	Tick             uint64
	Time             TimeVector
	WaveHeight       float32
	WaveDensity      float32
	WaveSpeed        float32
	WaveMoveVelocity mgl32.Vec2
	ShallowColor     mgl32.Vec4
	DeepColor        mgl32.Vec4
	FoamColor        mgl32.Vec4
	SeaSize          mgl32.Vec2
	Noise            noise.Source
	WaveData         BufferHandle
}

func newSnapshot(tick uint64, cfg *WaveConfig, m GridMapping, tv TimeVector, buf BufferHandle) ParameterSnapshot {
	return ParameterSnapshot{
		Tick:             tick,
		Time:             tv,
		WaveHeight:       cfg.WaveHeight,
		WaveDensity:      cfg.WaveDensity,
		WaveSpeed:        cfg.WaveSpeed,
		WaveMoveVelocity: cfg.WaveMoveVelocity,
		ShallowColor:     cfg.ShallowColor,
		DeepColor:        cfg.DeepColor,
		FoamColor:        cfg.FoamColor,
		SeaSize:          m.Extent,
		Noise:            cfg.Noise,
		WaveData:         buf,
	}
}

// Uniforms flattens the snapshot into shader property values. The map is
// freshly allocated on every call.
func (s ParameterSnapshot) Uniforms() map[string]interface{} {
	return map[string]interface{}{
		UniformCustomTime:       s.Time,
		UniformWaveHeight:       s.WaveHeight,
		UniformWaveDensity:      mgl32.Vec2{s.WaveDensity, s.WaveDensity},
		UniformWaveSpeed:        s.WaveSpeed,
		UniformWaveMoveVelocity: s.WaveMoveVelocity,
		UniformShallowColor:     s.ShallowColor,
		UniformDeepColor:        s.DeepColor,
		UniformFoamColor:        s.FoamColor,
		UniformSeaSize:          s.SeaSize,
		UniformNoise:            s.Noise,
		UniformWaveData:         s.WaveData,
	}
}

// RenderSink receives the snapshot once per tick. Implementations must treat
// it as read-only.
type RenderSink interface {
	Publish(ParameterSnapshot)
}

// SnapshotStore keeps the latest snapshot for a renderer running on another
// goroutine.
type SnapshotStore struct {
	latest atomic.Pointer[ParameterSnapshot]
}

func (s *SnapshotStore) Publish(snap ParameterSnapshot) {
	s.latest.Store(&snap)
}

// Latest returns the most recent snapshot, or nil before the first tick.
func (s *SnapshotStore) Latest() *ParameterSnapshot {
	return s.latest.Load()
}

// UniformMap writes snapshots into a material's custom uniform table.
type UniformMap map[string]interface{}

func (u UniformMap) Publish(snap ParameterSnapshot) {
	for k, v := range snap.Uniforms() {
		u[k] = v
	}
}

// MultiSink fans a snapshot out to several sinks in order.
type MultiSink []RenderSink

func (m MultiSink) Publish(snap ParameterSnapshot) {
	for _, s := range m {
		if s != nil {
			s.Publish(snap)
		}
	}
}
