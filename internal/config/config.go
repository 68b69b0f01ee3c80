// Package config loads sea simulation settings from YAML files and
// command-line flags.
package config

import (
	"errors"
	"fmt"

	"CartoonSea/internal/noise"
	"CartoonSea/internal/scene"
	"CartoonSea/internal/sea"

	"github.com/go-gl/mathgl/mgl32"
)

// Config holds all simulation settings.
type Config struct {
	Wave    WaveConfig     `yaml:"wave"`
	Surface SurfaceConfig  `yaml:"surface"`
	Sampler SamplerConfig  `yaml:"sampler"`
	Compute ComputeConfig  `yaml:"compute"`
	Objects []ObjectConfig `yaml:"objects"`
	Logging LoggingConfig  `yaml:"logging"`
}

// WaveConfig holds the wave parameters and the noise texture recipe.
type WaveConfig struct {
	Noise            noise.Params `yaml:"noise"`
	ShallowColor     [4]float32   `yaml:"shallow_color"`
	DeepColor        [4]float32   `yaml:"deep_color"`
	FoamColor        [4]float32   `yaml:"foam_color"`
	WaveSpeed        float32      `yaml:"wave_speed"`
	WaveHeight       float32      `yaml:"wave_height"`
	WaveDensity      float32      `yaml:"wave_density"`
	WaveMoveVelocity [2]float32   `yaml:"wave_move_velocity"`
	NoiseStrength    float32      `yaml:"noise_strength"`
}

// SurfaceConfig holds the patch geometry and compute grid settings.
type SurfaceConfig struct {
	MeshBounds   [2]float32   `yaml:"mesh_bounds"`   // base mesh width, depth
	MeshVertices [][3]float32 `yaml:"mesh_vertices"` // overrides mesh_bounds when set
	InitialSize  [2]float32   `yaml:"initial_size"`  // world footprint at start
	Center       [3]float32   `yaml:"center"`
	GridWidth    int          `yaml:"grid_width"` // 0 uses the noise width
	GridHeight   int          `yaml:"grid_height"`
	BlockSize    int          `yaml:"block_size"`
	Paused       bool         `yaml:"paused"`
}

// SamplerConfig selects how heights are queried.
type SamplerConfig struct {
	Mode   string `yaml:"mode"`
	Filter string `yaml:"filter"`
}

// ComputeConfig selects the device backend.
type ComputeConfig struct {
	Backend string `yaml:"backend"`
	Workers int    `yaml:"workers"`
}

// ObjectConfig places one floating object.
type ObjectConfig struct {
	Name     string     `yaml:"name"`
	Position [3]float32 `yaml:"position"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Console bool   `yaml:"console"`
}

// Default returns a Config with the stock sea.
func Default() *Config {
	return &Config{
		Wave: WaveConfig{
			Noise:            noise.DefaultParams(),
			ShallowColor:     [4]float32{0, 0.8, 1, 0.5},
			DeepColor:        [4]float32{0, 0.1, 0.5, 1},
			FoamColor:        [4]float32{1, 1, 1, 1},
			WaveSpeed:        0.01,
			WaveHeight:       0.4,
			WaveDensity:      0.5,
			WaveMoveVelocity: [2]float32{0.4, 0.4},
		},
		Surface: SurfaceConfig{
			MeshBounds:  [2]float32{10, 10},
			InitialSize: [2]float32{10, 10},
			BlockSize:   sea.DefaultBlockSize,
		},
		Sampler: SamplerConfig{
			Mode:   sea.SamplerReadback,
			Filter: sea.FilterNearest,
		},
		Compute: ComputeConfig{
			Backend: sea.BackendCPU,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

func invalid(field, format string, args ...interface{}) error {
	return &sea.ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// Validate reports the first setting a session would reject.
func (c *Config) Validate() error {
	w := c.Wave
	if w.Noise.Width <= 0 || w.Noise.Height <= 0 {
		return &sea.ConfigError{Field: "wave.noise", Err: sea.ErrZeroGrid}
	}
	switch w.Noise.Kind {
	case "", noise.KindPerlin, noise.KindSimplex, noise.KindImproved:
	default:
		return invalid("wave.noise.kind", "unknown noise kind %q", w.Noise.Kind)
	}
	if !(w.WaveHeight > 0) {
		return invalid("wave.wave_height", "must be positive, got %v", w.WaveHeight)
	}
	if !(w.WaveDensity > 0) {
		return invalid("wave.wave_density", "must be positive, got %v", w.WaveDensity)
	}
	if w.NoiseStrength < 0 {
		return invalid("wave.noise_strength", "must not be negative, got %v", w.NoiseStrength)
	}

	s := c.Surface
	if b := s.Bounds(); !(b.X() > 0) || !(b.Y() > 0) {
		return &sea.ConfigError{Field: "surface.mesh_bounds", Err: sea.ErrZeroMeshBounds}
	}
	if s.InitialSize[0] < 0 || s.InitialSize[1] < 0 {
		return invalid("surface.initial_size", "must not be negative")
	}
	if s.GridWidth < 0 || s.GridHeight < 0 {
		return &sea.ConfigError{Field: "surface.grid", Err: sea.ErrZeroGrid}
	}
	if s.BlockSize < 0 {
		return invalid("surface.block_size", "must not be negative")
	}

	switch c.Sampler.Mode {
	case "", sea.SamplerReadback, sea.SamplerAnalytic:
	default:
		return invalid("sampler.mode", "unknown sampler %q", c.Sampler.Mode)
	}
	switch c.Sampler.Filter {
	case "", sea.FilterNearest, sea.FilterBilinear:
	default:
		return invalid("sampler.filter", "unknown filter %q", c.Sampler.Filter)
	}
	switch c.Compute.Backend {
	case "", sea.BackendCPU, sea.BackendOpenCL:
	default:
		return invalid("compute.backend", "unknown backend %q", c.Compute.Backend)
	}
	return nil
}

// Build bakes the noise texture and returns the runtime wave config.
func (w WaveConfig) Build() (sea.WaveConfig, error) {
	tex, err := noise.Bake(w.Noise)
	if err != nil {
		return sea.WaveConfig{}, &sea.ConfigError{Field: "wave.noise", Err: err}
	}
	return sea.WaveConfig{
		Noise:            tex,
		ShallowColor:     mgl32.Vec4(w.ShallowColor),
		DeepColor:        mgl32.Vec4(w.DeepColor),
		FoamColor:        mgl32.Vec4(w.FoamColor),
		WaveSpeed:        w.WaveSpeed,
		WaveHeight:       w.WaveHeight,
		WaveDensity:      w.WaveDensity,
		WaveMoveVelocity: mgl32.Vec2(w.WaveMoveVelocity),
		NoiseStrength:    w.NoiseStrength,
	}, nil
}

// Bounds is the planar size of the base mesh, measured from MeshVertices
// when given.
func (s SurfaceConfig) Bounds() mgl32.Vec2 {
	if len(s.MeshVertices) == 0 {
		return mgl32.Vec2(s.MeshBounds)
	}
	verts := make([]mgl32.Vec3, len(s.MeshVertices))
	for i, v := range s.MeshVertices {
		verts[i] = mgl32.Vec3(v)
	}
	return scene.MeshBounds(verts)
}

// Patch returns a transform at the configured center.
func (s SurfaceConfig) Patch() *scene.Transform {
	t := scene.NewTransform("Sea")
	t.SetPosition(mgl32.Vec3(s.Center))
	return t
}

// Registry builds the floating objects in file order.
func (c *Config) Registry() *scene.Registry {
	reg := scene.NewRegistry()
	for i, o := range c.Objects {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("Object%d", i)
		}
		t := scene.NewTransform(name)
		t.SetPosition(mgl32.Vec3(o.Position))
		reg.Add(t)
	}
	return reg
}

// SessionOptions validates c and turns it into session options. The caller
// supplies the render sink and object source.
func (c *Config) SessionOptions(sink sea.RenderSink, objects sea.ObjectSource) (sea.Options, error) {
	if err := c.Validate(); err != nil {
		return sea.Options{}, err
	}
	wave, err := c.Wave.Build()
	if err != nil {
		return sea.Options{}, err
	}
	s := c.Surface
	opts := sea.Options{
		Wave:        wave,
		Patch:       s.Patch(),
		MeshBounds:  s.Bounds(),
		InitialSize: mgl32.Vec2(s.InitialSize),
		GridWidth:   s.GridWidth,
		GridHeight:  s.GridHeight,
		BlockSize:   s.BlockSize,
		Workers:     c.Compute.Workers,
		SamplerMode: c.Sampler.Mode,
		Filter:      c.Sampler.Filter,
		Sink:        sink,
		Objects:     objects,
		Paused:      s.Paused,
	}
	if c.Compute.Backend != "" && c.Compute.Backend != sea.BackendCPU {
		dev, err := sea.NewDevice(c.Compute.Backend, c.Compute.Workers)
		if err != nil {
			return sea.Options{}, fmt.Errorf("creating %s device: %w", c.Compute.Backend, err)
		}
		opts.Device = dev
	}
	return opts, nil
}

// IsConfigError reports whether err is a configuration problem rather than a
// runtime failure.
func IsConfigError(err error) bool {
	var ce *sea.ConfigError
	return errors.As(err, &ce)
}
