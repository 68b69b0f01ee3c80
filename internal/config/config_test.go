package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"CartoonSea/internal/sea"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Wave.WaveHeight != 0.4 {
		t.Errorf("expected wave height 0.4, got %f", cfg.Wave.WaveHeight)
	}
	if cfg.Wave.WaveDensity != 0.5 {
		t.Errorf("expected wave density 0.5, got %f", cfg.Wave.WaveDensity)
	}
	if cfg.Wave.WaveSpeed != 0.01 {
		t.Errorf("expected wave speed 0.01, got %f", cfg.Wave.WaveSpeed)
	}
	if cfg.Wave.NoiseStrength != 0 {
		t.Errorf("expected no noise detail by default, got %f", cfg.Wave.NoiseStrength)
	}
	if cfg.Wave.Noise.Width != 128 || cfg.Wave.Noise.Height != 128 {
		t.Errorf("expected 128x128 noise, got %dx%d", cfg.Wave.Noise.Width, cfg.Wave.Noise.Height)
	}
	if cfg.Surface.InitialSize != [2]float32{10, 10} {
		t.Errorf("expected initial size 10x10, got %v", cfg.Surface.InitialSize)
	}
	if cfg.Surface.BlockSize != 8 {
		t.Errorf("expected block size 8, got %d", cfg.Surface.BlockSize)
	}
	if cfg.Sampler.Mode != "readback" {
		t.Errorf("expected readback sampler, got %s", cfg.Sampler.Mode)
	}
	if cfg.Compute.Backend != "cpu" {
		t.Errorf("expected cpu backend, got %s", cfg.Compute.Backend)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sea.yaml")

	yamlContent := `
wave:
  wave_height: 0.8
  wave_move_velocity: [1, -0.5]
  noise:
    kind: simplex
    width: 64
    height: 32
surface:
  initial_size: [40, 20]
  center: [5, 0, -5]
sampler:
  mode: analytic
objects:
  - name: Boat
    position: [1, 0, 2]
  - position: [3, 0, 4]
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Wave.WaveHeight != 0.8 {
		t.Errorf("expected wave height 0.8, got %f", cfg.Wave.WaveHeight)
	}
	if cfg.Wave.WaveMoveVelocity != [2]float32{1, -0.5} {
		t.Errorf("expected velocity (1,-0.5), got %v", cfg.Wave.WaveMoveVelocity)
	}
	if cfg.Wave.Noise.Kind != "simplex" || cfg.Wave.Noise.Width != 64 || cfg.Wave.Noise.Height != 32 {
		t.Errorf("unexpected noise params %+v", cfg.Wave.Noise)
	}
	// Unset keys keep their defaults.
	if cfg.Wave.WaveDensity != 0.5 {
		t.Errorf("expected default density 0.5, got %f", cfg.Wave.WaveDensity)
	}
	if cfg.Wave.Noise.Octaves != 3 {
		t.Errorf("expected default octaves 3, got %d", cfg.Wave.Noise.Octaves)
	}
	if cfg.Surface.InitialSize != [2]float32{40, 20} {
		t.Errorf("expected initial size 40x20, got %v", cfg.Surface.InitialSize)
	}
	if cfg.Sampler.Mode != "analytic" {
		t.Errorf("expected analytic sampler, got %s", cfg.Sampler.Mode)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}

	reg := cfg.Registry()
	if reg.Len() != 2 {
		t.Fatalf("expected 2 objects, got %d", reg.Len())
	}
	if reg.Transforms()[0].Name != "Boat" || reg.Transforms()[1].Name != "Object1" {
		t.Errorf("unexpected object names %s, %s", reg.Transforms()[0].Name, reg.Transforms()[1].Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sea.yaml")
	cfg := Default()
	cfg.Wave.NoiseStrength = 0.2
	cfg.Sampler.Filter = "bilinear"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Wave.NoiseStrength != 0.2 || loaded.Sampler.Filter != "bilinear" {
		t.Errorf("saved settings lost: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		want   error
	}{
		"zero noise":   {func(c *Config) { c.Wave.Noise.Width = 0 }, sea.ErrZeroGrid},
		"zero mesh":    {func(c *Config) { c.Surface.MeshBounds = [2]float32{10, 0} }, sea.ErrZeroMeshBounds},
		"bad grid":     {func(c *Config) { c.Surface.GridHeight = -4 }, sea.ErrZeroGrid},
		"bad height":   {func(c *Config) { c.Wave.WaveHeight = 0 }, nil},
		"bad density":  {func(c *Config) { c.Wave.WaveDensity = -1 }, nil},
		"bad strength": {func(c *Config) { c.Wave.NoiseStrength = -1 }, nil},
		"bad kind":     {func(c *Config) { c.Wave.Noise.Kind = "worley" }, nil},
		"bad sampler":  {func(c *Config) { c.Sampler.Mode = "guess" }, nil},
		"bad filter":   {func(c *Config) { c.Sampler.Filter = "cubic" }, nil},
		"bad backend":  {func(c *Config) { c.Compute.Backend = "tpu" }, nil},
		"bad size":     {func(c *Config) { c.Surface.InitialSize = [2]float32{-1, 5} }, nil},
	}
	for name, c := range cases {
		cfg := Default()
		c.mutate(cfg)
		err := cfg.Validate()
		if !IsConfigError(err) {
			t.Errorf("%s: expected a config error, got %v", name, err)
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", name, c.want, err)
		}
	}
}

func TestSessionOptionsStartsSession(t *testing.T) {
	cfg := Default()
	cfg.Wave.Noise.Width, cfg.Wave.Noise.Height = 32, 32
	cfg.Sampler.Mode = "analytic"
	cfg.Compute.Workers = 2
	cfg.Objects = []ObjectConfig{{Name: "Buoy", Position: [3]float32{1, 0, 1}}}
	reg := cfg.Registry()

	opts, err := cfg.SessionOptions(nil, reg)
	if err != nil {
		t.Fatalf("failed to build options: %v", err)
	}
	if opts.Wave.Noise.Width() != 32 {
		t.Errorf("expected a baked 32 wide texture, got %d", opts.Wave.Noise.Width())
	}

	s := sea.NewSession(opts)
	if err := s.Start(); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	defer s.Stop()
	if err := s.Tick(1); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if s.Stats().Placed != 1 {
		t.Errorf("expected the buoy placed, got %+v", s.Stats())
	}
}

func TestMeshVerticesOverrideBounds(t *testing.T) {
	cfg := Default()
	cfg.Surface.MeshVertices = [][3]float32{{-3, 0, -1}, {3, 0.5, -1}, {3, 0, 2}, {-3, 0, 2}}
	if b := cfg.Surface.Bounds(); b[0] != 6 || b[1] != 3 {
		t.Errorf("expected bounds 6x3, got %v", b)
	}
	cfg.Surface.MeshVertices = [][3]float32{{1, 0, 1}}
	if err := cfg.Validate(); !errors.Is(err, sea.ErrZeroMeshBounds) {
		t.Errorf("expected a degenerate mesh to fail, got %v", err)
	}
}

func TestSessionOptionsRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Surface.MeshBounds = [2]float32{}
	if _, err := cfg.SessionOptions(nil, nil); !errors.Is(err, sea.ErrZeroMeshBounds) {
		t.Errorf("expected ErrZeroMeshBounds, got %v", err)
	}
}

func TestWatchDeliversReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sea.yaml")
	if err := Save(Default(), path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	edited := Default()
	edited.Wave.WaveHeight = 1.5
	broken := []byte("wave: [not, a, map")

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case c := <-got:
			// Reads racing a truncating write may see defaults.
			if c.Wave.WaveHeight != 1.5 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("watch returned %v", err)
			}
			return
		case <-ticker.C:
			// The watcher may not be registered yet; keep writing until it
			// reports. Broken writes are skipped by the watcher.
			os.WriteFile(path, broken, 0644)
			if err := Save(edited, path); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload delivered")
		}
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sea.yaml")
	if err := os.WriteFile(path, []byte("wave:\n  wave_hieght: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected a misspelt key to fail")
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sea.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}
	if cfg.Wave.WaveHeight != 0.4 {
		t.Errorf("expected default wave height, got %f", cfg.Wave.WaveHeight)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv(ConfigEnv, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)

	if got := findConfigFile(); got != "" {
		t.Errorf("expected no config found, got %s", got)
	}

	if err := Save(Default(), filepath.Join(dir, "sea.yaml")); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != filepath.Join(".", "sea.yaml") {
		t.Errorf("expected ./sea.yaml, got %s", got)
	}

	explicit := filepath.Join(dir, "other.yaml")
	t.Setenv(ConfigEnv, explicit)
	if got := findConfigFile(); got != explicit {
		t.Errorf("expected %s from %s, got %s", explicit, ConfigEnv, got)
	}
}
