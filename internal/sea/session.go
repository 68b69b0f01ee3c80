package sea

import (
	"errors"
	"fmt"
	"runtime"

	"CartoonSea/internal/logger"
	"CartoonSea/internal/scene"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options configures a Session.
type Options struct {
	Wave WaveConfig

	// Patch is the sea transform: its position centers the patch and its
	// planar scale sizes it. A fresh transform is used when nil.
	Patch       *scene.Transform
	MeshBounds  mgl32.Vec2
	InitialSize mgl32.Vec2 // applied with SetExtent at Start when non-zero

	// GridWidth and GridHeight override the noise texture resolution.
	GridWidth  int
	GridHeight int
	BlockSize  int

	// Device runs the kernel; the session takes ownership. A CPU device with
	// Workers goroutines is created when nil.
	Device  Device
	Workers int

	SamplerMode string
	Filter      string

	Sink    RenderSink
	Objects ObjectSource
	Paused  bool
}

// Stats counts session activity.
type Stats struct {
	Ticks      uint64
	LiveTicks  uint64
	Dispatches uint64
	Placed     uint64
	OutOfRange uint64
}

// Session owns one simulated sea patch from Start to Stop.
type Session struct {
	opts Options
	wave WaveConfig

	patch   *scene.Transform
	size    *SizeController
	clock   *Clock
	device  Device
	compute *WaveFieldCompute
	sampler Sampler
	binder  *Binder
	pool    pond.Pool

	pendingWave *WaveConfig
	last        *ParameterSnapshot
	stats       Stats
	started     bool
	stopped     bool
}

// NewSession prepares a session. Nothing is acquired until Start.
func NewSession(opts Options) *Session {
	initial := Running
	if opts.Paused {
		initial = Paused
	}
	return &Session{opts: opts, clock: NewClock(initial)}
}

// Start validates the configuration and acquires the device buffer, sampler
// mirror and worker pool. On failure everything acquired so far is released.
func (s *Session) Start() (err error) {
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	o := s.opts

	var cleanup []func() error
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				err = multierr.Append(err, cleanup[i]())
			}
		}
	}()
	if o.Device != nil {
		cleanup = append(cleanup, o.Device.Release)
	}

	if err := o.Wave.Validate(); err != nil {
		return err
	}
	gw, gh := s.gridSize(&o.Wave)
	if gw <= 0 || gh <= 0 {
		return configErr("grid", ErrZeroGrid)
	}

	s.patch = o.Patch
	if s.patch == nil {
		s.patch = scene.NewTransform("Sea")
	}
	size, err := NewSizeController(o.MeshBounds, s.patch)
	if err != nil {
		return err
	}
	if o.InitialSize.X() > 0 || o.InitialSize.Y() > 0 {
		if err := size.SetExtent(o.InitialSize); err != nil {
			return configErr("initial_size", err)
		}
	}

	device := o.Device
	if device == nil {
		device = NewCPUDevice(o.Workers)
		cleanup = append(cleanup, device.Release)
	}

	compute, err := NewWaveFieldCompute(device, gw, gh, o.BlockSize, o.Sink)
	if err != nil {
		return err
	}
	sampler, err := NewSampler(o.SamplerMode, o.Filter, device)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, sampler.Close)

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := pond.NewPool(workers)
	cleanup = append(cleanup, func() error { pool.StopAndWait(); return nil })

	s.wave = o.Wave
	s.size = size
	s.device = device
	s.compute = compute
	s.sampler = sampler
	s.pool = pool
	s.binder = NewBinder(o.Objects, sampler, pool)
	s.started = true

	ext := size.Extent()
	logger.Log.Info("Sea session started",
		zap.String("device", device.Name()),
		zap.String("sampler", samplerName(o.SamplerMode)),
		zap.Int("gridWidth", gw),
		zap.Int("gridHeight", gh),
		zap.Float32("extentX", ext.X()),
		zap.Float32("extentZ", ext.Y()))
	return nil
}

func (s *Session) gridSize(cfg *WaveConfig) (int, int) {
	w, h := s.opts.GridWidth, s.opts.GridHeight
	if w == 0 && cfg.Noise != nil {
		w = cfg.Noise.Width()
	}
	if h == 0 && cfg.Noise != nil {
		h = cfg.Noise.Height()
	}
	return w, h
}

func samplerName(mode string) string {
	if mode == "" {
		return SamplerReadback
	}
	return mode
}

// Tick advances the simulation by dt seconds: clock, dispatch and publish,
// sampler preparation, then object placement. While paused, nothing moves
// and the frozen snapshot is republished.
func (s *Session) Tick(dt float64) error {
	if s.stopped {
		return ErrStopped
	}
	if !s.started {
		return ErrNotStarted
	}
	s.stats.Ticks++

	if !s.clock.Advance(dt) {
		if s.last != nil {
			s.compute.Publish(*s.last)
		}
		return nil
	}
	s.stats.LiveTicks++

	// Reloads apply on live ticks only; paused ticks keep the frozen parameters.
	if err := s.applyPendingWave(); err != nil {
		return err
	}

	m := s.Mapping()
	tv := s.clock.TimeVector()

	snap, err := s.compute.Dispatch(s.stats.Ticks, &s.wave, m, tv)
	if err != nil {
		return err
	}
	s.last = &snap
	s.stats.Dispatches = s.compute.Dispatches()

	if err := s.sampler.Prepare(Frame{Wave: &s.wave, Mapping: m, Time: tv}); err != nil {
		return fmt.Errorf("preparing sampler: %w", err)
	}

	bs := s.binder.Update()
	s.stats.Placed += uint64(bs.Placed)
	s.stats.OutOfRange += uint64(bs.OutOfRange)
	return nil
}

// applyPendingWave swaps in a reloaded config at a live tick boundary, resizing
// the grid when the noise resolution drives it.
func (s *Session) applyPendingWave() error {
	if s.pendingWave == nil {
		return nil
	}
	next := *s.pendingWave
	s.pendingWave = nil

	gw, gh := s.gridSize(&next)
	if cw, ch := s.compute.Size(); cw != gw || ch != gh {
		if err := s.compute.Resize(gw, gh); err != nil {
			return err
		}
	}
	s.wave = next
	logger.Log.Info("Wave config reloaded",
		zap.Float32("waveHeight", next.WaveHeight),
		zap.Float32("waveDensity", next.WaveDensity),
		zap.Int("gridWidth", gw),
		zap.Int("gridHeight", gh))
	return nil
}

// ReloadWave validates cfg and schedules it for the next live tick.
func (s *Session) ReloadWave(cfg WaveConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if gw, gh := s.gridSize(&cfg); gw <= 0 || gh <= 0 {
		return configErr("grid", ErrZeroGrid)
	}
	s.pendingWave = &cfg
	return nil
}

// Stop releases the sampler mirror, device buffer and pool. It is safe to
// call more than once.
func (s *Session) Stop() error {
	if s.stopped || !s.started {
		s.stopped = true
		return nil
	}
	s.stopped = true

	var err error
	err = multierr.Append(err, s.sampler.Close())
	err = multierr.Append(err, s.device.Release())
	s.pool.StopAndWait()

	logger.Log.Info("Sea session stopped",
		zap.Uint64("ticks", s.stats.Ticks),
		zap.Uint64("dispatches", s.stats.Dispatches),
		zap.Error(err))
	return err
}

func (s *Session) Pause()  { s.clock.Pause() }
func (s *Session) Resume() { s.clock.Resume() }

// Paused reports the state in effect for the current tick.
func (s *Session) Paused() bool {
	return s.clock.State() == Paused
}

func (s *Session) Clock() *Clock {
	return s.clock
}

// Mapping is built from the current extent and patch position.
func (s *Session) Mapping() GridMapping {
	w, h := s.compute.Size()
	pos := s.patch.Position
	return NewGridMapping(mgl32.Vec2{pos.X(), pos.Z()}, s.size.Extent(), w, h)
}

func (s *Session) Extent() mgl32.Vec2 {
	return s.size.Extent()
}

// SetExtent resizes the patch. The new size applies from the next tick.
func (s *Session) SetExtent(size mgl32.Vec2) error {
	if !s.started {
		return ErrNotStarted
	}
	return s.size.SetExtent(size)
}

func (s *Session) Sampler() Sampler {
	return s.sampler
}

func (s *Session) Device() Device {
	return s.device
}

func (s *Session) Wave() WaveConfig {
	return s.wave
}

// Snapshot returns the last published snapshot, or nil before the first live tick.
func (s *Session) Snapshot() *ParameterSnapshot {
	return s.last
}

func (s *Session) Stats() Stats {
	return s.stats
}

// WaveData returns the wave buffer for the current tick, TexelStride floats
// per texel. With the readback sampler it is the sampler's mirror and no
// further readback happens; callers must not modify it. Otherwise the device
// is read into dst, which must match the grid size.
func (s *Session) WaveData(dst []float32) ([]float32, error) {
	if !s.started || s.stopped {
		return nil, errors.New("session not running")
	}
	w, h := s.compute.Size()
	n := w * h * TexelStride
	if rb, ok := s.sampler.(*ReadbackSampler); ok && rb.ready && len(rb.mirror) == n {
		return rb.mirror, nil
	}
	if err := s.device.ReadBack(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Sample queries the surface for the current tick.
func (s *Session) Sample(pos mgl32.Vec3) (WaveSample, error) {
	if !s.started || s.stopped {
		return WaveSample{}, errors.New("session not running")
	}
	return s.sampler.Sample(pos)
}
