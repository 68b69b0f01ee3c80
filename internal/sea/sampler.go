package sea

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sampler modes.
const (
	SamplerReadback = "readback"
	SamplerAnalytic = "analytic"
)

// Readback filters.
const (
	FilterNearest  = "nearest"
	FilterBilinear = "bilinear"
)

// Frame is everything a sampler needs to answer queries for one tick.
type Frame struct {
	Wave    *WaveConfig
	Mapping GridMapping
	Time    TimeVector
}

// Sampler answers surface queries for the current tick.
type Sampler interface {
	// Prepare makes the sampler valid for a tick. It runs once per tick,
	// after the compute dispatch.
	Prepare(f Frame) error
	// Sample returns ErrSampleOutOfRange for positions off the patch.
	Sample(pos mgl32.Vec3) (WaveSample, error)
	Close() error
}

// ConcurrentSampler is implemented by samplers whose Sample may be called
// from several goroutines between two Prepare calls.
type ConcurrentSampler interface {
	ConcurrentSafe() bool
}

var errNotPrepared = errors.New("sampler has no frame for this tick")

// NewSampler builds the sampler for a mode. The readback sampler reads from
// device.
func NewSampler(mode, filter string, device Device) (Sampler, error) {
	switch mode {
	case SamplerReadback, "":
		if filter != "" && filter != FilterNearest && filter != FilterBilinear {
			return nil, configErr("sampler.filter", fmt.Errorf("unknown filter %q", filter))
		}
		return NewReadbackSampler(device, filter), nil
	case SamplerAnalytic:
		return NewAnalyticSampler(), nil
	default:
		return nil, configErr("sampler.mode", fmt.Errorf("unknown sampler %q", mode))
	}
}

// ReadbackSampler mirrors the device buffer into CPU memory once per tick and
// indexes the mirror.
type ReadbackSampler struct {
	device   Device
	bilinear bool
	mirror   []float32
	mapping  GridMapping
	ready    bool
	closed   bool
	reads    uint64
}

func NewReadbackSampler(device Device, filter string) *ReadbackSampler {
	return &ReadbackSampler{device: device, bilinear: filter == FilterBilinear}
}

// Prepare performs the tick's single readback. It is the synchronization
// point with the device.
func (s *ReadbackSampler) Prepare(f Frame) error {
	if s.closed {
		return errors.New("readback sampler closed")
	}
	s.ready = false
	n := f.Mapping.Width * f.Mapping.Height * TexelStride
	if cap(s.mirror) < n {
		s.mirror = make([]float32, n)
	}
	s.mirror = s.mirror[:n]
	if n > 0 {
		if err := s.device.ReadBack(s.mirror); err != nil {
			return fmt.Errorf("reading back wave buffer: %w", err)
		}
		s.reads++
	}
	s.mapping = f.Mapping
	s.ready = true
	return nil
}

func (s *ReadbackSampler) Sample(pos mgl32.Vec3) (WaveSample, error) {
	if !s.ready {
		return WaveSample{}, errNotPrepared
	}
	x, z, ok := s.mapping.TexelAt(pos)
	if !ok {
		return WaveSample{}, ErrSampleOutOfRange
	}
	if !s.bilinear {
		return readTexel(s.mirror, s.mapping.Index(x, z)), nil
	}
	return s.sampleBilinear(pos), nil
}

// sampleBilinear interpolates between the four nearest texel centers,
// clamping at the patch edge.
func (s *ReadbackSampler) sampleBilinear(pos mgl32.Vec3) WaveSample {
	m := s.mapping
	u, v := m.Normalize(pos)
	fx := u*float64(m.Width) - 0.5
	fz := v*float64(m.Height) - 0.5
	x0 := clampInt(int(math.Floor(fx)), 0, m.Width-1)
	z0 := clampInt(int(math.Floor(fz)), 0, m.Height-1)
	x1 := clampInt(x0+1, 0, m.Width-1)
	z1 := clampInt(z0+1, 0, m.Height-1)
	tx := float32(clamp01(fx - math.Floor(fx)))
	tz := float32(clamp01(fz - math.Floor(fz)))
	if fx < 0 {
		tx = 0
	}
	if fz < 0 {
		tz = 0
	}

	a := readTexel(s.mirror, m.Index(x0, z0))
	b := readTexel(s.mirror, m.Index(x1, z0))
	c := readTexel(s.mirror, m.Index(x0, z1))
	d := readTexel(s.mirror, m.Index(x1, z1))

	lerpf := func(p, q, t float32) float32 { return p + (q-p)*t }
	h := lerpf(lerpf(a.Height, b.Height, tx), lerpf(c.Height, d.Height, tx), tz)
	top := a.Normal.Mul(1 - tx).Add(b.Normal.Mul(tx))
	bottom := c.Normal.Mul(1 - tx).Add(d.Normal.Mul(tx))
	n := top.Mul(1 - tz).Add(bottom.Mul(tz))
	if n.Len() > 0 {
		n = n.Normalize()
	} else {
		n = mgl32.Vec3{0, 1, 0}
	}
	return WaveSample{Height: h, Normal: n}
}

// ConcurrentSafe is true: Sample only reads the mirror.
func (s *ReadbackSampler) ConcurrentSafe() bool { return true }

// Reads counts readbacks performed.
func (s *ReadbackSampler) Reads() uint64 { return s.reads }

// Close drops the CPU mirror. The device itself belongs to the session.
func (s *ReadbackSampler) Close() error {
	s.closed = true
	s.ready = false
	s.mirror = nil
	return nil
}

// Mirror exposes the last readback for diagnostics. Callers must not modify it.
func (s *ReadbackSampler) Mirror() []float32 {
	return s.mirror
}

// AnalyticSampler evaluates the wave function at the query position directly.
type AnalyticSampler struct {
	frame Frame
	ready bool
}

func NewAnalyticSampler() *AnalyticSampler {
	return &AnalyticSampler{}
}

func (s *AnalyticSampler) Prepare(f Frame) error {
	if f.Wave == nil {
		return configErr("wave", errors.New("frame has no wave config"))
	}
	// The frame keeps its own copy of the wave config for the whole tick.
	wave := *f.Wave
	f.Wave = &wave
	s.frame = f
	s.ready = true
	return nil
}

func (s *AnalyticSampler) Sample(pos mgl32.Vec3) (WaveSample, error) {
	if !s.ready {
		return WaveSample{}, errNotPrepared
	}
	if !s.frame.Mapping.Contains(pos) {
		return WaveSample{}, ErrSampleOutOfRange
	}
	return Evaluate(s.frame.Wave, s.frame.Mapping, s.frame.Time, pos.X(), pos.Z()), nil
}

func (s *AnalyticSampler) ConcurrentSafe() bool { return true }

func (s *AnalyticSampler) Close() error {
	s.ready = false
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
