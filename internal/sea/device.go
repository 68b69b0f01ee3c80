package sea

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultBlockSize is the edge length of one dispatch block.
const DefaultBlockSize = 8

// TexelStride is the number of float32 per texel in a wave buffer: normal
// XYZ then height.
const TexelStride = 4

// Device backend names.
const (
	BackendCPU    = "cpu"
	BackendOpenCL = "opencl"
)

// Groups is a dispatch size in blocks.
type Groups struct {
	X, Y int
}

// Total returns the number of blocks.
func (g Groups) Total() int {
	return g.X * g.Y
}

// DispatchGroups covers a width x height grid with block x block tiles,
// rounding up so edge cells are never dropped. Any zero dimension yields an
// empty dispatch.
func DispatchGroups(width, height, block int) Groups {
	if width <= 0 || height <= 0 || block <= 0 {
		return Groups{}
	}
	return Groups{
		X: (width + block - 1) / block,
		Y: (height + block - 1) / block,
	}
}

// Kernel is the per-dispatch input of the wave kernel.
type Kernel struct {
	Wave    *WaveConfig
	Mapping GridMapping
	Time    TimeVector
}

// Device runs the wave kernel and owns the wave buffer.
type Device interface {
	Name() string
	// Allocate (re)creates the device-resident buffer for a width x height grid.
	Allocate(width, height int) error
	// Dispatch runs groups of block x block threads. Threads outside the grid
	// do nothing.
	Dispatch(k Kernel, groups Groups, block int) error
	// ReadBack copies the buffer into dst (TexelStride floats per texel). It
	// waits for any in-flight dispatch first.
	ReadBack(dst []float32) error
	// Release frees the buffer and any backend resources. Safe to call twice.
	Release() error
}

// NewDevice builds the named backend.
func NewDevice(backend string, workers int) (Device, error) {
	switch backend {
	case BackendCPU, "":
		return NewCPUDevice(workers), nil
	case BackendOpenCL:
		return NewOpenCLDevice()
	default:
		return nil, configErr("compute.backend", fmt.Errorf("unknown backend %q", backend))
	}
}

func writeTexel(buf []float32, idx int, s WaveSample) {
	o := idx * TexelStride
	buf[o] = s.Normal.X()
	buf[o+1] = s.Normal.Y()
	buf[o+2] = s.Normal.Z()
	buf[o+3] = s.Height
}

func readTexel(buf []float32, idx int) WaveSample {
	o := idx * TexelStride
	return WaveSample{
		Normal: mgl32.Vec3{buf[o], buf[o+1], buf[o+2]},
		Height: buf[o+3],
	}
}
