package sea

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/alitto/pond/v2"
)

// DispatchStats counts the work done by the last dispatch.
type DispatchStats struct {
	Groups  int64
	Threads int64 // thread slots launched, including out-of-grid ones
	Cells   int64 // texels written
}

// CPUDevice runs the wave kernel on a goroutine pool, one task per block.
type CPUDevice struct {
	pool          pond.Pool
	workers       int
	buf           []float32
	width, height int
	released      bool

	groups, threads, cells atomic.Int64
}

// NewCPUDevice creates a device with the given worker count, or one per CPU
// when workers <= 0.
func NewCPUDevice(workers int) *CPUDevice {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUDevice{pool: pond.NewPool(workers), workers: workers}
}

func (d *CPUDevice) Name() string {
	return fmt.Sprintf("cpu(%d workers)", d.workers)
}

func (d *CPUDevice) Allocate(width, height int) error {
	if d.released {
		return errors.New("cpu device released")
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("invalid grid %dx%d", width, height)
	}
	d.width, d.height = width, height
	d.buf = make([]float32, width*height*TexelStride)
	return nil
}

func (d *CPUDevice) Dispatch(k Kernel, groups Groups, block int) error {
	if d.released {
		return errors.New("cpu device released")
	}
	d.groups.Store(0)
	d.threads.Store(0)
	d.cells.Store(0)
	if groups.Total() == 0 || block <= 0 || d.width == 0 || d.height == 0 {
		return nil
	}
	if k.Mapping.Width != d.width || k.Mapping.Height != d.height {
		return fmt.Errorf("mapping %dx%d does not match buffer %dx%d",
			k.Mapping.Width, k.Mapping.Height, d.width, d.height)
	}

	group := d.pool.NewGroup()
	for gy := 0; gy < groups.Y; gy++ {
		for gx := 0; gx < groups.X; gx++ {
			gx, gy := gx, gy
			group.Submit(func() {
				d.runBlock(k, gx, gy, block)
			})
		}
	}
	return group.Wait()
}

func (d *CPUDevice) runBlock(k Kernel, gx, gy, block int) {
	var written int64
	for ly := 0; ly < block; ly++ {
		z := gy*block + ly
		for lx := 0; lx < block; lx++ {
			x := gx*block + lx
			if x >= d.width || z >= d.height {
				continue
			}
			c := k.Mapping.CellCenter(x, z)
			writeTexel(d.buf, k.Mapping.Index(x, z), Evaluate(k.Wave, k.Mapping, k.Time, c.X(), c.Z()))
			written++
		}
	}
	d.groups.Add(1)
	d.threads.Add(int64(block * block))
	d.cells.Add(written)
}

// ReadBack is a plain copy: Dispatch already waited for every block.
func (d *CPUDevice) ReadBack(dst []float32) error {
	if d.released {
		return errors.New("cpu device released")
	}
	if len(dst) != len(d.buf) {
		return fmt.Errorf("readback needs %d floats, got %d", len(d.buf), len(dst))
	}
	copy(dst, d.buf)
	return nil
}

func (d *CPUDevice) Release() error {
	if d.released {
		return nil
	}
	d.released = true
	d.pool.StopAndWait()
	d.buf = nil
	return nil
}

// LastDispatch reports counters for the most recent Dispatch.
func (d *CPUDevice) LastDispatch() DispatchStats {
	return DispatchStats{
		Groups:  d.groups.Load(),
		Threads: d.threads.Load(),
		Cells:   d.cells.Load(),
	}
}
