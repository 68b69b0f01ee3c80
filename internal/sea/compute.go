package sea

import (
	"fmt"

	"CartoonSea/internal/logger"

	"go.uber.org/zap"
)

// WaveFieldCompute drives one dispatch per tick and publishes the parameters
// the dispatch used.
type WaveFieldCompute struct {
	device        Device
	sink          RenderSink
	width, height int
	block         int
	groups        Groups
	dispatches    uint64
}

// NewWaveFieldCompute allocates the device buffer for a width x height grid.
// A zero dimension is allowed and makes every dispatch a no-op.
func NewWaveFieldCompute(device Device, width, height, block int, sink RenderSink) (*WaveFieldCompute, error) {
	if block <= 0 {
		block = DefaultBlockSize
	}
	c := &WaveFieldCompute{device: device, sink: sink, block: block}
	if err := c.Resize(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize reallocates the device buffer for a new grid.
func (c *WaveFieldCompute) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return configErr("grid", ErrZeroGrid)
	}
	if err := c.device.Allocate(width, height); err != nil {
		return fmt.Errorf("allocating %dx%d wave buffer on %s: %w", width, height, c.device.Name(), err)
	}
	c.width, c.height = width, height
	c.groups = DispatchGroups(width, height, c.block)
	logger.Log.Debug("Wave field allocated",
		zap.String("device", c.device.Name()),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("groupsX", c.groups.X),
		zap.Int("groupsY", c.groups.Y))
	return nil
}

func (c *WaveFieldCompute) Size() (width, height int) {
	return c.width, c.height
}

func (c *WaveFieldCompute) Groups() Groups {
	return c.groups
}

func (c *WaveFieldCompute) BlockSize() int {
	return c.block
}

func (c *WaveFieldCompute) Buffer() BufferHandle {
	return BufferHandle{Device: c.device.Name(), Width: c.width, Height: c.height, Stride: TexelStride}
}

// Dispatch fills the wave buffer for the tick and then publishes the
// snapshot, so the renderer never sees parameters the buffer was not built
// with. The snapshot is published even when the grid is empty.
func (c *WaveFieldCompute) Dispatch(tick uint64, cfg *WaveConfig, m GridMapping, tv TimeVector) (ParameterSnapshot, error) {
	if m.Width != c.width || m.Height != c.height {
		return ParameterSnapshot{}, fmt.Errorf("mapping %dx%d does not match grid %dx%d", m.Width, m.Height, c.width, c.height)
	}
	if c.groups.Total() > 0 {
		if err := c.device.Dispatch(Kernel{Wave: cfg, Mapping: m, Time: tv}, c.groups, c.block); err != nil {
			return ParameterSnapshot{}, fmt.Errorf("dispatching wave kernel: %w", err)
		}
		c.dispatches++
	}
	snap := newSnapshot(tick, cfg, m, tv, c.Buffer())
	c.Publish(snap)
	return snap, nil
}

// Publish forwards a snapshot to the sink, if any.
func (c *WaveFieldCompute) Publish(snap ParameterSnapshot) {
	if c.sink != nil {
		c.sink.Publish(snap)
	}
}

func (c *WaveFieldCompute) Dispatches() uint64 {
	return c.dispatches
}
