//go:build opencl

package sea

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"CartoonSea/internal/logger"
	"CartoonSea/internal/noise"

	"github.com/jgillich/go-opencl/cl"
	"go.uber.org/zap"
)

// The kernel mirrors Evaluate and the bilinear repeat sampling of
// noise.Texture in single precision. Positions are patch-local, so the patch
// center never reaches the device.
const waveFieldKernelSource = `
int wrap_index(int i, int n) {
    i = i % n;
    if (i < 0) {
        i += n;
    }
    return i;
}

float noise_at(__global const float* tex, int w, int h, int x, int y) {
    return tex[wrap_index(y, h) * w + wrap_index(x, w)];
}

float noise_sample(__global const float* tex, int w, int h, float u, float v) {
    float fx = u * (float)w - 0.5f;
    float fy = v * (float)h - 0.5f;
    float x0 = floor(fx);
    float y0 = floor(fy);
    float tx = fx - x0;
    float ty = fy - y0;
    int ix = (int)x0;
    int iy = (int)y0;
    float a = noise_at(tex, w, h, ix, iy);
    float b = noise_at(tex, w, h, ix + 1, iy);
    float c = noise_at(tex, w, h, ix, iy + 1);
    float d = noise_at(tex, w, h, ix + 1, iy + 1);
    float top = a + (b - a) * tx;
    float bottom = c + (d - c) * tx;
    return top + (bottom - top) * ty;
}

__kernel void wave_field(
    const int width,
    const int height,
    const float extent_x,
    const float extent_z,
    const float time_x,
    const float time_y,
    const float wave_height,
    const float wave_density,
    const float wave_speed,
    const float velocity_x,
    const float velocity_z,
    const float noise_strength,
    const int noise_w,
    const int noise_h,
    __global const float* noise_tex,
    __global float* wave_data)
{
    int x = get_global_id(0);
    int z = get_global_id(1);
    if (x >= width || z >= height) {
        return;
    }

    float lx = -extent_x * 0.5f + ((float)x + 0.5f) * extent_x / (float)width;
    float lz = -extent_z * 0.5f + ((float)z + 0.5f) * extent_z / (float)height;

    float a = lx * wave_density + time_y * velocity_x;
    float b = lz * wave_density + time_y * velocity_z;
    float sa = sin(a);
    float ca = cos(a);
    float sb = sin(b);
    float cb = cos(b);

    float h = sa * sb * wave_height;
    float dhdx = wave_height * wave_density * ca * sb;
    float dhdz = wave_height * wave_density * sa * cb;

    if (noise_strength > 0.0f) {
        float scroll = time_x * wave_speed;
        float u = lx / extent_x + 0.5f + scroll;
        float v = lz / extent_z + 0.5f + scroll;
        float k = noise_strength * wave_height;
        float n = noise_sample(noise_tex, noise_w, noise_h, u, v);
        h += k * (2.0f * n - 1.0f);
        float du = 1.0f / (float)noise_w;
        float dv = 1.0f / (float)noise_h;
        float dndu = (noise_sample(noise_tex, noise_w, noise_h, u + du, v) - noise_sample(noise_tex, noise_w, noise_h, u - du, v)) / (2.0f * du);
        float dndv = (noise_sample(noise_tex, noise_w, noise_h, u, v + dv) - noise_sample(noise_tex, noise_w, noise_h, u, v - dv)) / (2.0f * dv);
        dhdx += 2.0f * k * dndu / extent_x;
        dhdz += 2.0f * k * dndv / extent_z;
    }

    float3 normal = normalize((float3)(-dhdx, 1.0f, -dhdz));
    int o = (z * width + x) * 4;
    wave_data[o] = normal.x;
    wave_data[o + 1] = normal.y;
    wave_data[o + 2] = normal.z;
    wave_data[o + 3] = h;
}`

// OpenCLDevice runs the wave kernel on the first GPU (or CPU) OpenCL device.
type OpenCLDevice struct {
	context  *cl.Context
	queue    *cl.CommandQueue
	program  *cl.Program
	kernel   *cl.Kernel
	waveBuf  *cl.MemObject
	noiseBuf *cl.MemObject

	deviceName    string
	width, height int
	noise         noise.Source
	noiseW        int
	noiseH        int
}

// NewOpenCLDevice compiles the wave kernel. Every partially created object is
// released on failure.
func NewOpenCLDevice() (Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	d := &OpenCLDevice{deviceName: device.Name()}
	if err := d.build(device); err != nil {
		d.Release()
		return nil, err
	}
	logger.Log.Info("OpenCL wave device ready", zap.String("device", d.deviceName))
	return d, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

func (d *OpenCLDevice) build(device *cl.Device) error {
	var err error
	if d.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	if d.queue, err = d.context.CreateCommandQueue(device, 0); err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if d.program, err = d.context.CreateProgramWithSource([]string{waveFieldKernelSource}); err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := d.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}
	if d.kernel, err = d.program.CreateKernel("wave_field"); err != nil {
		return fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return nil
}

func (d *OpenCLDevice) Name() string {
	return "opencl(" + d.deviceName + ")"
}

func (d *OpenCLDevice) Allocate(width, height int) error {
	if d.context == nil {
		return errors.New("opencl device released")
	}
	if d.waveBuf != nil {
		d.waveBuf.Release()
		d.waveBuf = nil
	}
	d.width, d.height = width, height
	if width == 0 || height == 0 {
		return nil
	}
	size := width * height * TexelStride * int(unsafe.Sizeof(float32(0)))
	buf, err := d.context.CreateEmptyBuffer(cl.MemWriteOnly, size)
	if err != nil {
		return fmt.Errorf("allocating wave buffer: %w", err)
	}
	d.waveBuf = buf
	return nil
}

// uploadNoise copies the noise texture to the device when the source changes.
func (d *OpenCLDevice) uploadNoise(src noise.Source) error {
	if src == nil {
		return configErr("noise", ErrMissingNoise)
	}
	if d.noiseBuf != nil && d.noise == src {
		return nil
	}
	w, h := src.Width(), src.Height()
	texels := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			texels[y*w+x] = src.At(x, y)
		}
	}
	if d.noiseBuf != nil {
		d.noiseBuf.Release()
		d.noiseBuf = nil
	}
	buf, err := d.context.CreateEmptyBuffer(cl.MemReadOnly, len(texels)*int(unsafe.Sizeof(float32(0))))
	if err != nil {
		return fmt.Errorf("allocating noise buffer: %w", err)
	}
	if _, err := d.queue.EnqueueWriteBufferFloat32(buf, true, 0, texels, nil); err != nil {
		buf.Release()
		return fmt.Errorf("uploading noise texture: %w", err)
	}
	d.noiseBuf = buf
	d.noise = src
	d.noiseW, d.noiseH = w, h
	return nil
}

func (d *OpenCLDevice) Dispatch(k Kernel, groups Groups, block int) error {
	if d.context == nil {
		return errors.New("opencl device released")
	}
	if groups.Total() == 0 || block <= 0 || d.waveBuf == nil {
		return nil
	}
	if err := d.uploadNoise(k.Wave.Noise); err != nil {
		return err
	}
	m := k.Mapping
	if err := d.kernel.SetArgs(
		int32(d.width),
		int32(d.height),
		m.Extent.X(),
		m.Extent.Y(),
		k.Time.X(),
		k.Time.Y(),
		k.Wave.WaveHeight,
		k.Wave.WaveDensity,
		k.Wave.WaveSpeed,
		k.Wave.WaveMoveVelocity.X(),
		k.Wave.WaveMoveVelocity.Y(),
		k.Wave.NoiseStrength,
		int32(d.noiseW),
		int32(d.noiseH),
		d.noiseBuf,
		d.waveBuf,
	); err != nil {
		return fmt.Errorf("setting wave kernel arguments: %w", err)
	}
	global := []int{groups.X * block, groups.Y * block}
	local := []int{block, block}
	if _, err := d.queue.EnqueueNDRangeKernel(d.kernel, nil, global, local, nil); err != nil {
		return fmt.Errorf("enqueueing wave kernel: %w", err)
	}
	return nil
}

// ReadBack blocks until the queued kernel has finished.
func (d *OpenCLDevice) ReadBack(dst []float32) error {
	if d.waveBuf == nil {
		return errors.New("wave buffer not allocated")
	}
	if want := d.width * d.height * TexelStride; len(dst) != want {
		return fmt.Errorf("readback needs %d floats, got %d", want, len(dst))
	}
	if _, err := d.queue.EnqueueReadBufferFloat32(d.waveBuf, true, 0, dst, nil); err != nil {
		return fmt.Errorf("reading wave buffer: %w", err)
	}
	return nil
}

func (d *OpenCLDevice) Release() error {
	if d.waveBuf != nil {
		d.waveBuf.Release()
		d.waveBuf = nil
	}
	if d.noiseBuf != nil {
		d.noiseBuf.Release()
		d.noiseBuf = nil
	}
	if d.kernel != nil {
		d.kernel.Release()
		d.kernel = nil
	}
	if d.program != nil {
		d.program.Release()
		d.program = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.context != nil {
		d.context.Release()
		d.context = nil
	}
	return nil
}
