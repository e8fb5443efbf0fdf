//go:build opencl

package water

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"Caustics/internal/logger"

	"github.com/jgillich/go-opencl/cl"
	"go.uber.org/zap"
)

const heightFieldKernelSource = `
float sample_height(__global const float4* grid, const int size, float u, float v)
{
    float fx = u * (float)size - 0.5f;
    float fy = v * (float)size - 0.5f;
    int x0 = (int)floor(fx);
    int y0 = (int)floor(fy);
    float tx = fx - (float)x0;
    float ty = fy - (float)y0;
    int x1 = clamp(x0 + 1, 0, size - 1);
    int y1 = clamp(y0 + 1, 0, size - 1);
    x0 = clamp(x0, 0, size - 1);
    y0 = clamp(y0, 0, size - 1);
    float a = grid[y0 * size + x0].x;
    float b = grid[y0 * size + x1].x;
    float c = grid[y1 * size + x0].x;
    float d = grid[y1 * size + x1].x;
    return mix(mix(a, b, tx), mix(c, d, tx), ty);
}

__kernel void drop(
    const int size,
    const float cx,
    const float cy,
    const float radius,
    const float strength,
    const int use_mask,
    __global const uchar* mask,
    __global const float4* src,
    __global float4* dst)
{
    int idx = get_global_id(0);
    if (idx >= size * size) {
        return;
    }
    float4 info = src[idx];
    if (use_mask && !mask[idx]) {
        dst[idx] = info;
        return;
    }
    int x = idx % size;
    int y = idx / size;
    float2 coord = (float2)(((float)x + 0.5f) / (float)size, ((float)y + 0.5f) / (float)size);
    float2 center = (float2)(cx, cy) * 0.5f + 0.5f;
    float k = clamp(1.0f - length(center - coord) / radius, 0.0f, 1.0f);
    info.x += (0.5f - cos(k * M_PI_F) * 0.5f) * strength;
    dst[idx] = info;
}

__kernel void update(
    const int size,
    const float delta,
    const float gain,
    const float damping,
    const int use_mask,
    __global const uchar* mask,
    __global const float4* src,
    __global float4* dst)
{
    int idx = get_global_id(0);
    if (idx >= size * size) {
        return;
    }
    float4 info = src[idx];
    if (use_mask && !mask[idx]) {
        dst[idx] = info;
        return;
    }
    int x = idx % size;
    int y = idx / size;
    float u = ((float)x + 0.5f) / (float)size;
    float v = ((float)y + 0.5f) / (float)size;
    float average = (
        sample_height(src, size, u - delta, v) +
        sample_height(src, size, u, v - delta) +
        sample_height(src, size, u + delta, v) +
        sample_height(src, size, u, v + delta)) * 0.25f;
    info.y += (average - info.x) * gain;
    info.y *= damping;
    info.x += info.y;
    float3 ddx = (float3)(delta, sample_height(src, size, u + delta, v) - info.x, 0.0f);
    float3 ddy = (float3)(0.0f, sample_height(src, size, u, v + delta) - info.x, delta);
    float3 n = normalize(cross(ddy, ddx));
    info.z = n.x;
    info.w = n.z;
    dst[idx] = info;
}`

// openCLBackend runs the drop and update kernels on the first GPU (or CPU)
// OpenCL device. Grids are uploaded before and read back after every pass so
// the host copy stays authoritative.
type openCLBackend struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	dropKernel *cl.Kernel
	stepKernel *cl.Kernel
	srcBuf     *cl.MemObject
	dstBuf     *cl.MemObject
	maskBuf    *cl.MemObject
	size       int
	maskSynced []bool
	deviceName string
}

// NewOpenCLBackend compiles the height field kernels for a size×size grid.
func NewOpenCLBackend(size int) (Backend, error) {
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
	var device *cl.Device
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
		if device != nil {
			break
		}
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	b := &openCLBackend{size: size, deviceName: device.Name()}
	if b.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if b.queue, err = b.context.CreateCommandQueue(device, 0); err != nil {
		b.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if b.program, err = b.context.CreateProgramWithSource([]string{heightFieldKernelSource}); err != nil {
		b.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := b.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		b.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if b.dropKernel, err = b.program.CreateKernel("drop"); err != nil {
		b.Close()
		return nil, fmt.Errorf("creating drop kernel: %w", err)
	}
	if b.stepKernel, err = b.program.CreateKernel("update"); err != nil {
		b.Close()
		return nil, fmt.Errorf("creating update kernel: %w", err)
	}
	gridBytes := size * size * int(unsafe.Sizeof(Texel{}))
	if b.srcBuf, err = b.context.CreateEmptyBuffer(cl.MemReadOnly, gridBytes); err != nil {
		b.Close()
		return nil, fmt.Errorf("allocating source buffer: %w", err)
	}
	if b.dstBuf, err = b.context.CreateEmptyBuffer(cl.MemWriteOnly, gridBytes); err != nil {
		b.Close()
		return nil, fmt.Errorf("allocating destination buffer: %w", err)
	}
	if b.maskBuf, err = b.context.CreateEmptyBuffer(cl.MemReadOnly, size*size); err != nil {
		b.Close()
		return nil, fmt.Errorf("allocating mask buffer: %w", err)
	}

	logger.Log.Info("OpenCL height field backend ready", zap.String("device", b.deviceName), zap.Int("size", size))
	return b, nil
}

func (b *openCLBackend) Name() string {
	return "opencl:" + b.deviceName
}

func (b *openCLBackend) Drop(src, dst *Grid, d Drop, mask []bool) error {
	useMask, err := b.prepare(src, mask)
	if err != nil {
		return err
	}
	if err := b.dropKernel.SetArgs(
		int32(b.size),
		d.Center.X(),
		d.Center.Y(),
		d.Radius,
		d.Strength,
		useMask,
		b.maskBuf,
		b.srcBuf,
		b.dstBuf,
	); err != nil {
		return fmt.Errorf("setting drop kernel arguments: %w", err)
	}
	return b.run(b.dropKernel, dst)
}

func (b *openCLBackend) Step(src, dst *Grid, p Params, mask []bool) error {
	useMask, err := b.prepare(src, mask)
	if err != nil {
		return err
	}
	if err := b.stepKernel.SetArgs(
		int32(b.size),
		p.Delta,
		p.Gain,
		p.Damping,
		useMask,
		b.maskBuf,
		b.srcBuf,
		b.dstBuf,
	); err != nil {
		return fmt.Errorf("setting update kernel arguments: %w", err)
	}
	return b.run(b.stepKernel, dst)
}

func (b *openCLBackend) prepare(src *Grid, mask []bool) (int32, error) {
	if src.Size != b.size {
		return 0, fmt.Errorf("grid size %d does not match backend size %d", src.Size, b.size)
	}
	if _, err := b.queue.EnqueueWriteBufferFloat32(b.srcBuf, false, 0, texelFloats(src), nil); err != nil {
		return 0, fmt.Errorf("writing source buffer: %w", err)
	}
	if mask == nil {
		return 0, nil
	}
	if len(b.maskSynced) == 0 || &b.maskSynced[0] != &mask[0] {
		bytes := make([]uint8, len(mask))
		for i, in := range mask {
			if in {
				bytes[i] = 1
			}
		}
		if _, err := b.queue.EnqueueWriteBuffer(b.maskBuf, true, 0, len(bytes), unsafe.Pointer(&bytes[0]), nil); err != nil {
			return 0, fmt.Errorf("writing mask buffer: %w", err)
		}
		b.maskSynced = mask
	}
	return 1, nil
}

func (b *openCLBackend) run(kernel *cl.Kernel, dst *Grid) error {
	if _, err := b.queue.EnqueueNDRangeKernel(kernel, nil, []int{b.size * b.size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := b.queue.EnqueueReadBufferFloat32(b.dstBuf, true, 0, texelFloats(dst), nil); err != nil {
		return fmt.Errorf("reading destination buffer: %w", err)
	}
	return nil
}

func (b *openCLBackend) Close() {
	if b.maskBuf != nil {
		b.maskBuf.Release()
		b.maskBuf = nil
	}
	if b.dstBuf != nil {
		b.dstBuf.Release()
		b.dstBuf = nil
	}
	if b.srcBuf != nil {
		b.srcBuf.Release()
		b.srcBuf = nil
	}
	if b.stepKernel != nil {
		b.stepKernel.Release()
		b.stepKernel = nil
	}
	if b.dropKernel != nil {
		b.dropKernel.Release()
		b.dropKernel = nil
	}
	if b.program != nil {
		b.program.Release()
		b.program = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.context != nil {
		b.context.Release()
		b.context = nil
	}
}

// texelFloats views the grid's texels as a flat float32 slice (h, v, nx, nz).
func texelFloats(g *Grid) []float32 {
	if len(g.Texels) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&g.Texels[0])), len(g.Texels)*4)
}
