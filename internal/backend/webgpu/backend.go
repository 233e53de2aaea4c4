//go:build windows

// Package webgpu implements the WebGPU backend for GPU-accelerated sampling.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"

	"github.com/born-ml/gridsample/internal/backend"
	"github.com/born-ml/gridsample/internal/backend/cpu"
	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/tensor"
)

// Backend runs GridSample as a compute shader.
//
// The device queue is the execution queue: each call records one command
// buffer, submits it and waits for the result buffer to map. Cases the shader
// does not cover (float64, float16, volumetric and strided tensors) and
// AffineGrid run on the embedded CPU backend.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// Serializes submissions on the queue.
	submitMu sync.Mutex

	buffers *bufferPool

	cpu *cpu.CPUBackend
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (b *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, fmt.Errorf("%w: failed to create instance", ErrUnavailable)
	}

	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request adapter: %w", ErrUnavailable, adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request device: %w", ErrUnavailable, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to get queue", ErrUnavailable)
	}

	klog.V(2).Info("webgpu: device ready")
	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		buffers:   newBufferPool(device),
		cpu:       cpu.New(),
	}, nil
}

// Open returns a WebGPU backend as a backend.Backend.
func Open() (backend.Backend, error) {
	b, err := New()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Release frees the cached pipelines and the device.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buffers != nil {
		b.buffers.clear()
	}
	for name, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, name)
	}
	for name, s := range b.shaders {
		s.Release()
		delete(b.shaders, name)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// GridSample samples input at grid, on the GPU when the shader covers the case.
func (b *Backend) GridSample(ctx context.Context, input, grid *tensor.RawTensor, cfg gridsample.Config) (*tensor.RawTensor, error) {
	if !shaderSupports(input, grid) {
		klog.V(3).Infof("webgpu: gridsample falls back to CPU for %v %v", input.Shape(), input.DType())
		return b.cpu.GridSample(ctx, input, grid, cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("webgpu: %w", err)
	}
	return b.runGridSample(input, grid, cfg)
}

// AffineGrid runs on the CPU; the grid is small compared to the sampled tensor.
func (b *Backend) AffineGrid(theta *tensor.RawTensor, size []int, alignCorners bool) (*tensor.RawTensor, error) {
	return b.cpu.AffineGrid(theta, size, alignCorners)
}

// shaderSupports reports whether the 2-D float32 shader can run the call.
func shaderSupports(input, grid *tensor.RawTensor) bool {
	if input == nil || grid == nil {
		return false
	}
	if input.DType() != tensor.Float32 || grid.DType() != tensor.Float32 {
		return false
	}
	if len(input.Shape()) != 4 || input.NumElements() == 0 || grid.NumElements() == 0 {
		return false
	}
	return input.Descriptor().IsContiguous() && grid.Descriptor().IsContiguous()
}
