//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/tensor"
)

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer and uploads initial data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer padded to 16 bytes.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// readBuffer copies a storage buffer back to host memory through a staging buffer.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	stagingUsage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	stagingBuffer := b.buffers.acquire(size, stagingUsage)
	defer b.buffers.release(stagingBuffer, size, stagingUsage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	if err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	stagingBuffer.Unmap()

	return result, nil
}

// gridSampleParams packs the shader uniform (9 x u32).
func gridSampleParams(input, outShape tensor.Shape, cfg gridsample.Config) []byte {
	align := uint32(0)
	if cfg.AlignCorners {
		align = 1
	}
	//nolint:gosec // G115: extents are validated positive and below the index limit
	fields := []uint32{
		uint32(input[0]), uint32(input[1]), uint32(input[2]), uint32(input[3]),
		uint32(outShape[2]), uint32(outShape[3]),
		uint32(cfg.Mode), uint32(cfg.Padding), align,
	}
	params := make([]byte, 4*len(fields))
	for i, v := range fields {
		binary.LittleEndian.PutUint32(params[4*i:], v)
	}
	return params
}

// runGridSample executes the 2-D float32 sampling shader.
func (b *Backend) runGridSample(input, grid *tensor.RawTensor, cfg gridsample.Config) (*tensor.RawTensor, error) {
	outShape, err := gridsample.OutputShape(input.Shape(), grid.Shape())
	if err != nil {
		return nil, err
	}
	result, err := tensor.NewRaw(outShape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, fmt.Errorf("webgpu: %w", err)
	}

	shader := b.compileShader("gridSample2D", gridSample2DShader)
	pipeline := b.getOrCreatePipeline("gridSample2D", shader)

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	bufferInput := b.createBuffer(input.Data(), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferInput.Release()

	bufferGrid := b.createBuffer(grid.Data(), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferGrid.Release()

	//nolint:gosec // G115: Safe conversion, ByteSize() returns non-negative int
	resultSize := uint64(result.ByteSize())
	resultUsage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
	bufferResult := b.buffers.acquire(resultSize, resultUsage)
	defer b.buffers.release(bufferResult, resultSize, resultUsage)

	params := gridSampleParams(input.Shape(), outShape, cfg)
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	//nolint:gosec // G115: Safe conversion, ByteSize() returns non-negative int
	inputSize, gridSize := uint64(input.ByteSize()), uint64(grid.ByteSize())
	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, inputSize),
		wgpu.BufferBindingEntry(1, bufferGrid, 0, gridSize),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, (uint64(len(params))+15)&^15),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	//nolint:gosec // G115: Safe conversion, workgroup counts are non-negative
	computePass.DispatchWorkgroups(
		uint32((outShape[3]+tileX-1)/tileX),
		uint32((outShape[2]+tileY-1)/tileY),
		uint32(outShape[0]),
	)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	resultData, err := b.readBuffer(bufferResult, resultSize)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), resultData)
	return result, nil
}
