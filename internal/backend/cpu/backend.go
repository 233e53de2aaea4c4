// Package cpu implements the pure Go CPU backend.
package cpu

import (
	"context"

	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/parallel"
	"github.com/born-ml/gridsample/internal/tensor"
)

// CPUBackend runs the sampling kernels on the host with goroutine-level parallelism.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the dispatch configuration (default: parallel.FromEnv).
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.par = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		device: tensor.CPU,
		par:    parallel.FromEnv(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallel returns the dispatch configuration used by the kernels.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}

// GridSample samples input at grid.
//
// Input shape:  [N, C, H, W] or [N, C, D, H, W]
// Grid shape:   [N, H_out, W_out, 2] or [N, D_out, H_out, W_out, 3]
// Output shape: [N, C, H_out, W_out] or [N, C, D_out, H_out, W_out]
//
// Grid vectors are (x, y[, z]) in [-1, 1]; x indexes W, y indexes H, z indexes D.
func (cpu *CPUBackend) GridSample(ctx context.Context, input, grid *tensor.RawTensor, cfg gridsample.Config) (*tensor.RawTensor, error) {
	return gridsample.New(cfg, gridsample.WithParallel(cpu.par)).Forward(ctx, input, grid)
}
