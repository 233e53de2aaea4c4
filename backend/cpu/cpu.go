// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/gridsample/internal/backend"
	internalcpu "github.com/born-ml/gridsample/internal/backend/cpu"
	"github.com/born-ml/gridsample/internal/parallel"
)

// Backend is the pure Go sampling backend.
type Backend = internalcpu.CPUBackend

// Option configures a Backend.
type Option = internalcpu.Option

// Compile-time check that Backend implements backend.Backend.
var _ backend.Backend = (*Backend)(nil)

// New creates a CPU backend. Without options the worker pool follows the
// GRIDSAMPLE_* environment variables.
//
// Example:
//
//	be := cpu.New(cpu.Workers(4))
//	model, err := onnx.Compile(graph, reg, be)
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// Workers caps the goroutines used per kernel call; n <= 1 runs sequentially.
func Workers(n int) Option {
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = n
	cfg.Enabled = n > 1
	return internalcpu.WithParallel(cfg)
}
