// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend, which runs GridSample as a
// compute shader.
//
// The native bindings are built on windows only; elsewhere Open returns
// ErrUnavailable. Cases the shader does not cover (float16, float64 and
// volumetric tensors) run on the CPU backend.
//
// Example:
//
//	be, err := webgpu.Open()
//	if errors.Is(err, webgpu.ErrUnavailable) {
//	    be = cpu.New()
//	} else if err != nil {
//	    log.Fatal(err)
//	}
package webgpu

import (
	"github.com/born-ml/gridsample/internal/backend"
	internalwebgpu "github.com/born-ml/gridsample/internal/backend/webgpu"
)

// ErrUnavailable is returned when no WebGPU device can be opened.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// Open creates a WebGPU backend. The result implements Release() to free
// device resources.
func Open() (backend.Backend, error) {
	return internalwebgpu.Open()
}
