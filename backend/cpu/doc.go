// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go backend for GridSample and AffineGrid.
//
// # Overview
//
//   - No CGO
//   - Float16, Float32 and Float64 tensors, 4-D and 5-D
//   - Batch and output rows split across a goroutine pool
//
// # Basic Usage
//
//	be := cpu.New()
//	out, err := be.GridSample(ctx, input, grid, gridsample.DefaultConfig())
//
// The pool size defaults to the CPU count and can be overridden with
// GRIDSAMPLE_NUM_WORKERS or disabled with GRIDSAMPLE_SEQUENTIAL=1.
package cpu
