// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gridsample resamples NCHW and NCDHW tensors at the normalized
// coordinates of a sampling grid.
//
// # Overview
//
// For input (N, C, in_spatial...) and grid (N, out_spatial..., k), where k is
// the spatial rank (2 or 3), the output has shape (N, C, out_spatial...).
// Grid coordinates lie in [-1, 1]; component 0 addresses width, 1 height and
// 2 depth.
//
//   - Interpolation: Bilinear (trilinear for volumes) or Nearest
//   - Padding: Zeros, Border or Reflection
//   - AlignCorners: whether -1 and 1 address the centers of the corner
//     samples (true) or their outer edges (false)
//
// # Basic Usage
//
//	s := gridsample.New(gridsample.Config{
//	    Mode:    gridsample.Bilinear,
//	    Padding: gridsample.Border,
//	})
//	out, err := s.Forward(ctx, input, grid)
//
// Sample runs the kernel on caller-owned strided buffers without allocating
// the output:
//
//	err := gridsample.Sample(ctx, s, outView, inView, gridView)
package gridsample
