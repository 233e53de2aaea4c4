// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the raw tensor storage consumed by the grid-sampling
// kernels.
//
// # Overview
//
// A RawTensor is a reference-counted byte buffer with a dense row-major
// Descriptor, a runtime DataType and a Device tag. Kernels read it through
// typed views (AsFloat32, AsFloat64, AsFloat16, AsInt64).
//
// # Basic Usage
//
//	import "github.com/born-ml/gridsample/tensor"
//
//	func main() {
//	    img, err := tensor.FromFloat32(pixels, tensor.Shape{1, 3, 480, 640})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    half, err := tensor.Cast(img, tensor.Float16)
//	}
//
// # Supported Data Types
//
//   - float32, float64, float16 (sampling)
//   - int64 (shape tensors such as the AffineGrid size input)
package tensor
