// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/gridsample/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Typed data access via AsFloat32(), AsFloat64(), AsFloat16(), AsInt64()
//   - Buffer sharing via Clone() and Release()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()
//	clone := raw.Clone() // Shares buffer via reference counting
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Descriptor pairs a shape with element strides.
type Descriptor = tensor.Descriptor

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Device represents the compute device a tensor's data belongs to.
type Device = tensor.Device

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Float16 = tensor.Float16
	Int64   = tensor.Int64
)

// Supported devices.
const (
	CPU    = tensor.CPU
	WebGPU = tensor.WebGPU
)

// MaxRank is the largest tensor rank accepted by descriptors.
const MaxRank = tensor.MaxRank

// MaxElements caps the element count of an allocated tensor.
const MaxElements = tensor.MaxElements

// ErrInvalidDescriptor reports a malformed shape/stride descriptor.
var ErrInvalidDescriptor = tensor.ErrInvalidDescriptor

// ErrTooLarge is returned for shapes with more than MaxElements elements.
var ErrTooLarge = tensor.ErrTooLarge

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat32 creates a float32 tensor holding a copy of data.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromFloat64 creates a float64 tensor holding a copy of data.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape)
}

// FromInt64 creates an int64 tensor holding a copy of data.
func FromInt64(data []int64, shape Shape) (*RawTensor, error) {
	return tensor.FromInt64(data, shape)
}

// Cast converts t to dtype. Float types convert among each other.
func Cast(t *RawTensor, dtype DataType) (*RawTensor, error) {
	return tensor.Cast(t, dtype)
}

// NewDescriptor returns the dense row-major descriptor of shape.
func NewDescriptor(shape Shape) Descriptor {
	return tensor.NewDescriptor(shape)
}
