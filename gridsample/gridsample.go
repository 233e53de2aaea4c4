// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gridsample

import (
	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/parallel"
	"github.com/born-ml/gridsample/tensor"
)

// Config is the immutable per-operator sampling configuration.
type Config = gridsample.Config

// InterpolationMode selects how source samples are combined.
type InterpolationMode = gridsample.InterpolationMode

// PaddingMode selects how out-of-range coordinates are resolved.
type PaddingMode = gridsample.PaddingMode

// Interpolation modes.
const (
	Bilinear = gridsample.Bilinear
	Nearest  = gridsample.Nearest
)

// Padding modes.
const (
	Zeros      = gridsample.Zeros
	Border     = gridsample.Border
	Reflection = gridsample.Reflection
)

// Sampler runs the kernel for one Config. It is safe for concurrent use.
type Sampler = gridsample.Sampler

// Option configures a Sampler.
type Option = gridsample.Option

// Float is the set of element types the kernel accepts.
type Float = gridsample.Float

// View is a caller-owned flat buffer addressed through a descriptor.
type View[T Float] = gridsample.View[T]

// ShapeError carries the details of a rejected tensor.
type ShapeError = gridsample.ShapeError

// Precondition errors.
var (
	ErrNilBuffer      = gridsample.ErrNilBuffer
	ErrBufferTooSmall = gridsample.ErrBufferTooSmall
	ErrRank           = gridsample.ErrRank
	ErrGridShape      = gridsample.ErrGridShape
	ErrBatchMismatch  = gridsample.ErrBatchMismatch
	ErrOutputShape    = gridsample.ErrOutputShape
	ErrEmptyInput     = gridsample.ErrEmptyInput
	ErrExtentTooLarge = gridsample.ErrExtentTooLarge
	ErrDType          = gridsample.ErrDType
	ErrOutputOverlap  = gridsample.ErrOutputOverlap
)

// New creates a Sampler bound to cfg.
func New(cfg Config, opts ...Option) *Sampler {
	return gridsample.New(cfg, opts...)
}

// Sequential makes the Sampler run on the caller's goroutine.
func Sequential() Option {
	return gridsample.WithParallel(parallel.Sequential())
}

// Workers caps the goroutines used by one dispatch; n <= 1 runs sequentially.
func Workers(n int) Option {
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = n
	cfg.Enabled = n > 1
	return gridsample.WithParallel(cfg)
}

// DefaultConfig returns bilinear sampling with zero padding and align_corners=false.
func DefaultConfig() Config {
	return gridsample.DefaultConfig()
}

// ConfigFromCodes decodes the integer attribute encoding
// (interpolation 0=bilinear 1=nearest; padding 0=zeros 1=border 2=reflection).
// Unknown codes fall back to the defaults.
func ConfigFromCodes(alignCorners, interpolationMode, paddingMode int64) Config {
	return gridsample.ConfigFromCodes(alignCorners, interpolationMode, paddingMode)
}

// OutputShape returns (N, C, out_spatial...) for the given input and grid shapes.
func OutputShape(input, grid tensor.Shape) (tensor.Shape, error) {
	return gridsample.OutputShape(input, grid)
}

// NewView wraps a dense row-major buffer.
func NewView[T Float](data []T, shape tensor.Shape) View[T] {
	return gridsample.NewView(data, shape)
}
