package tensor

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidDescriptor is returned when a descriptor's shape and strides disagree.
var ErrInvalidDescriptor = errors.New("invalid tensor descriptor")

// Descriptor describes how a multi-dimensional tensor is laid out in a flat buffer.
//
// Offset of element (i0, i1, ..., ik) is sum(i_d * Strides[d]). Dense row-major
// tensors use Shape.ComputeStrides; views and over-allocated buffers may use
// larger strides.
type Descriptor struct {
	Shape   Shape
	Strides []int
}

// NewDescriptor returns a dense row-major descriptor for shape.
func NewDescriptor(shape Shape) Descriptor {
	return Descriptor{
		Shape:   shape.Clone(),
		Strides: shape.ComputeStrides(),
	}
}

// Rank returns the number of dimensions.
func (d Descriptor) Rank() int {
	return len(d.Shape)
}

// Validate checks the descriptor invariants: len(shape) == len(strides) <= MaxRank,
// non-negative extents and strides, and an element count and span that fit in an int.
func (d Descriptor) Validate() error {
	if len(d.Shape) != len(d.Strides) {
		return fmt.Errorf("%w: %d extents but %d strides", ErrInvalidDescriptor, len(d.Shape), len(d.Strides))
	}
	if len(d.Shape) > MaxRank {
		return fmt.Errorf("%w: rank %d exceeds maximum %d", ErrInvalidDescriptor, len(d.Shape), MaxRank)
	}
	for i := range d.Shape {
		if d.Shape[i] < 0 {
			return fmt.Errorf("%w: negative extent %d at dim %d", ErrInvalidDescriptor, d.Shape[i], i)
		}
		if d.Strides[i] < 0 {
			return fmt.Errorf("%w: negative stride %d at dim %d", ErrInvalidDescriptor, d.Strides[i], i)
		}
	}
	for _, dim := range d.Shape {
		if dim == 0 {
			return nil
		}
	}

	n, last := 1, 0
	for i, dim := range d.Shape {
		if n > math.MaxInt/dim {
			return fmt.Errorf("%w: element count of %v overflows", ErrInvalidDescriptor, d.Shape)
		}
		n *= dim
		if dim > 1 && d.Strides[i] > (math.MaxInt-1-last)/(dim-1) {
			return fmt.Errorf("%w: span of %s overflows", ErrInvalidDescriptor, d)
		}
		last += (dim - 1) * d.Strides[i]
	}
	return nil
}

// Offset returns the flat element offset of a multi-index.
// The index must have exactly Rank() components; bounds are not checked.
func (d Descriptor) Offset(index ...int) int {
	off := 0
	for i, v := range index {
		off += v * d.Strides[i]
	}
	return off
}

// Span returns the minimum buffer length (in elements) that holds every
// addressable element. Empty tensors have span 0.
func (d Descriptor) Span() int {
	if d.Shape.NumElements() == 0 {
		return 0
	}
	last := 0
	for i, dim := range d.Shape {
		last += (dim - 1) * d.Strides[i]
	}
	return last + 1
}

// Overlapping reports whether two distinct indices may address the same
// element. The check orders the non-unit dimensions by stride and requires
// each stride to exceed the span of the dimensions below it, so a few exotic
// interleaved layouts are reported as overlapping too. The descriptor must
// have passed Validate.
func (d Descriptor) Overlapping() bool {
	dims := make([]int, 0, len(d.Shape))
	for i, dim := range d.Shape {
		if dim == 0 {
			return false
		}
		if dim > 1 {
			dims = append(dims, i)
		}
	}
	sort.Slice(dims, func(a, b int) bool { return d.Strides[dims[a]] < d.Strides[dims[b]] })

	span := 0
	for _, i := range dims {
		if d.Strides[i] <= span {
			return true
		}
		span += (d.Shape[i] - 1) * d.Strides[i]
	}
	return false
}

// IsContiguous reports whether the strides are dense row-major.
func (d Descriptor) IsContiguous() bool {
	expected := d.Shape.ComputeStrides()
	for i := range expected {
		// Strides of unit dimensions never affect addressing.
		if d.Shape[i] != 1 && d.Strides[i] != expected[i] {
			return false
		}
	}
	return true
}

// String formats the descriptor for error messages.
func (d Descriptor) String() string {
	return fmt.Sprintf("shape=%v strides=%v", []int(d.Shape), d.Strides)
}
