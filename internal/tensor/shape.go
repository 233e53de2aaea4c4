package tensor

import (
	"errors"
	"fmt"
)

// MaxRank is the largest tensor rank accepted by descriptors.
// It matches the dimension cap of the host runtimes that feed the kernel.
const MaxRank = 10

// MaxElements caps the element count of an allocated tensor.
const MaxElements = 1<<31 - 1

// ErrTooLarge is returned for shapes whose element count exceeds MaxElements.
var ErrTooLarge = errors.New("tensor too large")

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape can back an allocation: no negative
// dimension and at most MaxElements elements. Zero extents are allowed and
// give an empty tensor.
func (s Shape) Validate() error {
	if len(s) > MaxRank {
		return fmt.Errorf("rank %d exceeds maximum %d", len(s), MaxRank)
	}
	empty := false
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
		empty = empty || dim == 0
	}
	if empty {
		return nil
	}

	n := 1
	for _, dim := range s {
		if n > MaxElements/dim {
			return fmt.Errorf("%w: shape %v exceeds %d elements", ErrTooLarge, s, MaxElements)
		}
		n *= dim
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}
