package cpu

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/gridsample/internal/tensor"
)

// ErrAffineShape is returned when theta and size disagree.
var ErrAffineShape = errors.New("affinegrid: theta and size mismatch")

// AffineGrid generates a sampling grid from a batch of affine matrices.
//
// Theta shape: [N, 2, 3] for size [N, C, H, W], or [N, 3, 4] for size [N, C, D, H, W].
// Output shape: [N, H, W, 2] or [N, D, H, W, 3].
//
// Every output location holds theta[n] @ (x, y[, z], 1), where (x, y, z) is
// the normalized coordinate of that location. With alignCorners the
// coordinates of an axis of length L are linspace(-1, 1, L); without it they
// are the pixel centers (2i+1)/L - 1. A length-1 axis always maps to 0.
//
// Example (identity theta, H=1, W=3, alignCorners=true):
//
//	theta: [[1,0,0],    grid: [[-1,0], [0,0], [1,0]]
//	        [0,1,0]]
func (cpu *CPUBackend) AffineGrid(theta *tensor.RawTensor, size []int, alignCorners bool) (*tensor.RawTensor, error) {
	if theta == nil {
		return nil, fmt.Errorf("%w: nil theta", ErrAffineShape)
	}
	if len(size) != 4 && len(size) != 5 {
		return nil, fmt.Errorf("%w: size must have 4 or 5 entries, got %v", ErrAffineShape, size)
	}
	spatial := len(size) - 2
	n := size[0]
	want := tensor.Shape{n, spatial, spatial + 1}
	if !theta.Shape().Equal(want) {
		return nil, fmt.Errorf("%w: theta shape %v, want %v for size %v", ErrAffineShape, theta.Shape(), want, size)
	}
	for _, d := range size[2:] {
		if d <= 0 {
			return nil, fmt.Errorf("%w: non-positive spatial extent in %v", ErrAffineShape, size)
		}
	}

	// Output is [N, spatial extents..., spatial].
	outShape := make(tensor.Shape, 0, spatial+2)
	outShape = append(outShape, n)
	outShape = append(outShape, size[2:]...)
	outShape = append(outShape, spatial)

	switch theta.DType() {
	case tensor.Float32:
		result, err := tensor.NewRaw(outShape, tensor.Float32, cpu.device)
		if err != nil {
			return nil, fmt.Errorf("affinegrid: %w", err)
		}
		src := theta.AsFloat32()
		coeffs := make([]float64, len(src))
		for i, v := range src {
			coeffs[i] = float64(v)
		}
		grid := affineGrid(coeffs, n, size[2:], alignCorners)
		dst := result.AsFloat32()
		for i, v := range grid {
			dst[i] = float32(v)
		}
		return result, nil

	case tensor.Float64:
		result, err := tensor.NewRaw(outShape, tensor.Float64, cpu.device)
		if err != nil {
			return nil, fmt.Errorf("affinegrid: %w", err)
		}
		coeffs := make([]float64, theta.NumElements())
		copy(coeffs, theta.AsFloat64())
		copy(result.AsFloat64(), affineGrid(coeffs, n, size[2:], alignCorners))
		return result, nil

	case tensor.Float16:
		theta32, err := tensor.Cast(theta, tensor.Float32)
		if err != nil {
			return nil, fmt.Errorf("affinegrid: %w", err)
		}
		grid32, err := cpu.AffineGrid(theta32, size, alignCorners)
		if err != nil {
			return nil, err
		}
		return tensor.Cast(grid32, tensor.Float16)

	default:
		return nil, fmt.Errorf("affinegrid: unsupported dtype %s", theta.DType())
	}
}

// affineGrid returns the dense [N, extents..., spatial] grid in float64.
// extents are in tensor order (D, H, W) while grid vectors are (x, y, z).
func affineGrid(theta []float64, n int, extents []int, alignCorners bool) []float64 {
	spatial := len(extents)
	base := baseGrid(extents, alignCorners)
	locations := base.RawMatrix().Rows
	stride := spatial * (spatial + 1)

	out := make([]float64, 0, n*locations*spatial)
	var res mat.Dense
	for b := 0; b < n; b++ {
		m := mat.NewDense(spatial, spatial+1, theta[b*stride:(b+1)*stride])
		// [L, spatial+1] @ [spatial+1, spatial] -> [L, spatial]
		res.Reset()
		res.Mul(base, m.T())
		out = append(out, res.RawMatrix().Data...)
	}
	return out
}

// baseGrid returns the [L, spatial+1] matrix of homogeneous normalized
// coordinates (x, y[, z], 1), one row per output location in row-major order.
func baseGrid(extents []int, alignCorners bool) *mat.Dense {
	spatial := len(extents)
	locations := 1
	for _, e := range extents {
		locations *= e
	}

	// axes[a] holds the coordinates of grid component a (x, y, z).
	axes := make([][]float64, spatial)
	for a := range axes {
		axes[a] = linspace(extents[spatial-1-a], alignCorners)
	}

	base := mat.NewDense(locations, spatial+1, nil)
	idx := make([]int, spatial)
	for loc := 0; loc < locations; loc++ {
		rem := loc
		for d := spatial - 1; d >= 0; d-- {
			idx[d] = rem % extents[d]
			rem /= extents[d]
		}
		for a := 0; a < spatial; a++ {
			base.Set(loc, a, axes[a][idx[spatial-1-a]])
		}
		base.Set(loc, spatial, 1)
	}
	return base
}

func linspace(steps int, alignCorners bool) []float64 {
	coords := make([]float64, steps)
	if steps <= 1 {
		return coords
	}
	for i := range coords {
		if alignCorners {
			coords[i] = -1 + 2*float64(i)/float64(steps-1)
		} else {
			coords[i] = float64(2*i+1)/float64(steps) - 1
		}
	}
	return coords
}
