package cpu

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/tensor"
)

func identityTheta2D(n int) []float32 {
	theta := make([]float32, 0, n*6)
	for i := 0; i < n; i++ {
		theta = append(theta, 1, 0, 0, 0, 1, 0)
	}
	return theta
}

// TestAffineGrid_Identity2D tests that identity theta yields the base grid.
func TestAffineGrid_Identity2D(t *testing.T) {
	backend := newTestBackend()

	tests := []struct {
		name     string
		align    bool
		expected []float32
	}{
		{
			name:  "AlignCorners",
			align: true,
			// H=2, W=3: x in {-1,0,1}, y in {-1,1}
			expected: []float32{
				-1, -1, 0, -1, 1, -1,
				-1, 1, 0, 1, 1, 1,
			},
		},
		{
			name:  "PixelCenters",
			align: false,
			// x in {-2/3,0,2/3}, y in {-0.5,0.5}
			expected: []float32{
				-2.0 / 3, -0.5, 0, -0.5, 2.0 / 3, -0.5,
				-2.0 / 3, 0.5, 0, 0.5, 2.0 / 3, 0.5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theta, _ := tensor.FromFloat32(identityTheta2D(1), tensor.Shape{1, 2, 3})
			grid, err := backend.AffineGrid(theta, []int{1, 3, 2, 3}, tt.align)
			if err != nil {
				t.Fatalf("AffineGrid failed: %v", err)
			}
			if !grid.Shape().Equal(tensor.Shape{1, 2, 3, 2}) {
				t.Fatalf("Expected shape [1 2 3 2], got %v", grid.Shape())
			}
			if !float32SliceEqual(grid.AsFloat32(), tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, grid.AsFloat32())
			}
		})
	}
}

// TestAffineGrid_Transform tests translation, scaling and per-batch theta.
func TestAffineGrid_Transform(t *testing.T) {
	backend := newTestBackend()

	theta, _ := tensor.FromFloat64([]float64{
		// batch 0: shift x by 0.5
		1, 0, 0.5,
		0, 1, 0,
		// batch 1: swap axes and scale by 2
		0, 2, 0,
		2, 0, 0,
	}, tensor.Shape{2, 2, 3})

	grid, err := backend.AffineGrid(theta, []int{2, 1, 1, 2}, true)
	if err != nil {
		t.Fatalf("AffineGrid failed: %v", err)
	}
	if grid.DType() != tensor.Float64 {
		t.Errorf("Expected float64 grid, got %s", grid.DType())
	}

	// H=1 maps y to 0; W=2 maps x to {-1, 1}.
	expected := []float64{
		-0.5, 0, 1.5, 0,
		0, -2, 0, 2,
	}
	got := grid.AsFloat64()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("grid[%d]: expected %v, got %v", i, expected[i], got[i])
		}
	}
}

// TestAffineGrid_Volumetric tests the 3-D form.
func TestAffineGrid_Volumetric(t *testing.T) {
	backend := newTestBackend()

	theta, _ := tensor.FromFloat32([]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}, tensor.Shape{1, 3, 4})

	grid, err := backend.AffineGrid(theta, []int{1, 1, 2, 1, 3}, true)
	if err != nil {
		t.Fatalf("AffineGrid failed: %v", err)
	}
	if !grid.Shape().Equal(tensor.Shape{1, 2, 1, 3, 3}) {
		t.Fatalf("Expected shape [1 2 1 3 3], got %v", grid.Shape())
	}

	// (x, y, z) with D=2, H=1, W=3.
	expected := []float32{
		-1, 0, -1, 0, 0, -1, 1, 0, -1,
		-1, 0, 1, 0, 0, 1, 1, 0, 1,
	}
	if !float32SliceEqual(grid.AsFloat32(), expected) {
		t.Errorf("Expected %v, got %v", expected, grid.AsFloat32())
	}
}

// TestAffineGrid_IdentityWarp tests AffineGrid followed by GridSample.
func TestAffineGrid_IdentityWarp(t *testing.T) {
	backend := newTestBackend()

	src := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	input, _ := tensor.FromFloat32(src, tensor.Shape{1, 2, 2, 3})
	theta, _ := tensor.FromFloat32(identityTheta2D(1), tensor.Shape{1, 2, 3})

	for _, align := range []bool{true, false} {
		grid, err := backend.AffineGrid(theta, []int{1, 2, 2, 3}, align)
		if err != nil {
			t.Fatalf("AffineGrid failed: %v", err)
		}
		cfg := gridsample.Config{Mode: gridsample.Bilinear, Padding: gridsample.Border, AlignCorners: align}
		out, err := backend.GridSample(context.Background(), input, grid, cfg)
		if err != nil {
			t.Fatalf("GridSample failed: %v", err)
		}
		// Pixel-center coordinates are not exact in binary, so allow a few ulps.
		for i, v := range out.AsFloat32() {
			if math.Abs(float64(v-src[i])) > 1e-5 {
				t.Errorf("align=%t: pixel %d: expected %v, got %v", align, i, src[i], v)
			}
		}
	}
}

// TestAffineGrid_Float16 tests the half-precision path.
func TestAffineGrid_Float16(t *testing.T) {
	backend := newTestBackend()

	theta32, _ := tensor.FromFloat32(identityTheta2D(1), tensor.Shape{1, 2, 3})
	theta, _ := tensor.Cast(theta32, tensor.Float16)

	grid, err := backend.AffineGrid(theta, []int{1, 1, 1, 3}, true)
	if err != nil {
		t.Fatalf("AffineGrid failed: %v", err)
	}
	if grid.DType() != tensor.Float16 {
		t.Fatalf("Expected float16, got %s", grid.DType())
	}
	got := grid.AsFloat16()
	expected := []float32{-1, 0, 0, 0, 1, 0}
	for i := range expected {
		if got[i].Float32() != expected[i] {
			t.Errorf("grid[%d]: expected %v, got %v", i, expected[i], got[i].Float32())
		}
	}
}

// TestAffineGrid_Invalid tests shape validation.
func TestAffineGrid_Invalid(t *testing.T) {
	backend := newTestBackend()

	theta, _ := tensor.FromFloat32(identityTheta2D(1), tensor.Shape{1, 2, 3})
	ints, _ := tensor.FromInt64([]int64{1, 0, 0, 0, 1, 0}, tensor.Shape{1, 2, 3})

	tests := []struct {
		name  string
		theta *tensor.RawTensor
		size  []int
	}{
		{"NilTheta", nil, []int{1, 1, 2, 2}},
		{"ShortSize", theta, []int{1, 2, 2}},
		{"BatchMismatch", theta, []int{2, 1, 2, 2}},
		{"VolumetricSize", theta, []int{1, 1, 2, 2, 2}},
		{"ZeroExtent", theta, []int{1, 1, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backend.AffineGrid(tt.theta, tt.size, false)
			if !errors.Is(err, ErrAffineShape) {
				t.Errorf("Expected ErrAffineShape, got %v", err)
			}
		})
	}

	if _, err := backend.AffineGrid(ints, []int{1, 1, 2, 2}, false); err == nil {
		t.Error("Expected error for int64 theta")
	}
}
