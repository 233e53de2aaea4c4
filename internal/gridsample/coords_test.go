package gridsample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnnormalizeEndpoints(t *testing.T) {
	for size := 1; size <= 16; size++ {
		assert.Equal(t, float32(0), Unnormalize(float32(-1), size, true), "align, g=-1, size=%d", size)
		assert.Equal(t, float32(size-1), Unnormalize(float32(1), size, true), "align, g=1, size=%d", size)
		assert.Equal(t, float32(-0.5), Unnormalize(float32(-1), size, false), "no align, g=-1, size=%d", size)
		assert.Equal(t, float32(size)-0.5, Unnormalize(float32(1), size, false), "no align, g=1, size=%d", size)

		assert.Equal(t, 0.0, Unnormalize(-1.0, size, true))
		assert.Equal(t, float64(size-1), Unnormalize(1.0, size, true))
		assert.Equal(t, -0.5, Unnormalize(-1.0, size, false))
		assert.Equal(t, float64(size)-0.5, Unnormalize(1.0, size, false))
	}
}

func TestUnnormalizeCenter(t *testing.T) {
	// g=0 is the geometric center under both conventions.
	assert.Equal(t, 1.5, Unnormalize(0.0, 4, true))
	assert.Equal(t, 1.5, Unnormalize(0.0, 4, false))
}

func TestClipCoordinate(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{-3, 0},
		{0, 0},
		{2.25, 2.25},
		{4, 4},
		{10, 4},
		{math.Inf(1), 4},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClipCoordinate(tt.x, 5), "x=%v", tt.x)
	}
}

func TestReflectCoordinate(t *testing.T) {
	tests := []struct {
		name                string
		x                   float64
		twiceLow, twiceHigh int
		want                float64
	}{
		{"align inside", 1.5, 0, 6, 1.5},
		{"align below", -1, 0, 6, 1},
		{"align above", 4, 0, 6, 2},
		{"align two flips", 7, 0, 6, 1},
		{"edges below", -1, -1, 7, 0},
		{"edges above", 4.5, -1, 7, 2.5},
		{"degenerate", 12.5, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReflectCoordinate(tt.x, tt.twiceLow, tt.twiceHigh))
		})
	}
}

func TestReflectionPeriodicity(t *testing.T) {
	// One reflection period is 4 in normalized units for both conventions:
	// 2*(size-1) pixels with align_corners, 2*size pixels without.
	const period = 4.0
	grid := []float64{-1, -0.75, -0.5, -0.125, 0, 0.25, 0.625, 1}

	for _, align := range []bool{true, false} {
		for _, size := range []int{2, 3, 4, 8} {
			for _, g := range grid {
				want := SourceIndex(g, size, Reflection, align)
				assert.Equal(t, want, SourceIndex(g+period, size, Reflection, align), "align=%t size=%d g=%v+P", align, size, g)
				assert.Equal(t, want, SourceIndex(g-period, size, Reflection, align), "align=%t size=%d g=%v-P", align, size, g)
				assert.Equal(t, want, SourceIndex(g+3*period, size, Reflection, align), "align=%t size=%d g=%v+3P", align, size, g)
			}
		}
	}
}

func TestSourceIndexBorder(t *testing.T) {
	for _, align := range []bool{true, false} {
		assert.Equal(t, 4.0, SourceIndex(10.0, 5, Border, align))
		assert.Equal(t, 0.0, SourceIndex(-10.0, 5, Border, align))
	}
}

func TestSourceIndexZerosLeavesCoordinate(t *testing.T) {
	assert.Equal(t, 21.5, SourceIndex(10.0, 4, Zeros, false))
	assert.Equal(t, 16.5, SourceIndex(10.0, 4, Zeros, true))
}

func TestSourceIndexSinglePixel(t *testing.T) {
	for _, pad := range []PaddingMode{Border, Reflection} {
		for _, g := range []float32{-7, -1, 0, 0.5, 1, 9} {
			assert.Equal(t, float32(0), SourceIndex(g, 1, pad, true), "pad=%s g=%v", pad, g)
			assert.Equal(t, float32(0), SourceIndex(g, 1, pad, false), "pad=%s g=%v", pad, g)
		}
	}
}

func TestRoundIndexHalfToEven(t *testing.T) {
	tests := map[float64]int{
		0.5:  0,
		1.5:  2,
		2.5:  2,
		2.51: 3,
		-0.5: 0,
		-1.5: -2,
		3.0:  3,
	}

	for x, want := range tests {
		assert.Equal(t, want, roundIndex(x), "x=%v", x)
	}
}

func TestIndexSaturation(t *testing.T) {
	assert.Equal(t, indexLimit, floorIndex(math.Inf(1)))
	assert.Equal(t, -indexLimit, floorIndex(math.Inf(-1)))
	assert.Equal(t, -indexLimit, floorIndex(math.NaN()))
	assert.Equal(t, indexLimit, roundIndex(float32(1e30)))
	assert.Equal(t, -2, floorIndex(-1.25))
}

func TestInBounds(t *testing.T) {
	assert.False(t, InBounds(-1, 3))
	assert.True(t, InBounds(0, 3))
	assert.True(t, InBounds(2, 3))
	assert.False(t, InBounds(3, 3))
}
