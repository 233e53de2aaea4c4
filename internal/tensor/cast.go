package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// Cast converts a floating-point tensor to another floating-point type.
// Casting to the tensor's own type returns a clone.
func Cast(t *RawTensor, dtype DataType) (*RawTensor, error) {
	if !t.DType().IsFloat() || !dtype.IsFloat() {
		return nil, fmt.Errorf("cast: only float types are supported, got %s -> %s", t.DType(), dtype)
	}
	if t.DType() == dtype {
		return t.Clone(), nil
	}

	result, err := NewRaw(t.Shape(), dtype, t.Device())
	if err != nil {
		return nil, fmt.Errorf("cast: %w", err)
	}

	src := toFloat64(t)
	switch dtype {
	case Float32:
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case Float64:
		copy(result.AsFloat64(), src)
	case Float16:
		dst := result.AsFloat16()
		for i, v := range src {
			dst[i] = float16.Fromfloat32(float32(v))
		}
	}
	return result, nil
}

func toFloat64(t *RawTensor) []float64 {
	out := make([]float64, t.NumElements())
	switch t.DType() {
	case Float32:
		for i, v := range t.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, t.AsFloat64())
	case Float16:
		for i, v := range t.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	}
	return out
}
