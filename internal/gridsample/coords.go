package gridsample

import "math"

// Float is the set of element types the kernel operates on.
type Float interface {
	~float32 | ~float64
}

// indexLimit bounds every integer index derived from a coordinate.
// Coordinates beyond it are out of range for any tensor we accept, so
// saturating keeps float-to-int conversions defined for huge or infinite values.
const indexLimit = 1 << 30

// Unnormalize maps a normalized grid coordinate g to pixel space for an axis of the given size.
//
// With alignCorners, -1 and 1 land on the centers of the first and last pixel:
// x = ((g + 1) / 2) * (size - 1).
// Without it, -1 and 1 land on the outer edges of those pixels:
// x = ((g + 1) * size - 1) / 2.
func Unnormalize[T Float](g T, size int, alignCorners bool) T {
	s := T(size)
	if alignCorners {
		return ((g + 1) / 2) * (s - 1)
	}
	return ((g+1)*s - 1) / 2
}

// ClipCoordinate clamps x into [0, size-1]. NaN clamps to 0.
func ClipCoordinate[T Float](x T, size int) T {
	if !(x > 0) {
		return 0
	}
	if hi := T(size - 1); x > hi {
		return hi
	}
	return x
}

// ReflectCoordinate folds x into [twiceLow/2, twiceHigh/2] by mirroring at both bounds.
// The bounds are passed doubled so half-pixel edges stay integral.
func ReflectCoordinate[T Float](x T, twiceLow, twiceHigh int) T {
	if twiceLow == twiceHigh {
		return 0
	}
	lo := T(twiceLow) / 2
	span := T(twiceHigh-twiceLow) / 2

	x = T(math.Abs(float64(x - lo)))
	// fmod is exact, so evaluating it in float64 matches the float32 result.
	extra := T(math.Mod(float64(x), float64(span)))
	flips := math.Floor(float64(x / span))
	if math.Mod(flips, 2) == 0 {
		return extra + lo
	}
	return span - extra + lo
}

// SourceIndex maps a grid coordinate to a pixel-space source coordinate and
// applies the padding policy.
//
// Border and Reflection always return a coordinate inside [0, size-1].
// Zeros returns the coordinate unchanged; taps outside the source are
// excluded later by InBounds.
func SourceIndex[T Float](g T, size int, padding PaddingMode, alignCorners bool) T {
	x := Unnormalize(g, size, alignCorners)

	switch padding {
	case Border:
		x = ClipCoordinate(x, size)
	case Reflection:
		if alignCorners {
			x = ReflectCoordinate(x, 0, 2*(size-1))
		} else {
			x = ReflectCoordinate(x, -1, 2*size-1)
		}
		// Reflection can overshoot the last pixel by an ulp.
		x = ClipCoordinate(x, size)
	}
	return x
}

// InBounds reports whether index i addresses an element of an axis of the given size.
func InBounds(i, size int) bool {
	return i >= 0 && i < size
}

// floorIndex returns floor(x) as a saturated int. NaN maps below every axis.
func floorIndex[T Float](x T) int {
	return saturate(math.Floor(float64(x)))
}

// roundIndex returns x rounded half to even as a saturated int.
func roundIndex[T Float](x T) int {
	return saturate(math.RoundToEven(float64(x)))
}

func saturate(f float64) int {
	switch {
	case math.IsNaN(f), f < -indexLimit:
		return -indexLimit
	case f > indexLimit:
		return indexLimit
	default:
		return int(f)
	}
}
