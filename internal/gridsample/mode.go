package gridsample

import (
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// InterpolationMode selects how source samples are combined at a fractional coordinate.
// The numeric values are the integer attribute encoding.
type InterpolationMode int

// Supported interpolation modes.
const (
	Bilinear InterpolationMode = 0
	Nearest  InterpolationMode = 1
)

// String returns the mode name used by the string-valued ONNX attribute.
func (m InterpolationMode) String() string {
	switch m {
	case Bilinear:
		return "bilinear"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("InterpolationMode(%d)", int(m))
	}
}

// PaddingMode selects how coordinates outside the source extent are resolved.
// The numeric values are the integer attribute encoding.
type PaddingMode int

// Supported padding modes.
const (
	Zeros      PaddingMode = 0
	Border     PaddingMode = 1
	Reflection PaddingMode = 2
)

// String returns the mode name used by the string-valued ONNX attribute.
func (p PaddingMode) String() string {
	switch p {
	case Zeros:
		return "zeros"
	case Border:
		return "border"
	case Reflection:
		return "reflection"
	default:
		return fmt.Sprintf("PaddingMode(%d)", int(p))
	}
}

// ParseInterpolationMode decodes an integer attribute. Unknown codes fall back to Bilinear.
func ParseInterpolationMode(code int64) InterpolationMode {
	switch code {
	case int64(Bilinear):
		return Bilinear
	case int64(Nearest):
		return Nearest
	default:
		klog.Warningf("gridsample: unknown interpolation_mode %d, falling back to %s", code, Bilinear)
		return Bilinear
	}
}

// ParsePaddingMode decodes an integer attribute. Unknown codes fall back to Zeros.
func ParsePaddingMode(code int64) PaddingMode {
	switch code {
	case int64(Zeros):
		return Zeros
	case int64(Border):
		return Border
	case int64(Reflection):
		return Reflection
	default:
		klog.Warningf("gridsample: unknown padding_mode %d, falling back to %s", code, Zeros)
		return Zeros
	}
}

// InterpolationModeFromString decodes the ONNX "mode" attribute.
// "linear" is the opset 20 spelling of "bilinear". Unknown names fall back to Bilinear.
func InterpolationModeFromString(s string) InterpolationMode {
	switch strings.ToLower(s) {
	case "bilinear", "linear":
		return Bilinear
	case "nearest":
		return Nearest
	default:
		klog.Warningf("gridsample: unsupported mode %q, falling back to %s", s, Bilinear)
		return Bilinear
	}
}

// PaddingModeFromString decodes the ONNX "padding_mode" attribute.
// Unknown names fall back to Zeros.
func PaddingModeFromString(s string) PaddingMode {
	switch strings.ToLower(s) {
	case "zeros":
		return Zeros
	case "border":
		return Border
	case "reflection":
		return Reflection
	default:
		klog.Warningf("gridsample: unsupported padding_mode %q, falling back to %s", s, Zeros)
		return Zeros
	}
}

// Config is the immutable per-operator sampling configuration.
type Config struct {
	Mode         InterpolationMode
	Padding      PaddingMode
	AlignCorners bool
}

// DefaultConfig returns bilinear sampling with zero padding and align_corners=false.
func DefaultConfig() Config {
	return Config{Mode: Bilinear, Padding: Zeros}
}

// ConfigFromCodes builds a Config from the three integer attributes.
func ConfigFromCodes(alignCorners, interpolationMode, paddingMode int64) Config {
	return Config{
		Mode:         ParseInterpolationMode(interpolationMode),
		Padding:      ParsePaddingMode(paddingMode),
		AlignCorners: alignCorners != 0,
	}
}

// String formats the configuration for logs.
func (c Config) String() string {
	return fmt.Sprintf("mode=%s padding=%s align_corners=%t", c.Mode, c.Padding, c.AlignCorners)
}
