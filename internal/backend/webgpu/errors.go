package webgpu

import "errors"

// ErrUnavailable is returned when no WebGPU device can be opened.
var ErrUnavailable = errors.New("webgpu: not available")
