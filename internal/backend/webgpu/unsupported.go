//go:build !windows

package webgpu

import (
	"fmt"
	"runtime"

	"github.com/born-ml/gridsample/internal/backend"
)

// Open reports ErrUnavailable: the native WebGPU bindings are only built on windows.
func Open() (backend.Backend, error) {
	return nil, fmt.Errorf("%w on %s", ErrUnavailable, runtime.GOOS)
}
