// Package envconfig reads process-wide settings from environment variables.
//
// Every getter re-reads the environment, so tests can use t.Setenv.
// Invalid values are logged and replaced by the default.
package envconfig

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// Backend names accepted by GRIDSAMPLE_BACKEND.
const (
	BackendCPU    = "cpu"
	BackendWebGPU = "webgpu"
)

// Var returns an environment variable stripped of leading and trailing quotes or spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// Uint returns a getter for an unsigned integer variable with a default value.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				klog.Warningf("invalid environment variable %s=%q, using default %d", key, s, defaultValue)
				return defaultValue
			}
			return uint(n)
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable. Unparseable non-empty values count as true.
func Bool(key string) func() bool {
	return func() bool {
		if s := Var(key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

var (
	// NumWorkers caps the goroutines used by a single kernel dispatch. 0 means NumCPU.
	NumWorkers = Uint("GRIDSAMPLE_NUM_WORKERS", 0)
	// MinChunkSize is the smallest number of work items handed to one goroutine.
	MinChunkSize = Uint("GRIDSAMPLE_MIN_CHUNK", 64)
	// Sequential disables parallel dispatch entirely.
	Sequential = Bool("GRIDSAMPLE_SEQUENTIAL")
)

// Workers resolves NumWorkers, substituting the CPU count for 0.
func Workers() int {
	if n := NumWorkers(); n > 0 {
		return int(n)
	}
	return runtime.NumCPU()
}

// Backend returns the compute backend requested through GRIDSAMPLE_BACKEND.
func Backend() string {
	switch s := strings.ToLower(Var("GRIDSAMPLE_BACKEND")); s {
	case "", BackendCPU:
		return BackendCPU
	case BackendWebGPU:
		return BackendWebGPU
	default:
		klog.Warningf("unknown GRIDSAMPLE_BACKEND %q, using %s", s, BackendCPU)
		return BackendCPU
	}
}

// EnvVar describes one configuration variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every known variable with its effective value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"GRIDSAMPLE_NUM_WORKERS": {"GRIDSAMPLE_NUM_WORKERS", Workers(), "Goroutines per kernel dispatch (0 = NumCPU)"},
		"GRIDSAMPLE_MIN_CHUNK":   {"GRIDSAMPLE_MIN_CHUNK", MinChunkSize(), "Minimum work items per goroutine"},
		"GRIDSAMPLE_SEQUENTIAL":  {"GRIDSAMPLE_SEQUENTIAL", Sequential(), "Disable parallel dispatch"},
		"GRIDSAMPLE_BACKEND":     {"GRIDSAMPLE_BACKEND", Backend(), "Compute backend (cpu, webgpu)"},
	}
}

// Values returns the effective values formatted as strings.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
