package envconfig

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarTrimsQuotes(t *testing.T) {
	t.Setenv("GRIDSAMPLE_TEST_VAR", `  "webgpu"  `)
	assert.Equal(t, "webgpu", Var("GRIDSAMPLE_TEST_VAR"))
}

func TestWorkers(t *testing.T) {
	cases := map[string]int{
		"":     runtime.NumCPU(),
		"0":    runtime.NumCPU(),
		"3":    3,
		"oops": runtime.NumCPU(),
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("GRIDSAMPLE_NUM_WORKERS", value)
			assert.Equal(t, want, Workers())
		})
	}
}

func TestMinChunkSize(t *testing.T) {
	t.Setenv("GRIDSAMPLE_MIN_CHUNK", "")
	assert.Equal(t, uint(64), MinChunkSize())

	t.Setenv("GRIDSAMPLE_MIN_CHUNK", "8")
	assert.Equal(t, uint(8), MinChunkSize())
}

func TestSequential(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"false": false,
		"0":     false,
		"1":     true,
		"true":  true,
		"yes":   true,
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("GRIDSAMPLE_SEQUENTIAL", value)
			assert.Equal(t, want, Sequential())
		})
	}
}

func TestBackend(t *testing.T) {
	cases := map[string]string{
		"":       BackendCPU,
		"cpu":    BackendCPU,
		"WebGPU": BackendWebGPU,
		"cuda":   BackendCPU,
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("GRIDSAMPLE_BACKEND", value)
			assert.Equal(t, want, Backend())
		})
	}
}

func TestValues(t *testing.T) {
	t.Setenv("GRIDSAMPLE_NUM_WORKERS", "2")
	t.Setenv("GRIDSAMPLE_BACKEND", "cpu")

	vals := Values()
	assert.Equal(t, "2", vals["GRIDSAMPLE_NUM_WORKERS"])
	assert.Equal(t, "cpu", vals["GRIDSAMPLE_BACKEND"])
	assert.Len(t, vals, len(AsMap()))
}
