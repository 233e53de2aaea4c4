// Package parallel provides the data-parallel dispatch loop used by the kernels.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/born-ml/gridsample/internal/envconfig"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// FromEnv returns DefaultConfig adjusted by the GRIDSAMPLE_* environment variables.
func FromEnv() Config {
	cfg := Config{
		NumWorkers:   envconfig.Workers(),
		MinChunkSize: max(int(envconfig.MinChunkSize()), 1),
	}
	cfg.Enabled = cfg.NumWorkers > 1 && !envconfig.Sequential()
	return cfg
}

// Sequential returns a configuration that runs everything on the caller's goroutine.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// Calls for distinct i may run concurrently and in any order.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	klog.V(4).Infof("parallel: %d items, %d workers, chunk %d", n, cfg.NumWorkers, chunkSize)

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	// Units of work never fail; Wait only joins.
	_ = g.Wait()
}

// ForBatch optimized for batch*inner iteration pattern.
// Common in NCHW kernels where inner is channels or output locations.
func ForBatch(batch, inner int, f func(b, i int), cfg Config) {
	if inner == 0 {
		return
	}
	n := batch * inner
	For(n, func(k int) {
		f(k/inner, k%inner)
	}, cfg)
}
