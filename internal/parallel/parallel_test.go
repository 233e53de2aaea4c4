package parallel

import (
	"sync/atomic"
	"testing"
)

func forcedParallel() Config {
	return Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
}

func TestForVisitsEachIndexOnce(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), forcedParallel(), Sequential()} {
		n := 1000
		hits := make([]int32, n)

		For(n, func(i int) {
			atomic.AddInt32(&hits[i], 1)
		}, cfg)

		for i, h := range hits {
			if h != 1 {
				t.Fatalf("cfg %+v: index %d visited %d times", cfg, i, h)
			}
		}
	}
}

func TestForBatch(t *testing.T) {
	batch, inner := 4, 8
	results := make([][]int32, batch)
	for b := range results {
		results[b] = make([]int32, inner)
	}

	ForBatch(batch, inner, func(b, i int) {
		atomic.AddInt32(&results[b][i], 1)
	}, forcedParallel())

	for b := 0; b < batch; b++ {
		for i := 0; i < inner; i++ {
			if results[b][i] != 1 {
				t.Errorf("result [%d][%d] visited %d times", b, i, results[b][i])
			}
		}
	}
}

func TestForBatchEmptyInner(t *testing.T) {
	called := false
	ForBatch(3, 0, func(_, _ int) { called = true }, forcedParallel())
	if called {
		t.Error("f should not be called when inner is 0")
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GRIDSAMPLE_NUM_WORKERS", "3")
	t.Setenv("GRIDSAMPLE_MIN_CHUNK", "16")
	t.Setenv("GRIDSAMPLE_SEQUENTIAL", "")

	cfg := FromEnv()
	if !cfg.Enabled || cfg.NumWorkers != 3 || cfg.MinChunkSize != 16 {
		t.Errorf("FromEnv() = %+v", cfg)
	}

	t.Setenv("GRIDSAMPLE_SEQUENTIAL", "1")
	if FromEnv().Enabled {
		t.Error("GRIDSAMPLE_SEQUENTIAL should disable parallelism")
	}

	t.Setenv("GRIDSAMPLE_SEQUENTIAL", "")
	t.Setenv("GRIDSAMPLE_MIN_CHUNK", "0")
	if got := FromEnv().MinChunkSize; got != 1 {
		t.Errorf("MinChunkSize = %d, want 1", got)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
