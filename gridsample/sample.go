// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gridsample

import (
	"context"

	"github.com/born-ml/gridsample/internal/gridsample"
)

// Sample writes s's resampling of in at grid into out. All three views are
// validated before any element of out is written.
func Sample[T Float](ctx context.Context, s *Sampler, out, in, grid View[T]) error {
	return gridsample.Sample(ctx, s, out, in, grid)
}
