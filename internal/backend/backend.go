// Package backend defines the interface shared by the compute backends.
package backend

import (
	"context"

	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/tensor"
)

// Backend executes the sampling operators on a device.
//
// Implementations validate their inputs and return errors; they never write a
// partial result.
type Backend interface {
	// Name returns a human-readable backend name.
	Name() string

	// Device returns the device results are produced for.
	Device() tensor.Device

	// GridSample samples input (N,C,H,W) or (N,C,D,H,W) at grid and returns
	// a new (N,C,out_spatial...) tensor.
	GridSample(ctx context.Context, input, grid *tensor.RawTensor, cfg gridsample.Config) (*tensor.RawTensor, error)

	// AffineGrid builds a sampling grid from affine matrices theta, (N,2,3)
	// or (N,3,4), for an output of the given size (N,C,H,W) or (N,C,D,H,W).
	AffineGrid(theta *tensor.RawTensor, size []int, alignCorners bool) (*tensor.RawTensor, error)
}
