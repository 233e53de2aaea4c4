package operators

import (
	"fmt"

	"github.com/born-ml/gridsample/internal/gridsample"
	"github.com/born-ml/gridsample/internal/tensor"
)

// Operator names served by RegisterGridSample.
const (
	OpGridSample   = "GridSample"
	DomainMMDeploy = "mmdeploy"
	OpGridSampler  = "grid_sampler"
)

// RegisterGridSample adds the standard GridSample operator and the
// mmdeploy::grid_sampler custom operator to r.
func RegisterGridSample(r *Registry) {
	r.Register("", OpGridSample, newGridSampleKernel)
	r.Register(DomainMMDeploy, OpGridSampler, newGridSamplerKernel)
}

// GridSampleKernel samples its first input at the grid given as second input.
type GridSampleKernel struct {
	cfg gridsample.Config
}

// NewGridSampleKernel returns a kernel bound to cfg.
func NewGridSampleKernel(cfg gridsample.Config) *GridSampleKernel {
	return &GridSampleKernel{cfg: cfg}
}

// Config returns the frozen sampling configuration.
func (k *GridSampleKernel) Config() gridsample.Config {
	return k.cfg
}

// newGridSampleKernel reads the ONNX string attributes:
// mode (default "bilinear"), padding_mode (default "zeros"), align_corners (default 0).
func newGridSampleKernel(node *Node) (Kernel, error) {
	cfg := gridsample.Config{
		Mode:         gridsample.InterpolationModeFromString(GetAttrString(node, "mode", "bilinear")),
		Padding:      gridsample.PaddingModeFromString(GetAttrString(node, "padding_mode", "zeros")),
		AlignCorners: GetAttrInt(node, "align_corners", 0) != 0,
	}
	return NewGridSampleKernel(cfg), nil
}

// newGridSamplerKernel reads the integer attributes of the custom operator.
func newGridSamplerKernel(node *Node) (Kernel, error) {
	cfg := gridsample.ConfigFromCodes(
		GetAttrInt(node, "align_corners", 0),
		GetAttrInt(node, "interpolation_mode", int64(gridsample.Bilinear)),
		GetAttrInt(node, "padding_mode", int64(gridsample.Zeros)),
	)
	return NewGridSampleKernel(cfg), nil
}

// Compute runs the sampler on ctx.Backend. It takes exactly two inputs,
// (input, grid), and returns one output.
func (k *GridSampleKernel) Compute(ctx *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 2 {
		return nil, fmt.Errorf("gridsample requires 2 inputs (input, grid), got %d", len(inputs))
	}
	if ctx == nil || ctx.Backend == nil {
		return nil, fmt.Errorf("gridsample: no backend in context")
	}

	out, err := ctx.Backend.GridSample(ctx.Ctx(), inputs[0], inputs[1], k.cfg)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{out}, nil
}
