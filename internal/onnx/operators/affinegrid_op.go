package operators

import (
	"fmt"

	"github.com/born-ml/gridsample/internal/tensor"
)

// OpAffineGrid is the ONNX AffineGrid operator (opset 20).
const OpAffineGrid = "AffineGrid"

// RegisterAffineGrid adds the AffineGrid operator to r.
func RegisterAffineGrid(r *Registry) {
	r.Register("", OpAffineGrid, newAffineGridKernel)
}

func newAffineGridKernel(node *Node) (Kernel, error) {
	align := GetAttrInt(node, "align_corners", 0) != 0
	return KernelFunc(func(ctx *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		return computeAffineGrid(ctx, inputs, align)
	}), nil
}

// computeAffineGrid takes theta (N,2,3) or (N,3,4) and an int64 size tensor
// (N,C,H,W) or (N,C,D,H,W).
func computeAffineGrid(ctx *Context, inputs []*tensor.RawTensor, alignCorners bool) ([]*tensor.RawTensor, error) {
	if len(inputs) != 2 {
		return nil, fmt.Errorf("affinegrid requires 2 inputs (theta, size), got %d", len(inputs))
	}
	if ctx == nil || ctx.Backend == nil {
		return nil, fmt.Errorf("affinegrid: no backend in context")
	}
	if inputs[1] == nil || inputs[1].DType() != tensor.Int64 {
		return nil, fmt.Errorf("affinegrid: size must be an int64 tensor")
	}

	sizeData := inputs[1].AsInt64()
	size := make([]int, len(sizeData))
	for i, v := range sizeData {
		size[i] = int(v)
	}

	grid, err := ctx.Backend.AffineGrid(inputs[0], size, alignCorners)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grid}, nil
}
