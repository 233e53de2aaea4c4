package onnx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gridsample/backend/cpu"
	"github.com/born-ml/gridsample/onnx"
	"github.com/born-ml/gridsample/tensor"
)

func TestCompileGridSample(t *testing.T) {
	reg := onnx.NewRegistry()
	onnx.RegisterGridSample(reg)

	model, err := onnx.Compile(&onnx.Graph{
		Nodes: []onnx.Node{{
			Name:       "sample",
			OpType:     onnx.OpGridSample,
			Inputs:     []string{"x", "grid"},
			Outputs:    []string{"y"},
			Attributes: []onnx.Attribute{onnx.StringAttr("mode", "nearest"), onnx.IntAttr("align_corners", 1)},
		}},
		Inputs:  []string{"x", "grid"},
		Outputs: []string{"y"},
	}, reg, cpu.New())
	require.NoError(t, err)

	x, err := tensor.FromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)
	grid, err := tensor.FromFloat32([]float32{1, 1, -1, -1}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)

	out, err := model.Run(context.Background(), map[string]*tensor.RawTensor{"x": x, "grid": grid})
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1}, out["y"].AsFloat32())
}

func TestRegistryStartsEmpty(t *testing.T) {
	reg := onnx.NewRegistry()
	assert.Empty(t, reg.SupportedOps())

	_, err := onnx.Compile(&onnx.Graph{
		Nodes:   []onnx.Node{{OpType: onnx.OpAffineGrid, Inputs: []string{"theta", "size"}, Outputs: []string{"grid"}}},
		Inputs:  []string{"theta", "size"},
		Outputs: []string{"grid"},
	}, reg, cpu.New())
	assert.Error(t, err)

	onnx.RegisterAffineGrid(reg)
	onnx.RegisterUtilityOps(reg)
	assert.Contains(t, reg.SupportedOps(), onnx.OpAffineGrid)
	assert.Contains(t, reg.SupportedOps(), "Constant")
}

func TestCompileCycle(t *testing.T) {
	reg := onnx.NewRegistry()
	onnx.RegisterUtilityOps(reg)

	_, err := onnx.Compile(&onnx.Graph{
		Nodes: []onnx.Node{
			{OpType: "Identity", Inputs: []string{"b"}, Outputs: []string{"a"}},
			{OpType: "Identity", Inputs: []string{"a"}, Outputs: []string{"b"}},
		},
		Outputs: []string{"b"},
	}, reg, cpu.New())
	assert.ErrorIs(t, err, onnx.ErrGraph)
}
