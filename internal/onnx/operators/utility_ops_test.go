package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gridsample/internal/tensor"
)

func utilityRegistry() *Registry {
	r := NewRegistry()
	RegisterUtilityOps(r)
	RegisterAffineGrid(r)
	return r
}

func TestIdentity(t *testing.T) {
	in, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)

	out, err := utilityRegistry().Execute(newTestContext(), &Node{OpType: "Identity"}, []*tensor.RawTensor{in})
	require.NoError(t, err)
	assert.Same(t, in, out[0])
}

func TestShape(t *testing.T) {
	in, err := tensor.NewRaw(tensor.Shape{1, 3, 4, 5}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	out, err := utilityRegistry().Execute(newTestContext(), &Node{OpType: "Shape"}, []*tensor.RawTensor{in})
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, out[0].DType())
	assert.Equal(t, []int64{1, 3, 4, 5}, out[0].AsInt64())
}

func TestCast(t *testing.T) {
	in, err := tensor.FromFloat32([]float32{0.5, -2}, tensor.Shape{2})
	require.NoError(t, err)

	node := &Node{OpType: "Cast", Attributes: []Attribute{IntAttr("to", TensorProtoDouble)}}
	out, err := utilityRegistry().Execute(newTestContext(), node, []*tensor.RawTensor{in})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -2}, out[0].AsFloat64())

	_, err = utilityRegistry().Instantiate(&Node{OpType: "Cast", Attributes: []Attribute{IntAttr("to", 8)}})
	assert.ErrorContains(t, err, "unsupported ONNX data type")
}

func TestConstant(t *testing.T) {
	r := utilityRegistry()

	k, err := r.Instantiate(&Node{OpType: "Constant", Attributes: []Attribute{
		{Name: "value_ints", Type: AttributeInts, Ints: []int64{1, 3, 8, 8}},
	}})
	require.NoError(t, err)

	first, err := k.Compute(newTestContext(), nil)
	require.NoError(t, err)
	second, err := k.Compute(newTestContext(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 8, 8}, first[0].AsInt64())
	assert.Same(t, first[0], second[0], "constant is materialized once per kernel")

	out, err := r.Execute(newTestContext(), &Node{OpType: "Constant", Attributes: []Attribute{FloatAttr("value_float", 0.25)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25}, out[0].AsFloat32())

	theta, err := tensor.FromFloat32([]float32{1, 0, 0, 0, 1, 0}, tensor.Shape{1, 2, 3})
	require.NoError(t, err)
	out, err = r.Execute(newTestContext(), &Node{OpType: "Constant", Attributes: []Attribute{
		{Name: "value", Type: AttributeTensor, T: theta},
	}}, nil)
	require.NoError(t, err)
	assert.Same(t, theta, out[0])

	_, err = r.Instantiate(&Node{OpType: "Constant", Attributes: []Attribute{{Name: "value", Type: AttributeTensor}}})
	assert.ErrorContains(t, err, "no tensor")
}

func TestAffineGridOp(t *testing.T) {
	theta, err := tensor.FromFloat32([]float32{1, 0, 0, 0, 1, 0}, tensor.Shape{1, 2, 3})
	require.NoError(t, err)
	size, err := tensor.FromInt64([]int64{1, 1, 1, 3}, tensor.Shape{4})
	require.NoError(t, err)

	node := &Node{OpType: OpAffineGrid, Attributes: []Attribute{IntAttr("align_corners", 1)}}
	out, err := utilityRegistry().Execute(newTestContext(), node, []*tensor.RawTensor{theta, size})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1, 3, 2}, out[0].Shape())
	assert.Equal(t, []float32{-1, 0, 0, 0, 1, 0}, out[0].AsFloat32())

	floatSize, err := tensor.FromFloat32([]float32{1, 1, 1, 3}, tensor.Shape{4})
	require.NoError(t, err)
	_, err = utilityRegistry().Execute(newTestContext(), node, []*tensor.RawTensor{theta, floatSize})
	assert.ErrorContains(t, err, "int64")
}
