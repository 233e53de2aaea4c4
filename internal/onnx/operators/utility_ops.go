package operators

import (
	"fmt"

	"github.com/born-ml/gridsample/internal/tensor"
)

// ONNX data types (TensorProto.DataType) accepted by Cast.
const (
	TensorProtoFloat   = 1  // float32
	TensorProtoInt64   = 7  // int64
	TensorProtoFloat16 = 10 // float16
	TensorProtoDouble  = 11 // float64
)

// RegisterUtilityOps adds the graph plumbing operators used around the
// samplers: Identity, Cast, Shape and Constant.
func RegisterUtilityOps(r *Registry) {
	r.Register("", "Identity", func(*Node) (Kernel, error) { return KernelFunc(computeIdentity), nil })
	r.Register("", "Shape", func(*Node) (Kernel, error) { return KernelFunc(computeShape), nil })
	r.Register("", "Cast", newCastKernel)
	r.Register("", "Constant", newConstantKernel)
}

func computeIdentity(_ *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("identity requires 1 input, got %d", len(inputs))
	}
	return inputs, nil
}

func computeShape(_ *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 1 || inputs[0] == nil {
		return nil, fmt.Errorf("shape requires 1 input, got %d", len(inputs))
	}

	shape := inputs[0].Shape()
	data := make([]int64, len(shape))
	for i, v := range shape {
		data[i] = int64(v)
	}
	result, err := tensor.FromInt64(data, tensor.Shape{len(shape)})
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	return []*tensor.RawTensor{result}, nil
}

func newCastKernel(node *Node) (Kernel, error) {
	to := GetAttrInt(node, "to", TensorProtoFloat)
	dtype, err := onnxTypeToTensorType(to)
	if err != nil {
		return nil, fmt.Errorf("cast: %w", err)
	}

	return KernelFunc(func(_ *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if len(inputs) != 1 {
			return nil, fmt.Errorf("cast requires 1 input, got %d", len(inputs))
		}
		result, err := tensor.Cast(inputs[0], dtype)
		if err != nil {
			return nil, fmt.Errorf("cast: %w", err)
		}
		return []*tensor.RawTensor{result}, nil
	}), nil
}

// newConstantKernel materializes the constant once; Compute returns it on every call.
func newConstantKernel(node *Node) (Kernel, error) {
	var (
		t   *tensor.RawTensor
		err error
	)
	switch {
	case HasAttr(node, "value"):
		attr, _ := node.attr("value")
		if attr.T == nil {
			return nil, fmt.Errorf("constant: value attribute carries no tensor")
		}
		t = attr.T
	case HasAttr(node, "value_float"):
		t, err = tensor.FromFloat32([]float32{GetAttrFloat(node, "value_float", 0)}, tensor.Shape{1})
	case HasAttr(node, "value_int"):
		t, err = tensor.FromInt64([]int64{GetAttrInt(node, "value_int", 0)}, tensor.Shape{1})
	case HasAttr(node, "value_floats"):
		attr, _ := node.attr("value_floats")
		t, err = tensor.FromFloat32(attr.Floats, tensor.Shape{len(attr.Floats)})
	case HasAttr(node, "value_ints"):
		ints := GetAttrInts(node, "value_ints")
		t, err = tensor.FromInt64(ints, tensor.Shape{len(ints)})
	default:
		return nil, fmt.Errorf("constant: no value attribute found")
	}
	if err != nil {
		return nil, fmt.Errorf("constant: %w", err)
	}

	return KernelFunc(func(_ *Context, _ []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		return []*tensor.RawTensor{t}, nil
	}), nil
}

// onnxTypeToTensorType converts an ONNX data type to tensor.DataType.
func onnxTypeToTensorType(onnxType int64) (tensor.DataType, error) {
	switch onnxType {
	case TensorProtoFloat:
		return tensor.Float32, nil
	case TensorProtoDouble:
		return tensor.Float64, nil
	case TensorProtoFloat16:
		return tensor.Float16, nil
	case TensorProtoInt64:
		return tensor.Int64, nil
	default:
		return 0, fmt.Errorf("unsupported ONNX data type %d", onnxType)
	}
}
