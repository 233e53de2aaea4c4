package onnx

import (
	"fmt"
	"sort"

	"github.com/x448/float16"

	"github.com/born-ml/gridsample/internal/backend"
	"github.com/born-ml/gridsample/internal/onnx/operators"
	"github.com/born-ml/gridsample/internal/tensor"
)

// Load parses an ONNX file and compiles its graph against the registry.
//
// Example:
//
//	r := operators.NewRegistry()
//	operators.RegisterGridSample(r)
//	model, err := onnx.Load("warp.onnx", r, cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	output, err := model.Forward(ctx, input)
func Load(path string, registry *operators.Registry, be backend.Backend) (*Model, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ONNX file: %w", err)
	}
	return LoadFromProto(proto, registry, be)
}

// LoadFromBytes parses ONNX model bytes and compiles the graph.
func LoadFromBytes(data []byte, registry *operators.Registry, be backend.Backend) (*Model, error) {
	proto, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ONNX data: %w", err)
	}
	return LoadFromProto(proto, registry, be)
}

// LoadFromProto compiles a parsed ModelProto.
func LoadFromProto(proto *ModelProto, registry *operators.Registry, be backend.Backend) (*Model, error) {
	g, err := GraphFromProto(proto)
	if err != nil {
		return nil, err
	}

	model, err := Compile(g, registry, be)
	if err != nil {
		return nil, fmt.Errorf("failed to compile model: %w", err)
	}

	model.opset = defaultOpset(proto)
	model.meta = make(map[string]string, len(proto.MetadataProps)+3)
	for _, prop := range proto.MetadataProps {
		model.meta[prop.Key] = prop.Value
	}
	model.meta["producer_name"] = proto.ProducerName
	model.meta["producer_version"] = proto.ProducerVersion
	model.meta["domain"] = proto.Domain
	return model, nil
}

// GraphFromProto converts the graph of a parsed model, decoding initializers
// and TENSOR attributes into RawTensors.
func GraphFromProto(proto *ModelProto) (*Graph, error) {
	if proto == nil || proto.Graph == nil {
		return nil, fmt.Errorf("%w: model has no graph", ErrGraph)
	}
	gp := proto.Graph

	g := &Graph{
		Name:         gp.Name,
		Nodes:        make([]operators.Node, len(gp.Nodes)),
		Initializers: make(map[string]*tensor.RawTensor, len(gp.Initializers)),
	}

	for i := range gp.Initializers {
		init := &gp.Initializers[i]
		t, err := tensorFromProto(init)
		if err != nil {
			return nil, fmt.Errorf("failed to load initializer %s: %w", init.Name, err)
		}
		g.Initializers[init.Name] = t
	}

	// Inputs are graph inputs minus initializers.
	for i := range gp.Inputs {
		if _, ok := g.Initializers[gp.Inputs[i].Name]; !ok {
			g.Inputs = append(g.Inputs, gp.Inputs[i].Name)
		}
	}
	for i := range gp.Outputs {
		g.Outputs = append(g.Outputs, gp.Outputs[i].Name)
	}

	for i := range gp.Nodes {
		node, err := nodeProtoToOperatorNode(&gp.Nodes[i])
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, gp.Nodes[i].OpType, err)
		}
		g.Nodes[i] = *node
	}
	return g, nil
}

// tensorFromProto converts TensorProto to RawTensor.
// Dims and data are checked against each other before anything is allocated.
func tensorFromProto(proto *TensorProto) (*tensor.RawTensor, error) {
	shape := make(tensor.Shape, len(proto.Dims))
	for i, dim := range proto.Dims {
		if dim < 0 || dim > tensor.MaxElements {
			return nil, fmt.Errorf("invalid dimension %d at index %d", dim, i)
		}
		shape[i] = int(dim)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	dtype, err := protoTypeToTensorType(proto.DataType)
	if err != nil {
		return nil, err
	}
	n := shape.NumElements()

	// Data fields are mutually exclusive.
	if len(proto.RawData) > 0 {
		if want := n * dtype.Size(); len(proto.RawData) != want {
			return nil, fmt.Errorf("raw_data holds %d bytes, shape %v needs %d", len(proto.RawData), shape, want)
		}
	} else if typedDataLen(proto, dtype) != n {
		return nil, fmt.Errorf("no %s data for %d elements", dtype, n)
	}

	t, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	if err != nil {
		return nil, err
	}

	switch {
	case len(proto.RawData) > 0:
		copy(t.Data(), proto.RawData)
	case dtype == tensor.Float32:
		copy(t.AsFloat32(), proto.FloatData)
	case dtype == tensor.Float64:
		copy(t.AsFloat64(), proto.DoubleData)
	case dtype == tensor.Int64:
		copy(t.AsInt64(), proto.Int64Data)
	case dtype == tensor.Float16:
		// float16 values travel as bit patterns in int32_data.
		dst := t.AsFloat16()
		for i, v := range proto.Int32Data {
			dst[i] = float16.Frombits(uint16(v)) //nolint:gosec // G115: low 16 bits carry the value
		}
	}
	return t, nil
}

// typedDataLen returns the length of the typed data field that carries dtype.
func typedDataLen(proto *TensorProto, dtype tensor.DataType) int {
	switch dtype {
	case tensor.Float32:
		return len(proto.FloatData)
	case tensor.Float64:
		return len(proto.DoubleData)
	case tensor.Int64:
		return len(proto.Int64Data)
	case tensor.Float16:
		return len(proto.Int32Data)
	default:
		return -1
	}
}

// protoTypeToTensorType converts ONNX data type to tensor.DataType.
func protoTypeToTensorType(onnxType int32) (tensor.DataType, error) {
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

// nodeProtoToOperatorNode converts NodeProto to operators.Node.
func nodeProtoToOperatorNode(proto *NodeProto) (*operators.Node, error) {
	attrs := make([]operators.Attribute, len(proto.Attributes))
	for i := range proto.Attributes {
		attr := &proto.Attributes[i]
		attrs[i] = operators.Attribute{
			Name:    attr.Name,
			Type:    attr.Type,
			F:       attr.F,
			I:       attr.I,
			S:       attr.S,
			Floats:  attr.Floats,
			Ints:    attr.Ints,
			Strings: attr.Strings,
		}
		if attr.T != nil {
			t, err := tensorFromProto(attr.T)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", attr.Name, err)
			}
			attrs[i].T = t
		}
	}
	return &operators.Node{
		Name:       proto.Name,
		OpType:     proto.OpType,
		Inputs:     proto.Inputs,
		Outputs:    proto.Outputs,
		Attributes: attrs,
		Domain:     proto.Domain,
	}, nil
}

func defaultOpset(proto *ModelProto) int64 {
	for _, opset := range proto.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			return opset.Version
		}
	}
	return 0
}

// ModelInfo contains basic information about an ONNX model without compiling it.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	InputNames      []string
	OutputNames     []string
	Operators       []string // Distinct operator keys, sorted
	NodeCount       int
	WeightCount     int
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return InfoFromProto(proto), nil
}

// InfoFromProto summarizes a parsed model.
func InfoFromProto(proto *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:       proto.IRVersion,
		OpsetVersion:    defaultOpset(proto),
		ProducerName:    proto.ProducerName,
		ProducerVersion: proto.ProducerVersion,
	}

	if proto.Graph == nil {
		return info
	}
	g := proto.Graph

	initNames := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		initNames[g.Initializers[i].Name] = true
	}
	for i := range g.Inputs {
		if !initNames[g.Inputs[i].Name] {
			info.InputNames = append(info.InputNames, g.Inputs[i].Name)
		}
	}
	for i := range g.Outputs {
		info.OutputNames = append(info.OutputNames, g.Outputs[i].Name)
	}

	seen := make(map[string]bool)
	for i := range g.Nodes {
		key := operators.NewOpKey(g.Nodes[i].Domain, g.Nodes[i].OpType).String()
		if !seen[key] {
			seen[key] = true
			info.Operators = append(info.Operators, key)
		}
	}
	sort.Strings(info.Operators)

	info.NodeCount = len(g.Nodes)
	info.WeightCount = len(g.Initializers)
	return info
}
