package onnx

// ONNX protobuf messages, reduced to the fields the runtime reads.

// ModelProto represents an ONNX model.
type ModelProto struct {
	IRVersion       int64               // IR version (e.g., 7, 8, 9)
	OpsetImport     []OperatorSetID     // Opset version(s)
	ProducerName    string              // Framework name (e.g., "pytorch", "tf")
	ProducerVersion string              // Framework version
	Domain          string              // Model domain
	ModelVersion    int64               // Model version number
	DocString       string              // Model description
	Graph           *GraphProto         // Computation graph
	MetadataProps   []StringStringEntry // Key-value metadata
}

// GraphProto represents the computation graph.
type GraphProto struct {
	Name         string           // Graph name
	Nodes        []NodeProto      // Operation nodes
	Inputs       []ValueInfoProto // Graph inputs
	Outputs      []ValueInfoProto // Graph outputs
	Initializers []TensorProto    // Constant tensors
}

// NodeProto represents a single operation.
type NodeProto struct {
	Name       string           // Node name (optional)
	OpType     string           // Operation type (e.g., "GridSample")
	Inputs     []string         // Input tensor names
	Outputs    []string         // Output tensor names
	Attributes []AttributeProto // Operation attributes
	Domain     string           // Custom domain (empty for default)
}

// TensorProto represents a constant tensor.
type TensorProto struct {
	Name       string    // Tensor name
	DataType   int32     // Element data type
	Dims       []int64   // Tensor shape
	RawData    []byte    // Little-endian binary data (most common)
	FloatData  []float32 // float32 data
	Int32Data  []int32   // int32 data; also holds float16 bit patterns
	Int64Data  []int64   // int64 data
	DoubleData []float64 // float64 data
}

// ValueInfoProto describes a graph input or output.
type ValueInfoProto struct {
	Name     string
	ElemType int32   // Element data type (0 when absent)
	Dims     []int64 // Static dims; -1 marks a symbolic dimension
}

// AttributeProto represents a node attribute.
type AttributeProto struct {
	Name    string       // Attribute name
	Type    int32        // Attribute type
	F       float32      // FLOAT value
	I       int64        // INT value
	S       []byte       // STRING value
	T       *TensorProto // TENSOR value
	Floats  []float32    // FLOATS array
	Ints    []int64      // INTS array
	Strings [][]byte     // STRINGS array
}

// OperatorSetID identifies opset version.
type OperatorSetID struct {
	Domain  string // Operator domain (empty for default)
	Version int64  // Opset version number
}

// StringStringEntry represents key-value metadata.
type StringStringEntry struct {
	Key   string
	Value string
}

// ONNX data types (TensorProto.DataType).
const (
	TensorProtoUndefined = 0
	TensorProtoFloat     = 1  // float32
	TensorProtoInt32     = 6  // int32
	TensorProtoInt64     = 7  // int64
	TensorProtoFloat16   = 10 // float16
	TensorProtoDouble    = 11 // float64
)
