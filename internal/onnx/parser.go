package onnx

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := readModelProto(data, model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}

// fieldFunc decodes one field value from b and returns the number of bytes
// consumed. Returning 0 skips the field.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walkFields calls fn for every field of the message encoded in b.
func walkFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("field %d: %w", num, protowire.ParseError(m))
			}
		}
		b = b[m:]
	}
	return nil
}

func wireTypeError(typ protowire.Type) error {
	return fmt.Errorf("unexpected wire type %d", typ)
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	v, n, err := consumeBytes(typ, b)
	if err != nil {
		return 0, err
	}
	*dst = string(v)
	return n, nil
}

func consumeInt64(typ protowire.Type, b []byte, dst *int64) (int, error) {
	if typ != protowire.VarintType {
		return 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int64(v) //nolint:gosec // G115: protobuf int64 is two's complement varint
	return n, nil
}

func consumeInt32(typ protowire.Type, b []byte, dst *int32) (int, error) {
	var v int64
	n, err := consumeInt64(typ, b, &v)
	*dst = int32(v) //nolint:gosec // G115: protobuf int32 is sign-extended to 64 bits
	return n, err
}

// consumeRepeated decodes a repeated scalar field in packed or unpacked form.
func consumeRepeated[T any](dst []T, typ, elem protowire.Type, b []byte, decode func([]byte) (T, int)) ([]T, int, error) {
	if typ == elem {
		v, n := decode(b)
		if n < 0 {
			return dst, 0, protowire.ParseError(n)
		}
		return append(dst, v), n, nil
	}

	packed, n, err := consumeBytes(typ, b)
	if err != nil {
		return dst, 0, err
	}
	for len(packed) > 0 {
		v, m := decode(packed)
		if m < 0 {
			return dst, 0, protowire.ParseError(m)
		}
		dst = append(dst, v)
		packed = packed[m:]
	}
	return dst, n, nil
}

func decodeInt64(b []byte) (int64, int) {
	v, n := protowire.ConsumeVarint(b)
	return int64(v), n //nolint:gosec // G115: two's complement varint
}

func decodeInt32(b []byte) (int32, int) {
	v, n := protowire.ConsumeVarint(b)
	return int32(v), n //nolint:gosec // G115: sign-extended varint
}

func decodeFloat(b []byte) (float32, int) {
	v, n := protowire.ConsumeFixed32(b)
	return math.Float32frombits(v), n
}

func decodeDouble(b []byte) (float64, int) {
	v, n := protowire.ConsumeFixed64(b)
	return math.Float64frombits(v), n
}

// readModelProto reads a ModelProto message.
func readModelProto(data []byte, m *ModelProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // ir_version
			return consumeInt64(typ, b, &m.IRVersion)
		case 2: // producer_name
			return consumeString(typ, b, &m.ProducerName)
		case 3: // producer_version
			return consumeString(typ, b, &m.ProducerVersion)
		case 4: // domain
			return consumeString(typ, b, &m.Domain)
		case 5: // model_version
			return consumeInt64(typ, b, &m.ModelVersion)
		case 6: // doc_string
			return consumeString(typ, b, &m.DocString)
		case 7: // graph
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			m.Graph = &GraphProto{}
			return n, readGraphProto(v, m.Graph)
		case 8: // opset_import
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var opset OperatorSetID
			if err := readOperatorSetID(v, &opset); err != nil {
				return 0, err
			}
			m.OpsetImport = append(m.OpsetImport, opset)
			return n, nil
		case 14: // metadata_props
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var entry StringStringEntry
			if err := readStringStringEntry(v, &entry); err != nil {
				return 0, err
			}
			m.MetadataProps = append(m.MetadataProps, entry)
			return n, nil
		}
		return 0, nil
	})
}

// readGraphProto reads a GraphProto message.
func readGraphProto(data []byte, g *GraphProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // node
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var node NodeProto
			if err := readNodeProto(v, &node); err != nil {
				return 0, fmt.Errorf("node %d: %w", len(g.Nodes), err)
			}
			g.Nodes = append(g.Nodes, node)
			return n, nil
		case 2: // name
			return consumeString(typ, b, &g.Name)
		case 5: // initializer
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var t TensorProto
			if err := readTensorProto(v, &t); err != nil {
				return 0, fmt.Errorf("initializer %d: %w", len(g.Initializers), err)
			}
			g.Initializers = append(g.Initializers, t)
			return n, nil
		case 11, 12: // input, output
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var info ValueInfoProto
			if err := readValueInfoProto(v, &info); err != nil {
				return 0, err
			}
			if num == 11 {
				g.Inputs = append(g.Inputs, info)
			} else {
				g.Outputs = append(g.Outputs, info)
			}
			return n, nil
		}
		return 0, nil
	})
}

// readNodeProto reads a NodeProto message.
func readNodeProto(data []byte, node *NodeProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1, 2: // input, output
			var s string
			n, err := consumeString(typ, b, &s)
			if err != nil {
				return 0, err
			}
			if num == 1 {
				node.Inputs = append(node.Inputs, s)
			} else {
				node.Outputs = append(node.Outputs, s)
			}
			return n, nil
		case 3: // name
			return consumeString(typ, b, &node.Name)
		case 4: // op_type
			return consumeString(typ, b, &node.OpType)
		case 5: // attribute
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var attr AttributeProto
			if err := readAttributeProto(v, &attr); err != nil {
				return 0, err
			}
			node.Attributes = append(node.Attributes, attr)
			return n, nil
		case 7: // domain
			return consumeString(typ, b, &node.Domain)
		}
		return 0, nil
	})
}

// readTensorProto reads a TensorProto message.
func readTensorProto(data []byte, t *TensorProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var (
			n   int
			err error
		)
		switch num {
		case 1: // dims
			t.Dims, n, err = consumeRepeated(t.Dims, typ, protowire.VarintType, b, decodeInt64)
		case 2: // data_type
			n, err = consumeInt32(typ, b, &t.DataType)
		case 4: // float_data
			t.FloatData, n, err = consumeRepeated(t.FloatData, typ, protowire.Fixed32Type, b, decodeFloat)
		case 5: // int32_data
			t.Int32Data, n, err = consumeRepeated(t.Int32Data, typ, protowire.VarintType, b, decodeInt32)
		case 7: // int64_data
			t.Int64Data, n, err = consumeRepeated(t.Int64Data, typ, protowire.VarintType, b, decodeInt64)
		case 8: // name
			n, err = consumeString(typ, b, &t.Name)
		case 9: // raw_data
			var v []byte
			v, n, err = consumeBytes(typ, b)
			t.RawData = v
		case 10: // double_data
			t.DoubleData, n, err = consumeRepeated(t.DoubleData, typ, protowire.Fixed64Type, b, decodeDouble)
		}
		return n, err
	})
}

// readValueInfoProto reads a ValueInfoProto, flattening
// type.tensor_type.{elem_type,shape} into the message.
func readValueInfoProto(data []byte, info *ValueInfoProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // name
			return consumeString(typ, b, &info.Name)
		case 2: // type
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			return n, readTypeProto(v, info)
		}
		return 0, nil
	})
}

// readTypeProto reads the tensor_type arm of a TypeProto.
func readTypeProto(data []byte, info *ValueInfoProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 { // tensor_type
			return 0, nil
		}
		v, n, err := consumeBytes(typ, b)
		if err != nil {
			return 0, err
		}
		return n, walkFields(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case 1: // elem_type
				return consumeInt32(typ, b, &info.ElemType)
			case 2: // shape
				v, n, err := consumeBytes(typ, b)
				if err != nil {
					return 0, err
				}
				return n, readTensorShapeProto(v, info)
			}
			return 0, nil
		})
	})
}

// readTensorShapeProto appends one entry per dim; symbolic dims become -1.
func readTensorShapeProto(data []byte, info *ValueInfoProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 { // dim
			return 0, nil
		}
		v, n, err := consumeBytes(typ, b)
		if err != nil {
			return 0, err
		}
		dim := int64(-1)
		err = walkFields(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			if num == 1 { // dim_value
				return consumeInt64(typ, b, &dim)
			}
			return 0, nil
		})
		if err != nil {
			return 0, err
		}
		info.Dims = append(info.Dims, dim)
		return n, nil
	})
}

// readAttributeProto reads an AttributeProto message.
func readAttributeProto(data []byte, attr *AttributeProto) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var (
			n   int
			err error
		)
		switch num {
		case 1: // name
			n, err = consumeString(typ, b, &attr.Name)
		case 2: // f
			if typ != protowire.Fixed32Type {
				return 0, wireTypeError(typ)
			}
			attr.F, n = decodeFloat(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
		case 3: // i
			n, err = consumeInt64(typ, b, &attr.I)
		case 4: // s
			attr.S, n, err = consumeBytes(typ, b)
		case 5: // t
			var v []byte
			if v, n, err = consumeBytes(typ, b); err == nil {
				attr.T = &TensorProto{}
				err = readTensorProto(v, attr.T)
			}
		case 7: // floats
			attr.Floats, n, err = consumeRepeated(attr.Floats, typ, protowire.Fixed32Type, b, decodeFloat)
		case 8: // ints
			attr.Ints, n, err = consumeRepeated(attr.Ints, typ, protowire.VarintType, b, decodeInt64)
		case 9: // strings
			var v []byte
			if v, n, err = consumeBytes(typ, b); err == nil {
				attr.Strings = append(attr.Strings, v)
			}
		case 20: // type
			n, err = consumeInt32(typ, b, &attr.Type)
		}
		if err != nil {
			return 0, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		return n, nil
	})
}

// readOperatorSetID reads an OperatorSetIdProto message.
func readOperatorSetID(data []byte, opset *OperatorSetID) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // domain
			return consumeString(typ, b, &opset.Domain)
		case 2: // version
			return consumeInt64(typ, b, &opset.Version)
		}
		return 0, nil
	})
}

// readStringStringEntry reads a StringStringEntryProto message.
func readStringStringEntry(data []byte, entry *StringStringEntry) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // key
			return consumeString(typ, b, &entry.Key)
		case 2: // value
			return consumeString(typ, b, &entry.Value)
		}
		return 0, nil
	})
}
