package operators

import "github.com/born-ml/gridsample/internal/tensor"

// ONNX attribute types (AttributeProto.AttributeType).
const (
	AttributeUndefined = 0
	AttributeFloat     = 1
	AttributeInt       = 2
	AttributeString    = 3
	AttributeTensor    = 4
	AttributeFloats    = 6
	AttributeInts      = 7
	AttributeStrings   = 8
)

// Node represents an ONNX operation node.
type Node struct {
	Name       string      // Node name (optional)
	OpType     string      // Operation type (e.g., "GridSample", "AffineGrid")
	Inputs     []string    // Input tensor names
	Outputs    []string    // Output tensor names
	Attributes []Attribute // Operation attributes
	Domain     string      // Custom domain (empty for default)
}

// Attribute represents a node attribute.
type Attribute struct {
	Name    string            // Attribute name
	Type    int32             // Attribute type
	F       float32           // FLOAT value
	I       int64             // INT value
	S       []byte            // STRING value
	T       *tensor.RawTensor // TENSOR value
	Floats  []float32         // FLOATS array
	Ints    []int64           // INTS array
	Strings [][]byte          // STRINGS array
}

// IntAttr builds an INT attribute.
func IntAttr(name string, v int64) Attribute {
	return Attribute{Name: name, Type: AttributeInt, I: v}
}

// StringAttr builds a STRING attribute.
func StringAttr(name, v string) Attribute {
	return Attribute{Name: name, Type: AttributeString, S: []byte(v)}
}

// FloatAttr builds a FLOAT attribute.
func FloatAttr(name string, v float32) Attribute {
	return Attribute{Name: name, Type: AttributeFloat, F: v}
}

func (n *Node) attr(name string) (*Attribute, bool) {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			return &n.Attributes[i], true
		}
	}
	return nil, false
}

// HasAttr reports whether the node carries the named attribute.
func HasAttr(node *Node, name string) bool {
	_, ok := node.attr(name)
	return ok
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	if a, ok := node.attr(name); ok {
		return a.I
	}
	return defaultVal
}

// GetAttrInts returns an integer array attribute.
func GetAttrInts(node *Node, name string) []int64 {
	if a, ok := node.attr(name); ok {
		return a.Ints
	}
	return nil
}

// GetAttrFloat returns a float attribute or default value.
func GetAttrFloat(node *Node, name string, defaultVal float32) float32 {
	if a, ok := node.attr(name); ok {
		return a.F
	}
	return defaultVal
}

// GetAttrString returns a string attribute or default value.
func GetAttrString(node *Node, name, defaultVal string) string {
	if a, ok := node.attr(name); ok {
		return string(a.S)
	}
	return defaultVal
}
