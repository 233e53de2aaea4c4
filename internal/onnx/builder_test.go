package onnx

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Helpers that encode ONNX messages for tests.

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v)) //nolint:gosec // two's complement varint
}

func appendPackedInts(b []byte, num protowire.Number, vs []int64) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // two's complement varint
	}
	return appendMessage(b, num, packed)
}

func appendPackedFloats(b []byte, num protowire.Number, vs []float32) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	return appendMessage(b, num, packed)
}

func float32Bytes(vs ...float32) []byte {
	var raw []byte
	for _, v := range vs {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
	}
	return raw
}

// buildValueInfo encodes a ValueInfoProto; negative dims become symbolic.
func buildValueInfo(name string, elemType int32, dims []int64) []byte {
	var shape []byte
	for _, d := range dims {
		var dim []byte
		if d < 0 {
			dim = appendString(dim, 2, "N") // dim_param
		} else {
			dim = appendInt(dim, 1, d) // dim_value
		}
		shape = appendMessage(shape, 1, dim)
	}

	var tensorType []byte
	tensorType = appendInt(tensorType, 1, int64(elemType))
	tensorType = appendMessage(tensorType, 2, shape)

	var typ []byte
	typ = appendMessage(typ, 1, tensorType)

	var info []byte
	info = appendString(info, 1, name)
	return appendMessage(info, 2, typ)
}

// buildRawTensor encodes a TensorProto with packed dims and raw_data.
func buildRawTensor(name string, dtype int32, dims []int64, raw []byte) []byte {
	var t []byte
	t = appendPackedInts(t, 1, dims)
	t = appendInt(t, 2, int64(dtype))
	t = appendString(t, 8, name)
	return appendMessage(t, 9, raw)
}

func buildStringAttr(name, v string) []byte {
	var a []byte
	a = appendString(a, 1, name)
	a = appendString(a, 4, v)
	return appendInt(a, 20, 3)
}

func buildIntAttr(name string, v int64) []byte {
	var a []byte
	a = appendString(a, 1, name)
	a = appendInt(a, 3, v)
	return appendInt(a, 20, 2)
}

func buildTensorAttr(name string, tensorMsg []byte) []byte {
	var a []byte
	a = appendString(a, 1, name)
	a = appendMessage(a, 5, tensorMsg)
	return appendInt(a, 20, 4)
}

func buildNode(domain, opType string, inputs, outputs []string, attrs ...[]byte) []byte {
	var n []byte
	for _, in := range inputs {
		n = appendString(n, 1, in)
	}
	for _, out := range outputs {
		n = appendString(n, 2, out)
	}
	n = appendString(n, 3, opType+"_0")
	n = appendString(n, 4, opType)
	for _, a := range attrs {
		n = appendMessage(n, 5, a)
	}
	if domain != "" {
		n = appendString(n, 7, domain)
	}
	return n
}

func buildOpset(domain string, version int64) []byte {
	var o []byte
	if domain != "" {
		o = appendString(o, 1, domain)
	}
	return appendInt(o, 2, version)
}

func buildModel(graph []byte, opsets ...[]byte) []byte {
	var m []byte
	m = appendInt(m, 1, 8)
	m = appendString(m, 2, "gridsample-test")
	m = appendString(m, 3, "1.0")
	m = appendMessage(m, 7, graph)
	for _, o := range opsets {
		m = appendMessage(m, 8, o)
	}

	var entry []byte
	entry = appendString(entry, 1, "purpose")
	entry = appendString(entry, 2, "warp")
	return appendMessage(m, 14, entry)
}

// buildWarpModel encodes an AffineGrid -> GridSample graph over a
// (1, 1, h, w) image input. theta is an initializer when asConstant is false
// and the TENSOR attribute of a Constant node otherwise.
func buildWarpModel(theta []float32, h, w int64, asConstant bool) []byte {
	thetaMsg := buildRawTensor("theta", TensorProtoFloat, []int64{1, 2, 3}, float32Bytes(theta...))

	var sizeMsg []byte
	sizeMsg = appendInt(sizeMsg, 1, 4) // unpacked dims
	sizeMsg = appendInt(sizeMsg, 2, TensorProtoInt64)
	sizeMsg = appendString(sizeMsg, 8, "size")
	for _, d := range []int64{1, 1, h, w} {
		sizeMsg = appendInt(sizeMsg, 7, d) // unpacked int64_data
	}

	var g []byte
	if asConstant {
		g = appendMessage(g, 1, buildNode("", "Constant", nil, []string{"theta"}, buildTensorAttr("value", thetaMsg)))
	}
	// GridSample precedes its producer; Compile has to reorder.
	g = appendMessage(g, 1, buildNode("", "GridSample", []string{"image", "grid"}, []string{"warped"},
		buildStringAttr("mode", "linear"),
		buildStringAttr("padding_mode", "border"),
		buildIntAttr("align_corners", 0),
	))
	g = appendMessage(g, 1, buildNode("", "AffineGrid", []string{"theta", "size"}, []string{"grid"},
		buildIntAttr("align_corners", 0),
	))
	g = appendString(g, 2, "warp")
	if !asConstant {
		g = appendMessage(g, 5, thetaMsg)
	}
	g = appendMessage(g, 5, sizeMsg)
	g = appendMessage(g, 11, buildValueInfo("image", TensorProtoFloat, []int64{-1, 1, h, w}))
	if !asConstant {
		g = appendMessage(g, 11, buildValueInfo("theta", TensorProtoFloat, []int64{1, 2, 3}))
	}
	g = appendMessage(g, 12, buildValueInfo("warped", TensorProtoFloat, []int64{-1, 1, h, w}))

	return buildModel(g, buildOpset("", 20))
}
