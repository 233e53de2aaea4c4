// Package onnx loads and runs ONNX graphs built around the sampling operators.
//
// .onnx files are decoded with google.golang.org/protobuf/encoding/protowire;
// only the messages the runtime needs are materialized (model, graph, node,
// tensor, value info, attribute, opset and metadata entries).
//
// Supported initializer data types: float32, float64, float16 and int64.
//
// A Graph can also be built in code. Compile orders its nodes, checks that
// every tensor is defined before it is read, and instantiates each node's
// kernel once:
//
//	r := operators.NewRegistry()
//	operators.RegisterAffineGrid(r)
//	operators.RegisterGridSample(r)
//
//	model, err := onnx.Compile(&onnx.Graph{
//	    Nodes: []operators.Node{
//	        {OpType: "AffineGrid", Inputs: []string{"theta", "size"}, Outputs: []string{"grid"}},
//	        {OpType: "GridSample", Inputs: []string{"image", "grid"}, Outputs: []string{"warped"}},
//	    },
//	    Initializers: map[string]*tensor.RawTensor{"theta": theta, "size": size},
//	    Inputs:       []string{"image"},
//	    Outputs:      []string{"warped"},
//	}, r, cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	warped, err := model.Forward(ctx, image)
package onnx
