// Package operators maps ONNX nodes to sampling kernels.
//
// Operators are not registered implicitly. The application creates a
// Registry and registers the operators it wants to expose:
//
//	r := operators.NewRegistry()
//	operators.RegisterGridSample(r)
//	operators.RegisterAffineGrid(r)
//
// Each node is turned into a Kernel exactly once, when its attributes are
// read and frozen. Compute then runs the kernel on the backend carried by
// the Context.
//
// Registered operators:
//   - GridSample (default domain, opset 16 and 20 string attributes)
//   - mmdeploy::grid_sampler (integer attributes align_corners,
//     interpolation_mode, padding_mode)
//   - AffineGrid (default domain, opset 20)
//   - Identity, Shape, Cast and Constant (RegisterUtilityOps)
package operators
