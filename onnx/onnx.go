// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onnx runs ONNX graphs built from GridSample, AffineGrid and a
// small set of utility operators.
//
// # Supported Operators
//
//   - GridSample (ai.onnx, opset 16+) and mmdeploy::grid_sampler
//   - AffineGrid (ai.onnx, opset 20)
//   - Constant, Identity, Shape, Cast
//
// Operators are opt-in: a Registry starts empty and each Register function
// adds one group.
//
// # Example Usage
//
//	reg := onnx.NewRegistry()
//	onnx.RegisterGridSample(reg)
//	onnx.RegisterAffineGrid(reg)
//
//	model, err := onnx.Load("warp.onnx", reg, cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := model.Forward(ctx, image)
package onnx

import (
	"github.com/born-ml/gridsample/internal/backend"
	internalonnx "github.com/born-ml/gridsample/internal/onnx"
	"github.com/born-ml/gridsample/internal/onnx/operators"
)

// Model is a compiled graph. Run and Forward are safe for concurrent use.
type Model = internalonnx.Model

// Graph is an in-memory graph for Compile.
type Graph = internalonnx.Graph

// Node is one operator application in a Graph.
type Node = operators.Node

// Attribute is a node attribute.
type Attribute = operators.Attribute

// Registry maps (domain, op_type) to kernel factories.
type Registry = operators.Registry

// Kernel is an instantiated operator.
type Kernel = operators.Kernel

// KernelFactory builds a Kernel from a node's attributes.
type KernelFactory = operators.KernelFactory

// Backend executes the sampling kernels of a Model.
type Backend = backend.Backend

// ModelInfo contains metadata about an ONNX model without compiling it.
type ModelInfo = internalonnx.ModelInfo

// ErrGraph reports a malformed graph: a cycle, a duplicate producer or an
// undefined tensor.
var ErrGraph = internalonnx.ErrGraph

// Operator names.
const (
	OpGridSample   = operators.OpGridSample
	OpAffineGrid   = operators.OpAffineGrid
	DomainMMDeploy = operators.DomainMMDeploy
	OpGridSampler  = operators.OpGridSampler
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return operators.NewRegistry()
}

// RegisterGridSample adds GridSample and mmdeploy::grid_sampler.
func RegisterGridSample(r *Registry) {
	operators.RegisterGridSample(r)
}

// RegisterAffineGrid adds AffineGrid.
func RegisterAffineGrid(r *Registry) {
	operators.RegisterAffineGrid(r)
}

// RegisterUtilityOps adds Constant, Identity, Shape and Cast.
func RegisterUtilityOps(r *Registry) {
	operators.RegisterUtilityOps(r)
}

// Compile validates g and instantiates one kernel per node.
//
// Example:
//
//	model, err := onnx.Compile(&onnx.Graph{
//	    Nodes:   []onnx.Node{{OpType: onnx.OpGridSample, Inputs: []string{"x", "grid"}, Outputs: []string{"y"}}},
//	    Inputs:  []string{"x", "grid"},
//	    Outputs: []string{"y"},
//	}, reg, cpu.New())
func Compile(g *Graph, registry *Registry, be Backend) (*Model, error) {
	return internalonnx.Compile(g, registry, be)
}

// Load parses and compiles the ONNX file at path.
func Load(path string, registry *Registry, be Backend) (*Model, error) {
	return internalonnx.Load(path, registry, be)
}

// LoadFromBytes parses and compiles a serialized ModelProto.
func LoadFromBytes(data []byte, registry *Registry, be Backend) (*Model, error) {
	return internalonnx.LoadFromBytes(data, registry, be)
}

// GetModelInfo extracts metadata from an ONNX file without compiling it.
//
// Example:
//
//	info, err := onnx.GetModelInfo("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Opset: %d\n", info.OpsetVersion)
//	fmt.Printf("Operators: %v\n", info.Operators)
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// IntAttr returns an INT attribute.
func IntAttr(name string, v int64) Attribute {
	return operators.IntAttr(name, v)
}

// StringAttr returns a STRING attribute.
func StringAttr(name, v string) Attribute {
	return operators.StringAttr(name, v)
}
