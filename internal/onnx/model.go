package onnx

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/gridsample/internal/backend"
	"github.com/born-ml/gridsample/internal/onnx/operators"
	"github.com/born-ml/gridsample/internal/tensor"
)

// ErrGraph reports a structurally invalid graph.
var ErrGraph = errors.New("onnx: invalid graph")

// Graph is a computation graph, either built in code or converted from a
// parsed ModelProto.
type Graph struct {
	Name         string
	Nodes        []operators.Node
	Initializers map[string]*tensor.RawTensor // Constant tensors by name
	Inputs       []string                     // Runtime inputs, initializers excluded
	Outputs      []string
}

// step is a node with its kernel, instantiated once at compile time.
type step struct {
	node   *operators.Node
	kernel operators.Kernel
}

// Model is a compiled graph ready for execution on a backend.
type Model struct {
	graph   *Graph
	backend backend.Backend
	steps   []step
	meta    map[string]string
	opset   int64
}

// Compile orders the graph topologically and instantiates one kernel per
// node. It fails on the first node the registry cannot build.
func Compile(g *Graph, registry *operators.Registry, be backend.Backend) (*Model, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrGraph)
	}
	if registry == nil {
		return nil, fmt.Errorf("onnx: nil registry")
	}
	if be == nil {
		return nil, fmt.Errorf("onnx: nil backend")
	}

	order, err := topologicalSort(g.Nodes)
	if err != nil {
		return nil, err
	}
	if err := checkDataflow(g, order); err != nil {
		return nil, err
	}

	m := &Model{graph: g, backend: be, steps: make([]step, 0, len(order))}
	for _, i := range order {
		node := &g.Nodes[i]
		kernel, err := registry.Instantiate(node)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nodeLabel(node), err)
		}
		m.steps = append(m.steps, step{node: node, kernel: kernel})
	}

	klog.V(2).Infof("onnx: compiled graph %q: %d nodes on %s", g.Name, len(m.steps), be.Name())
	return m, nil
}

// InputNames returns the names of model inputs.
func (m *Model) InputNames() []string {
	return m.graph.Inputs
}

// OutputNames returns the names of model outputs.
func (m *Model) OutputNames() []string {
	return m.graph.Outputs
}

// OpsetVersion returns the default-domain opset of a loaded model, or 0 for
// graphs built in code.
func (m *Model) OpsetVersion() int64 {
	return m.opset
}

// Metadata returns model metadata as key-value pairs.
func (m *Model) Metadata() map[string]string {
	meta := make(map[string]string, len(m.meta))
	for k, v := range m.meta {
		meta[k] = v
	}
	return meta
}

// Forward runs a model with exactly one input and one output.
func (m *Model) Forward(ctx context.Context, input *tensor.RawTensor) (*tensor.RawTensor, error) {
	if len(m.graph.Inputs) != 1 {
		return nil, fmt.Errorf("model has %d inputs, use Run", len(m.graph.Inputs))
	}
	if len(m.graph.Outputs) != 1 {
		return nil, fmt.Errorf("model has %d outputs, use Run", len(m.graph.Outputs))
	}

	outputs, err := m.Run(ctx, map[string]*tensor.RawTensor{m.graph.Inputs[0]: input})
	if err != nil {
		return nil, err
	}
	return outputs[m.graph.Outputs[0]], nil
}

// Run executes the graph with named inputs and returns the named outputs.
// The context is checked before every node; a nil context means Background.
func (m *Model) Run(ctx context.Context, inputs map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tensors := make(map[string]*tensor.RawTensor, len(m.graph.Initializers)+len(inputs))
	for name, t := range m.graph.Initializers {
		tensors[name] = t
	}
	for _, name := range m.graph.Inputs {
		t, ok := inputs[name]
		if !ok || t == nil {
			return nil, fmt.Errorf("missing input: %s", name)
		}
		tensors[name] = t
	}

	opCtx := &operators.Context{Context: ctx, Backend: m.backend}
	for _, s := range m.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nodeInputs := make([]*tensor.RawTensor, len(s.node.Inputs))
		for i, name := range s.node.Inputs {
			if name == "" {
				continue // optional input not provided
			}
			nodeInputs[i] = tensors[name]
		}

		outputs, err := s.kernel.Compute(opCtx, nodeInputs)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nodeLabel(s.node), err)
		}
		if len(outputs) < len(s.node.Outputs) {
			return nil, fmt.Errorf("node %s: produced %d outputs, want %d", nodeLabel(s.node), len(outputs), len(s.node.Outputs))
		}
		for i, name := range s.node.Outputs {
			tensors[name] = outputs[i]
		}

		if klog.V(2).Enabled() && len(outputs) > 0 && outputs[0] != nil {
			klog.Infof("onnx: ran %s -> %v", nodeLabel(s.node), outputs[0].Shape())
		}
	}

	result := make(map[string]*tensor.RawTensor, len(m.graph.Outputs))
	for _, name := range m.graph.Outputs {
		t, ok := tensors[name]
		if !ok {
			return nil, fmt.Errorf("missing output: %s", name)
		}
		result[name] = t
	}
	return result, nil
}

func nodeLabel(node *operators.Node) string {
	key := operators.NewOpKey(node.Domain, node.OpType).String()
	if node.Name == "" {
		return key
	}
	return node.Name + " (" + key + ")"
}

// topologicalSort returns node indices in execution order, dependencies
// first. Cycles are rejected.
func topologicalSort(nodes []operators.Node) ([]int, error) {
	producer := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			if output == "" {
				continue
			}
			if j, ok := producer[output]; ok {
				return nil, fmt.Errorf("%w: tensor %q produced by nodes %d and %d", ErrGraph, output, j, i)
			}
			producer[output] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(nodes))
	order := make([]int, 0, len(nodes))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: cycle through %s", ErrGraph, nodeLabel(&nodes[i]))
		}
		state[i] = visiting
		for _, input := range nodes[i].Inputs {
			if dep, ok := producer[input]; ok {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[i] = done
		order = append(order, i)
		return nil
	}

	for i := range nodes {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// checkDataflow verifies that every node input and graph output is available
// by the time it is read.
func checkDataflow(g *Graph, order []int) error {
	available := make(map[string]bool, len(g.Initializers)+len(g.Inputs))
	for name := range g.Initializers {
		available[name] = true
	}
	for _, name := range g.Inputs {
		available[name] = true
	}

	for _, i := range order {
		node := &g.Nodes[i]
		for _, name := range node.Inputs {
			if name != "" && !available[name] {
				return fmt.Errorf("%w: node %s reads undefined tensor %q", ErrGraph, nodeLabel(node), name)
			}
		}
		for _, name := range node.Outputs {
			available[name] = true
		}
	}

	for _, name := range g.Outputs {
		if !available[name] {
			return fmt.Errorf("%w: output %q is never produced", ErrGraph, name)
		}
	}
	return nil
}
