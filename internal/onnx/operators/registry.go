package operators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"k8s.io/klog/v2"

	"github.com/born-ml/gridsample/internal/backend"
	"github.com/born-ml/gridsample/internal/tensor"
)

// ErrUnsupportedOp is returned for nodes whose (domain, op type) is not registered.
var ErrUnsupportedOp = errors.New("unsupported operator")

// Kernel is an operator instance bound to one node's attributes.
// Kernels are immutable and may be computed concurrently.
type Kernel interface {
	Compute(ctx *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)
}

// KernelFunc adapts a function to the Kernel interface.
type KernelFunc func(ctx *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// Compute calls f(ctx, inputs).
func (f KernelFunc) Compute(ctx *Context, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return f(ctx, inputs)
}

// KernelFactory reads a node's attributes once and returns the kernel for it.
type KernelFactory func(node *Node) (Kernel, error)

// Context provides the execution environment for one Compute call.
type Context struct {
	// Context carries cancellation and deadlines. Nil means context.Background.
	Context context.Context
	// Backend owns the device and its execution queue.
	Backend backend.Backend
}

// Ctx returns the call's context.Context, never nil.
func (c *Context) Ctx() context.Context {
	if c == nil || c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// OpKey identifies an operator by domain and type.
type OpKey struct {
	Domain string
	OpType string
}

// String formats the key as "domain::OpType", or "OpType" for the default domain.
func (k OpKey) String() string {
	if k.Domain == "" {
		return k.OpType
	}
	return k.Domain + "::" + k.OpType
}

// NewOpKey builds a registry key; "ai.onnx" is folded into the default domain.
func NewOpKey(domain, opType string) OpKey {
	if domain == "ai.onnx" {
		domain = ""
	}
	return OpKey{Domain: domain, OpType: opType}
}

// Registry maps operators to kernel factories.
//
// A new Registry is empty; the embedding application registers the operators
// it needs (see RegisterGridSample and RegisterAffineGrid).
type Registry struct {
	mu        sync.RWMutex
	factories map[OpKey]KernelFactory
}

// NewRegistry creates an empty operator registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[OpKey]KernelFactory),
	}
}

// Register adds or replaces the factory for an operator.
// The domain "ai.onnx" is the same as the empty default domain.
func (r *Registry) Register(domain, opType string, factory KernelFactory) {
	key := NewOpKey(domain, opType)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		klog.Warningf("operators: replacing registration for %s", key)
	}
	r.factories[key] = factory
	klog.V(2).Infof("operators: registered %s", key)
}

// Get returns the factory for an operator.
func (r *Registry) Get(domain, opType string) (KernelFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[NewOpKey(domain, opType)]
	return f, ok
}

// Instantiate builds the kernel for node from its attributes.
func (r *Registry) Instantiate(node *Node) (Kernel, error) {
	factory, ok := r.Get(node.Domain, node.OpType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOp, NewOpKey(node.Domain, node.OpType))
	}
	k, err := factory(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", NewOpKey(node.Domain, node.OpType), err)
	}
	return k, nil
}

// Execute instantiates the node's kernel and runs it once.
func (r *Registry) Execute(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	k, err := r.Instantiate(node)
	if err != nil {
		return nil, err
	}
	return k.Compute(ctx, inputs)
}

// SupportedOps returns the registered operators in sorted order.
func (r *Registry) SupportedOps() []string {
	r.mu.RLock()
	ops := make([]string, 0, len(r.factories))
	for key := range r.factories {
		ops = append(ops, key.String())
	}
	r.mu.RUnlock()

	sort.Strings(ops)
	return ops
}
