package gridsample

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/gridsample/internal/parallel"
	"github.com/born-ml/gridsample/internal/tensor"
)

// View is a caller-owned flat buffer addressed through a shape/stride descriptor.
type View[T Float] struct {
	Data []T
	Desc tensor.Descriptor
}

// NewView wraps a dense row-major buffer.
func NewView[T Float](data []T, shape tensor.Shape) View[T] {
	return View[T]{Data: data, Desc: tensor.NewDescriptor(shape)}
}

// Sampler runs the kernel for one immutable Config.
// It is safe for concurrent use.
type Sampler struct {
	cfg Config
	par parallel.Config
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithParallel overrides the dispatch configuration (default: parallel.FromEnv).
func WithParallel(cfg parallel.Config) Option {
	return func(s *Sampler) {
		s.par = cfg
	}
}

// New creates a Sampler bound to cfg.
func New(cfg Config, opts ...Option) *Sampler {
	s := &Sampler{
		cfg: cfg,
		par: parallel.FromEnv(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the sampler's configuration.
func (s *Sampler) Config() Config {
	return s.cfg
}

// OutputShape returns (N, C, out_spatial...) for the given input and grid shapes.
func OutputShape(input, grid tensor.Shape) (tensor.Shape, error) {
	rank := len(input)
	if rank != 4 && rank != 5 {
		return nil, &ShapeError{Tensor: "input", Got: []int(input), Want: "rank 4 or 5", Err: ErrRank}
	}
	spatial := rank - 2
	if len(grid) != rank || grid[rank-1] != spatial {
		return nil, &ShapeError{Tensor: "grid", Got: []int(grid), Want: fmt.Sprintf("(N, out_spatial x%d, %d)", spatial, spatial), Err: ErrGridShape}
	}
	if grid[0] != input[0] {
		return nil, &ShapeError{Tensor: "grid", Got: grid[0], Want: input[0], Err: ErrBatchMismatch}
	}

	out := make(tensor.Shape, 0, rank)
	out = append(out, input[0], input[1])
	out = append(out, grid[1:rank-1]...)
	return out, nil
}

// Forward samples input at grid and returns a newly allocated output tensor.
// float32 and float64 run natively; float16 is computed in float32.
// A grid with an empty output extent yields an empty output tensor.
func (s *Sampler) Forward(ctx context.Context, input, grid *tensor.RawTensor) (*tensor.RawTensor, error) {
	if input == nil || grid == nil {
		return nil, &ShapeError{Tensor: "input", Got: "nil tensor", Err: ErrNilBuffer}
	}
	if input.DType() != grid.DType() {
		return nil, &ShapeError{Tensor: "grid", Got: grid.DType(), Want: input.DType(), Err: ErrDType}
	}

	outShape, err := OutputShape(input.Shape(), grid.Shape())
	if err != nil {
		return nil, err
	}
	klog.V(3).Infof("gridsample: %s input=%v grid=%v output=%v dtype=%s", s.cfg, input.Shape(), grid.Shape(), outShape, input.DType())

	switch input.DType() {
	case tensor.Float32:
		out, err := tensor.NewRaw(outShape, tensor.Float32, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("gridsample: %w", err)
		}
		err = Sample(ctx, s,
			View[float32]{Data: out.AsFloat32(), Desc: out.Descriptor()},
			View[float32]{Data: input.AsFloat32(), Desc: input.Descriptor()},
			View[float32]{Data: grid.AsFloat32(), Desc: grid.Descriptor()})
		if err != nil {
			return nil, err
		}
		return out, nil

	case tensor.Float64:
		out, err := tensor.NewRaw(outShape, tensor.Float64, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("gridsample: %w", err)
		}
		err = Sample(ctx, s,
			View[float64]{Data: out.AsFloat64(), Desc: out.Descriptor()},
			View[float64]{Data: input.AsFloat64(), Desc: input.Descriptor()},
			View[float64]{Data: grid.AsFloat64(), Desc: grid.Descriptor()})
		if err != nil {
			return nil, err
		}
		return out, nil

	case tensor.Float16:
		in32, err := tensor.Cast(input, tensor.Float32)
		if err != nil {
			return nil, fmt.Errorf("gridsample: %w", err)
		}
		grid32, err := tensor.Cast(grid, tensor.Float32)
		if err != nil {
			return nil, fmt.Errorf("gridsample: %w", err)
		}
		out32, err := s.Forward(ctx, in32, grid32)
		if err != nil {
			return nil, err
		}
		return tensor.Cast(out32, tensor.Float16)

	default:
		return nil, &ShapeError{Tensor: "input", Got: input.DType(), Want: "float16, float32 or float64", Err: ErrDType}
	}
}

// Sample writes every element of out from in sampled at grid.
//
// All three views may be strided. Preconditions are checked once before any
// write; on error out is left untouched. The only blocking point is the join
// of the parallel dispatch, so ctx is only consulted at entry.
func Sample[T Float](ctx context.Context, s *Sampler, out, in, grid View[T]) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("gridsample: %w", err)
	}
	if err := validate(out, in, grid); err != nil {
		return err
	}

	k := newKernel(s.cfg, out, in, grid)
	if k.locations == 0 || k.batch == 0 {
		return nil
	}
	parallel.ForBatch(k.batch, k.locations, k.run, s.par)
	return nil
}

func validate[T Float](out, in, grid View[T]) error {
	views := []struct {
		name  string
		desc  tensor.Descriptor
		n     int
		isNil bool
	}{
		{"input", in.Desc, len(in.Data), in.Data == nil},
		{"grid", grid.Desc, len(grid.Data), grid.Data == nil},
		{"output", out.Desc, len(out.Data), out.Data == nil},
	}
	for _, v := range views {
		if err := v.desc.Validate(); err != nil {
			return fmt.Errorf("gridsample: %s: %w", v.name, err)
		}
		span := v.desc.Span()
		if span > 0 && v.isNil {
			return &ShapeError{Tensor: v.name, Got: "nil", Err: ErrNilBuffer}
		}
		if v.n < span {
			return &ShapeError{Tensor: v.name, Got: v.n, Want: span, Err: ErrBufferTooSmall}
		}
	}
	if out.Desc.Overlapping() {
		return &ShapeError{Tensor: "output", Got: out.Desc.Strides, Want: "distinct offsets per element", Err: ErrOutputOverlap}
	}

	want, err := OutputShape(in.Desc.Shape, grid.Desc.Shape)
	if err != nil {
		return err
	}
	if !out.Desc.Shape.Equal(want) {
		return &ShapeError{Tensor: "output", Got: []int(out.Desc.Shape), Want: []int(want), Err: ErrOutputShape}
	}

	if out.Desc.Shape.NumElements() > 0 {
		for _, dim := range in.Desc.Shape[2:] {
			if dim <= 0 {
				return &ShapeError{Tensor: "input", Got: []int(in.Desc.Shape), Err: ErrEmptyInput}
			}
			if dim >= indexLimit {
				return &ShapeError{Tensor: "input", Got: dim, Want: fmt.Sprintf("< %d", indexLimit), Err: ErrExtentTooLarge}
			}
		}
	}
	return nil
}
