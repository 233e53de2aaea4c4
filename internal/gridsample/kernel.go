package gridsample

// maxSpatial is the highest supported spatial rank (volumetric sampling).
const maxSpatial = 3

// tap is one source read: an offset inside a channel plane and its weight.
type tap[T Float] struct {
	off int
	w   T
}

// kernel holds the geometry of one Sample call. Spatial axes are indexed by
// grid component: axis 0 is x (the innermost source dimension), axis 1 is y,
// axis 2 is z.
type kernel[T Float] struct {
	cfg           Config
	out, in, grid View[T]

	batch, channels int
	spatial         int
	inSize          [maxSpatial]int
	inStride        [maxSpatial]int
	outSize         [maxSpatial]int // row-major output spatial extents
	gridComp        int             // stride between the components of one grid vector
	locations       int             // output locations per batch item
}

func newKernel[T Float](cfg Config, out, in, grid View[T]) *kernel[T] {
	rank := in.Desc.Rank()
	k := &kernel[T]{
		cfg:       cfg,
		out:       out,
		in:        in,
		grid:      grid,
		batch:     in.Desc.Shape[0],
		channels:  in.Desc.Shape[1],
		spatial:   rank - 2,
		gridComp:  grid.Desc.Strides[rank-1],
		locations: 1,
	}
	for a := 0; a < k.spatial; a++ {
		k.inSize[a] = in.Desc.Shape[rank-1-a]
		k.inStride[a] = in.Desc.Strides[rank-1-a]
		k.outSize[a] = grid.Desc.Shape[1+a]
		k.locations *= k.outSize[a]
	}
	return k
}

// run computes every channel of output location loc in batch item n.
// Spatial taps are resolved once and reused across channels.
func (k *kernel[T]) run(n, loc int) {
	var idx [maxSpatial]int
	rem := loc
	for d := k.spatial - 1; d >= 0; d-- {
		idx[d] = rem % k.outSize[d]
		rem /= k.outSize[d]
	}

	gStrides := k.grid.Desc.Strides
	oStrides := k.out.Desc.Strides
	gOff := n * gStrides[0]
	oOff := n * oStrides[0]
	for d := 0; d < k.spatial; d++ {
		gOff += idx[d] * gStrides[1+d]
		oOff += idx[d] * oStrides[2+d]
	}

	var taps [1 << maxSpatial]tap[T]
	nt := k.resolve(gOff, taps[:])

	in := k.in.Data
	out := k.out.Data
	inBase := n * k.in.Desc.Strides[0]
	inChan := k.in.Desc.Strides[1]
	outChan := oStrides[1]

	if k.cfg.Mode == Nearest {
		for c := 0; c < k.channels; c++ {
			var v T
			if nt == 1 {
				v = in[inBase+c*inChan+taps[0].off]
			}
			out[oOff+c*outChan] = v
		}
		return
	}

	for c := 0; c < k.channels; c++ {
		src := inBase + c*inChan
		var acc T
		for _, t := range taps[:nt] {
			acc += in[src+t.off] * t.w
		}
		out[oOff+c*outChan] = acc
	}
}

// resolve turns the grid vector at gOff into source taps and returns how many
// were written. Taps outside the source are dropped, which is how Zeros
// padding contributes 0; Border and Reflection never produce them.
func (k *kernel[T]) resolve(gOff int, taps []tap[T]) int {
	var src [maxSpatial]T
	for a := 0; a < k.spatial; a++ {
		g := k.grid.Data[gOff+a*k.gridComp]
		src[a] = SourceIndex(g, k.inSize[a], k.cfg.Padding, k.cfg.AlignCorners)
	}

	if k.cfg.Mode == Nearest {
		off := 0
		for a := 0; a < k.spatial; a++ {
			i := roundIndex(src[a])
			if !InBounds(i, k.inSize[a]) {
				return 0
			}
			off += i * k.inStride[a]
		}
		taps[0] = tap[T]{off: off, w: 1}
		return 1
	}

	// Linear weights per axis: w[a][0] for the lower lattice index, w[a][1] for the upper.
	var lo [maxSpatial]int
	var w [maxSpatial][2]T
	for a := 0; a < k.spatial; a++ {
		lo[a] = floorIndex(src[a])
		w1 := src[a] - T(lo[a])
		w[a] = [2]T{1 - w1, w1}
	}

	// Corner bit a selects the upper index on axis a, so 2-D corners come out
	// as (x0,y0), (x1,y0), (x0,y1), (x1,y1).
	nt := 0
	for corner := 0; corner < 1<<k.spatial; corner++ {
		off := 0
		weight := T(1)
		inside := true
		for a := 0; a < k.spatial; a++ {
			bit := (corner >> a) & 1
			i := lo[a] + bit
			if !InBounds(i, k.inSize[a]) {
				inside = false
				break
			}
			off += i * k.inStride[a]
			weight *= w[a][bit]
		}
		if inside {
			taps[nt] = tap[T]{off: off, w: weight}
			nt++
		}
	}
	return nt
}
