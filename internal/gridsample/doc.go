// Package gridsample implements the forward grid-sampling kernel.
//
// Given a source tensor laid out as (N, C, spatial...) and a grid of
// normalized coordinates laid out as (N, out_spatial..., rank), Sample writes
// an output tensor (N, C, out_spatial...) whose every element is the source
// interpolated at the matching grid coordinate.
//
// The behaviour is the product of three orthogonal settings held in Config:
//
//   - InterpolationMode: Nearest or Bilinear (trilinear on 5-D inputs)
//   - PaddingMode: Zeros, Border or Reflection
//   - AlignCorners: whether -1 and 1 address pixel centers or pixel edges
//
// The settings are composed from small pure functions rather than duplicated
// per mode: Unnormalize maps a grid value to pixel space, SourceIndex applies
// the padding policy, and the sampler turns the resolved coordinate into a
// list of weighted taps that is reused for every channel.
//
// Grid coordinates are ordered fastest axis first: (x, y) address (W, H) and
// (x, y, z) address (W, H, D).
//
// # Rounding
//
// Nearest mode rounds half to even (math.RoundToEven), so 0.5 selects index 0
// and 1.5 selects index 2.
package gridsample
