//go:build windows

package webgpu

// Workgroup tile for the 2-D sampling shader (x: output column, y: output row).
const (
	tileX = 8
	tileY = 8
)

// gridSample2DShader samples an NCHW float32 input at an (N, H_out, W_out, 2) grid.
// One invocation computes every channel of one output location.
// Output shape: [batch, channels, out_height, out_width].
//
// round() in WGSL rounds half to even, matching the CPU kernel.
const gridSample2DShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read> grid: array<f32>;
@group(0) @binding(2) var<storage, read_write> output: array<f32>;

struct Params {
    batch: u32,
    channels: u32,
    in_height: u32,
    in_width: u32,
    out_height: u32,
    out_width: u32,
    mode: u32,          // 0 = bilinear, 1 = nearest
    padding: u32,       // 0 = zeros, 1 = border, 2 = reflection
    align_corners: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

const INDEX_LIMIT: f32 = 1073741824.0;

fn clip_coordinate(x: f32, size: u32) -> f32 {
    if (!(x > 0.0)) {
        return 0.0;
    }
    return min(x, f32(size - 1u));
}

fn reflect_coordinate(x: f32, twice_low: i32, twice_high: i32) -> f32 {
    if (twice_low == twice_high) {
        return 0.0;
    }
    let lo = f32(twice_low) / 2.0;
    let span = f32(twice_high - twice_low) / 2.0;
    let d = abs(x - lo);
    let flips = floor(d / span);
    let extra = d - flips * span;
    if (flips % 2.0 == 0.0) {
        return extra + lo;
    }
    return span - extra + lo;
}

fn source_index(g: f32, size: u32) -> f32 {
    let s = f32(size);
    var x: f32;
    if (params.align_corners != 0u) {
        x = ((g + 1.0) / 2.0) * (s - 1.0);
    } else {
        x = ((g + 1.0) * s - 1.0) / 2.0;
    }

    if (params.padding == 1u) {
        x = clip_coordinate(x, size);
    } else if (params.padding == 2u) {
        if (params.align_corners != 0u) {
            x = reflect_coordinate(x, 0, 2 * (i32(size) - 1));
        } else {
            x = reflect_coordinate(x, -1, 2 * i32(size) - 1);
        }
        x = clip_coordinate(x, size);
    }
    return x;
}

fn to_index(x: f32) -> i32 {
    return i32(clamp(x, -INDEX_LIMIT, INDEX_LIMIT));
}

fn in_bounds(i: i32, size: u32) -> bool {
    return i >= 0 && i < i32(size);
}

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let ow = global_id.x;
    let oh = global_id.y;
    let n = global_id.z;

    if (n >= params.batch || oh >= params.out_height || ow >= params.out_width) {
        return;
    }

    let g_idx = ((n * params.out_height + oh) * params.out_width + ow) * 2u;
    let x = source_index(grid[g_idx], params.in_width);
    let y = source_index(grid[g_idx + 1u], params.in_height);

    let plane = params.in_height * params.in_width;
    let out_plane = params.out_height * params.out_width;
    let in_base = n * params.channels * plane;
    let out_base = n * params.channels * out_plane + oh * params.out_width + ow;

    if (params.mode == 1u) {
        let ix = to_index(round(x));
        let iy = to_index(round(y));
        let inside = in_bounds(ix, params.in_width) && in_bounds(iy, params.in_height);
        for (var c: u32 = 0u; c < params.channels; c = c + 1u) {
            var v: f32 = 0.0;
            if (inside) {
                v = input[in_base + c * plane + u32(iy) * params.in_width + u32(ix)];
            }
            output[out_base + c * out_plane] = v;
        }
        return;
    }

    let x0 = to_index(floor(x));
    let y0 = to_index(floor(y));
    let x1 = x0 + 1;
    let y1 = y0 + 1;
    let wx1 = x - f32(x0);
    let wy1 = y - f32(y0);
    let wx0 = 1.0 - wx1;
    let wy0 = 1.0 - wy1;

    let x0_in = in_bounds(x0, params.in_width);
    let x1_in = in_bounds(x1, params.in_width);
    let y0_in = in_bounds(y0, params.in_height);
    let y1_in = in_bounds(y1, params.in_height);

    for (var c: u32 = 0u; c < params.channels; c = c + 1u) {
        let base = in_base + c * plane;
        var acc: f32 = 0.0;
        if (x0_in && y0_in) {
            acc = acc + input[base + u32(y0) * params.in_width + u32(x0)] * (wx0 * wy0);
        }
        if (x1_in && y0_in) {
            acc = acc + input[base + u32(y0) * params.in_width + u32(x1)] * (wx1 * wy0);
        }
        if (x0_in && y1_in) {
            acc = acc + input[base + u32(y1) * params.in_width + u32(x0)] * (wx0 * wy1);
        }
        if (x1_in && y1_in) {
            acc = acc + input[base + u32(y1) * params.in_width + u32(x1)] * (wx1 * wy1);
        }
        output[out_base + c * out_plane] = acc;
    }
}
`
