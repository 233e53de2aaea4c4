package imageio

import (
	"bytes"
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gridsample/internal/tensor"
)

// levels returns n values that survive an 8-bit round trip exactly.
func levels(n int, step int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32((i*step)%256) / 255
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		format    Format
		channels  int
		withAlpha bool
	}{
		{PNG, 3, false},
		{PNG, 4, true},
		{BMP, 3, false},
		{TIFF, 3, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			data := levels(tt.channels*2*3, 37)
			if tt.withAlpha {
				for i := 2 * 2 * 3; i < len(data); i++ {
					data[i] = float32(128+i) / 255 // keep alpha nonzero
				}
			}
			src, err := tensor.FromFloat32(data, tensor.Shape{1, tt.channels, 2, 3})
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, tt.format))

			got, err := Decode(&buf, tt.withAlpha)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{1, tt.channels, 2, 3}, got.Shape())
			assert.Equal(t, data, got.AsFloat32())
		})
	}
}

func TestGrayExpandsToRGB(t *testing.T) {
	src, err := tensor.FromFloat32([]float32{0, 1, 51.0 / 255, 102.0 / 255}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, src))

	img, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.IsType(t, &image.Gray{}, img)

	got, err := Decode(&buf, false)
	require.NoError(t, err)
	plane := src.AsFloat32()
	want := append(append(append([]float32{}, plane...), plane...), plane...)
	assert.Equal(t, want, got.AsFloat32())
}

func TestToImageClamps(t *testing.T) {
	src, err := tensor.FromFloat64([]float64{-1, math.NaN(), 2, 0.5}, tensor.Shape{1, 1, 1, 4})
	require.NoError(t, err)

	img, err := ToImage(src)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 0, 255, 128}, gray.Pix)
}

func TestToImageErrors(t *testing.T) {
	_, err := ToImage(nil)
	assert.Error(t, err)

	rank3, err := tensor.NewRaw(tensor.Shape{3, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	_, err = ToImage(rank3)
	assert.ErrorContains(t, err, "want shape")

	twoChannels, err := tensor.NewRaw(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	_, err = ToImage(twoChannels)
	assert.ErrorContains(t, err, "2 channels")

	batch, err := tensor.NewRaw(tensor.Shape{2, 3, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	assert.Error(t, EncodePNG(&bytes.Buffer{}, batch))
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.png":   PNG,
		"OUT.JPG":   JPEG,
		"a/b.jpeg":  JPEG,
		"scan.bmp":  BMP,
		"scan.tif":  TIFF,
		"scan.TIFF": TIFF,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("out.webp")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	data := levels(3*4*4, 11)
	src, err := tensor.FromFloat32(data, tensor.Shape{1, 3, 4, 4})
	require.NoError(t, err)

	require.NoError(t, EncodeFile(path, src))
	got, err := DecodeFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, data, got.AsFloat32())

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.png"), false)
	assert.Error(t, err)
	assert.ErrorIs(t, EncodeFile(filepath.Join(t.TempDir(), "out.xyz"), src), ErrFormat)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")), false)
	assert.ErrorContains(t, err, "imageio: decode")
}
