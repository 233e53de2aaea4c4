// Package imageio converts between encoded images and NCHW float tensors.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // decoder only

	"github.com/born-ml/gridsample/internal/tensor"
)

// ErrFormat reports an unknown output format.
var ErrFormat = errors.New("imageio: unsupported format")

// Format is an output encoding.
type Format string

// Output encodings.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
}

// Decode reads an image into a (1, C, H, W) float32 tensor with values in
// [0, 1]. C is 4 when withAlpha is set and 3 otherwise. Color channels are
// not premultiplied.
func Decode(r io.Reader, withAlpha bool) (*tensor.RawTensor, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}

	nrgba := toNRGBA(img)
	b := nrgba.Bounds()
	h, w := b.Dy(), b.Dx()
	c := 3
	if withAlpha {
		c = 4
	}

	t, err := tensor.NewRaw(tensor.Shape{1, c, h, w}, tensor.Float32, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("imageio: %w", err)
	}
	data := t.AsFloat32()
	plane := h * w
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			px := row[4*x : 4*x+4]
			for ch := 0; ch < c; ch++ {
				data[ch*plane+y*w+x] = float32(px[ch]) / 255
			}
		}
	}
	return t, nil
}

// DecodeFile decodes the image at path.
func DecodeFile(path string, withAlpha bool) (*tensor.RawTensor, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-supplied input image
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, withAlpha)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToImage converts a (1, C, H, W) tensor with C in {1, 3, 4} to an image.
// Values are clamped to [0, 1]; NaN becomes 0.
func ToImage(t *tensor.RawTensor) (image.Image, error) {
	if t == nil {
		return nil, errors.New("imageio: nil tensor")
	}
	shape := t.Shape()
	if len(shape) != 4 || shape[0] != 1 {
		return nil, fmt.Errorf("imageio: want shape (1, C, H, W), got %v", shape)
	}
	c, h, w := shape[1], shape[2], shape[3]
	if c != 1 && c != 3 && c != 4 {
		return nil, fmt.Errorf("imageio: %d channels, want 1, 3 or 4", c)
	}

	if t.DType() != tensor.Float32 {
		cast, err := tensor.Cast(t, tensor.Float32)
		if err != nil {
			return nil, fmt.Errorf("imageio: %w", err)
		}
		t = cast
	}
	data := t.AsFloat32()
	plane := h * w

	if c == 1 {
		img := image.NewGray(image.Rect(0, 0, w, h))
		for i := 0; i < plane; i++ {
			img.Pix[(i/w)*img.Stride+i%w] = toByte(data[i])
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			a := uint8(255)
			if c == 4 {
				a = toByte(data[3*plane+i])
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(data[i]),
				G: toByte(data[plane+i]),
				B: toByte(data[2*plane+i]),
				A: a,
			})
		}
	}
	return img, nil
}

func toByte(v float32) uint8 {
	if !(v > 0) { // NaN and negatives
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// Encode writes t in the given format.
func Encode(w io.Writer, t *tensor.RawTensor, format Format) error {
	img, err := ToImage(t)
	if err != nil {
		return err
	}

	switch format {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return fmt.Errorf("imageio: encode %s: %w", format, err)
	}
	return nil
}

// EncodePNG writes t as PNG.
func EncodePNG(w io.Writer, t *tensor.RawTensor) error {
	return Encode(w, t, PNG)
}

// EncodeFile writes t to path, choosing the format from the extension.
func EncodeFile(path string, t *tensor.RawTensor) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // G304: user-supplied output path
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, t, format)
}
