// Package imageio converts between image files and 8-bit grayscale buffers.
//
// Decoding goes through github.com/disintegration/imaging, which covers
// JPEG, PNG, GIF, TIFF and BMP; WebP input is registered from
// golang.org/x/image.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/hupe1980/pkcc/model"
)

// DefaultFormat is the output format used when none is given.
const DefaultFormat = "png"

// ErrUnsupportedFormat is returned for an output format imaging cannot write.
var ErrUnsupportedFormat = errors.New("imageio: unsupported format")

// Load reads an image file and converts it to grayscale.
func Load(path string) (*model.GrayscaleImage, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imageio: load %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Decode reads an encoded image from r and converts it to grayscale.
func Decode(r io.Reader) (*model.GrayscaleImage, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts img to grayscale with integer luma
// (299r + 587g + 114b) / 1000 on 8-bit, non-premultiplied channels.
// Alpha is ignored.
func FromImage(img image.Image) *model.GrayscaleImage {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	out := model.NewBlankImage(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < out.Width; x++ {
			p := row[x*4 : x*4+3]
			r, g, bl := int(p[0]), int(p[1]), int(p[2])
			out.Pix[y*out.Width+x] = byte((r*299 + g*587 + bl*114) / 1000)
		}
	}
	return out
}

// ToImage wraps img as an *image.Gray without copying.
func ToImage(img *model.GrayscaleImage) *image.Gray {
	return &image.Gray{
		Pix:    img.Pix,
		Stride: img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// ParseFormat maps a format name or file extension such as "png" or
// ".jpg" to an imaging format.
func ParseFormat(name string) (imaging.Format, error) {
	if name == "" {
		name = DefaultFormat
	}
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	f, err := imaging.FormatFromExtension(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, strings.TrimPrefix(name, "."))
	}
	return f, nil
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img *model.GrayscaleImage, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, ToImage(img), f); err != nil {
		return fmt.Errorf("imageio: encode %s: %w", f, err)
	}
	return nil
}

// Save writes img to path in the named format.
func Save(img *model.GrayscaleImage, path, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: save: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("imageio: save: %w", cerr)
		}
	}()
	return Encode(f, img, format)
}
