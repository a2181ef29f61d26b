package imageio

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pkcc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImage_Luma(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{B: 255, A: 255})
	src.SetNRGBA(3, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	img := FromImage(src)
	require.Equal(t, 4, img.Width)
	require.Equal(t, 1, img.Height)
	// 255*299/1000, 255*587/1000, 255*114/1000, 255
	assert.Equal(t, []byte{76, 149, 29, 255}, img.Pix)
}

func TestFromImage_GrayIsIdentity(t *testing.T) {
	want := testutil.GradientImage(16, 16)
	got := FromImage(ToImage(want))
	assert.Equal(t, want.Pix, got.Pix)
}

func TestFromImage_OffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(3, 5, 6, 7))
	src.SetGray(3, 5, color.Gray{Y: 10})
	src.SetGray(5, 6, color.Gray{Y: 20})

	img := FromImage(src)
	require.Equal(t, 3, img.Width)
	require.Equal(t, 2, img.Height)
	assert.Equal(t, byte(10), img.At(0, 0))
	assert.Equal(t, byte(20), img.At(2, 1))
}

func TestEncodeDecode_PNG(t *testing.T) {
	want := testutil.NewRNG(5).NoiseImage(13, 9)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want, "png"))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, got.Pix)
}

func TestSaveLoad(t *testing.T) {
	want := testutil.GradientImage(20, 10)
	path := filepath.Join(t.TempDir(), "out.bmp")

	require.NoError(t, Save(want, path, "bmp"))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want.Width, got.Width)
	assert.Equal(t, want.Height, got.Height)
	assert.Equal(t, want.Pix, got.Pix)
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"png", ".png", "PNG", "jpg", "jpeg", "gif", "tif", "bmp", ""} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseFormat("pkcc")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
