package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "Failed to encode test PNG")
	return buf.Bytes()
}

func TestConvertPngToJpeg(t *testing.T) {
	w := 32
	h := 32
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}

	jpegBytes, err := ConvertPngToJpeg(encodePNG(t, img), 90)
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(jpegBytes))
	require.NoError(t, err, "Output is not valid JPEG")
	assert.Equal(t, w, out.Bounds().Dx())
	assert.Equal(t, h, out.Bounds().Dy())
}

func TestConvertPngToJpeg_TransparentBecomesWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	jpegBytes, err := ConvertPngToJpeg(encodePNG(t, img), 100)
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	r, g, b, _ := out.At(4, 4).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestConvertPngToJpeg_InvalidInput(t *testing.T) {
	_, err := ConvertPngToJpeg([]byte("not a png"), 80)
	assert.ErrorContains(t, err, "decode png")
}

func TestClampQuality(t *testing.T) {
	assert.Equal(t, 1, ClampQuality(0))
	assert.Equal(t, 1, ClampQuality(-5))
	assert.Equal(t, 75, ClampQuality(75))
	assert.Equal(t, 100, ClampQuality(250))
}
