package imaging

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

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessReencodesAsJPEG(t *testing.T) {
	p, err := Process(makePNG(t, 200, 100))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", p.MimeType)
	assert.Equal(t, 200, p.Width)
	assert.Equal(t, 100, p.Height)

	img, err := jpeg.Decode(bytes.NewReader(p.Main))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	p, err := Process(makePNG(t, 2160, 1080))
	require.NoError(t, err)

	assert.Equal(t, 1080, p.Width)
	assert.Equal(t, 540, p.Height)

	thumb, err := jpeg.Decode(bytes.NewReader(p.Thumb))
	require.NoError(t, err)
	assert.Equal(t, 360, thumb.Bounds().Dx())
	assert.Equal(t, 180, thumb.Bounds().Dy())
}

func TestProcessNeverUpscales(t *testing.T) {
	p, err := Process(makePNG(t, 50, 40))
	require.NoError(t, err)
	assert.Equal(t, 50, p.Width)
	assert.Equal(t, 40, p.Height)
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process([]byte("definitely not an image, just plain text bytes"))
	assert.Error(t, err)
}

func TestProcessRejectsEmpty(t *testing.T) {
	_, err := Process(nil)
	assert.Error(t, err)
}
