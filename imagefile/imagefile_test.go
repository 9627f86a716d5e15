package imagefile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func checker() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestEncodeRoundTrip(t *testing.T) {
	decoders := map[string]func(*bytes.Reader) (image.Image, error){
		".png":  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		".BMP":  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		".tiff": func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}
	for ext, decode := range decoders {
		t.Run(ext, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, ext, checker()))
			img, err := decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
			r, g, b, _ := img.At(1, 0).RGBA()
			assert.Equal(t, []uint32{0, 0, 0xffff}, []uint32{r, g, b})
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	require.NoError(t, Save(path, checker()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestSaveUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.jpg")
	err := Save(path, checker())

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".jpg", unsupported.Ext)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
