// Package imagefile saves decoded textures and lightmap atlases to disk.
package imagefile

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported image format " + e.Ext
}

var formats = map[string]bool{
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

func Supported(ext string) bool {
	return formats[strings.ToLower(ext)]
}

// Encode writes img in the format named by ext.
func Encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return errors.WithStack(&UnsupportedFormatError{Ext: ext})
}

// Save picks the format from the file extension.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if !Supported(ext) {
		return errors.WithStack(&UnsupportedFormatError{Ext: ext})
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	if err := Encode(f, ext, img); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return nil
}
