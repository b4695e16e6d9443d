// Package imgio loads and stores images for photometry.  FITS is the
// native format; PNG, JPEG, and TIFF rasters are converted to 16-bit
// luminance on load.
package imgio

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/nasa-jpl/apphot/grid"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// ReadFile loads an image from disk.  Files with a .fits, .fit, or .fts
// extension are decoded as FITS; anything else goes through image.Decode.
func ReadFile(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		return ReadFits(f)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imgio: decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage converts a raster image to a Grid of 16-bit luminance values.
func FromImage(img image.Image) *grid.Grid {
	b := img.Bounds()
	g := grid.New(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			g.Data[i] = float64(c.Y)
			i++
		}
	}
	return g
}
