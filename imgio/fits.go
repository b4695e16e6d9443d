package imgio

import (
	"errors"
	"fmt"
	"io"

	"github.com/astrogo/fitsio"
	"github.com/nasa-jpl/apphot/grid"
)

// ErrNoImageHDU is returned by ReadFits when a FITS stream contains no
// two dimensional image HDU.
var ErrNoImageHDU = errors.New("imgio: FITS stream contains no image HDU")

// ReadFits decodes the first 2D (or 3D; plane 0) image HDU of a FITS
// stream into a Grid.  Integer pixel data is rescaled to physical values
// with the BZERO and BSCALE cards when present.
func ReadFits(r io.Reader) (*grid.Grid, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("imgio: open FITS: %w", err)
	}
	defer f.Close()
	for _, hdu := range f.HDUs() {
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		axes := img.Header().Axes()
		if len(axes) < 2 || len(axes) > 3 {
			continue
		}
		return gridFromHDU(img)
	}
	return nil, ErrNoImageHDU
}

// WriteFits streams a Grid to w as a 64-bit float FITS image.  Extra
// metadata cards are appended to the primary header.
func WriteFits(w io.Writer, g *grid.Grid, metadata ...fitsio.Card) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("imgio: create FITS: %w", err)
	}
	defer fits.Close()
	im := fitsio.NewImage(-64, []int{g.Width, g.Height})
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return fmt.Errorf("imgio: write FITS header: %w", err)
	}
	err = im.Write(g.Data)
	if err != nil {
		return fmt.Errorf("imgio: write FITS data: %w", err)
	}
	return fits.Write(im)
}

func gridFromHDU(img fitsio.Image) (*grid.Grid, error) {
	hdr := img.Header()
	axes := hdr.Axes()
	w, h := axes[0], axes[1]
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("imgio: bad FITS axes %v", axes)
	}
	data, err := physicalValues(img)
	if err != nil {
		return nil, err
	}
	if len(data) < w*h {
		return nil, fmt.Errorf("imgio: FITS data has %d values, axes %v require %d", len(data), axes, w*h)
	}
	// planes beyond the first of a cube are dropped
	return grid.FromData(w, h, data[:w*h])
}

// physicalValues reads the pixel block of an image HDU as float64,
// applying BZERO + BSCALE*v.  The stored type follows BITPIX.
func physicalValues(img fitsio.Image) ([]float64, error) {
	hdr := img.Header()
	n := 1
	for _, ax := range hdr.Axes() {
		n *= ax
	}
	var data []float64
	switch bp := hdr.Bitpix(); bp {
	case 8:
		raw := img.Raw()
		if len(raw) < n {
			return nil, fmt.Errorf("imgio: FITS raw block has %d bytes, need %d", len(raw), n)
		}
		data = make([]float64, n)
		for i := range data {
			data[i] = float64(raw[i])
		}
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("imgio: read FITS data: %w", err)
		}
		data = make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("imgio: read FITS data: %w", err)
		}
		data = make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
	case 64:
		raw := make([]int64, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("imgio: read FITS data: %w", err)
		}
		data = make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("imgio: read FITS data: %w", err)
		}
		data = make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
	case -64:
		data = make([]float64, n)
		if err := img.Read(&data); err != nil {
			return nil, fmt.Errorf("imgio: read FITS data: %w", err)
		}
	default:
		return nil, fmt.Errorf("imgio: unsupported BITPIX %d", bp)
	}
	bzero := cardFloat(hdr, "BZERO", 0)
	bscale := cardFloat(hdr, "BSCALE", 1)
	if bzero != 0 || bscale != 1 {
		for i := range data {
			data[i] = bzero + bscale*data[i]
		}
	}
	return data, nil
}

func cardFloat(hdr *fitsio.Header, name string, def float64) float64 {
	card := hdr.Get(name)
	if card == nil {
		return def
	}
	switch v := card.Value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}
