// Package grid provides the dense 2D float64 raster shared by the photometry
// engine and its collaborators, and the integer pixel window used for cutouts.
package grid

import (
	"errors"
	"fmt"
)

// ErrShape is returned when two grids that must share an extent do not.
var ErrShape = errors.New("grid: extent mismatch")

// Grid is a row-major raster of float64 samples.  Pixel (x, y) is stored at
// Data[y*Width+x].  Pixel (x, y) is centered at continuous coordinates
// (float64(x), float64(y)) and spans the unit square [x-0.5, x+0.5) x
// [y-0.5, y+0.5).
type Grid struct {
	// Width and Height are the extent in pixels.
	Width, Height int

	// Data holds the samples, row-major, length Width*Height.
	Data []float64
}

// New returns a zero-filled grid of the given extent.
func New(w, h int) *Grid {
	return &Grid{Width: w, Height: h, Data: make([]float64, w*h)}
}

// FromData wraps an existing row-major buffer without copying it.
func FromData(w, h int, data []float64) (*Grid, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("grid: extent must be non-negative, got %dx%d", w, h)
	}
	if len(data) != w*h {
		return nil, fmt.Errorf("grid: buffer holds %d samples, extent %dx%d needs %d", len(data), w, h, w*h)
	}
	return &Grid{Width: w, Height: h, Data: data}, nil
}

// Uniform returns a grid of the given extent with every sample set to v.
func Uniform(w, h int, v float64) *Grid {
	g := New(w, h)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// At returns the sample at pixel (x, y).  No bounds check is performed.
func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// Set writes the sample at pixel (x, y).  No bounds check is performed.
func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// Row returns the samples of row y as a subslice of Data, not a copy.
func (g *Grid) Row(y int) []float64 {
	return g.Data[y*g.Width : (y+1)*g.Width]
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := New(g.Width, g.Height)
	copy(c.Data, g.Data)
	return c
}

// SameShape reports whether o has the same extent as g.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height
}

// Sub returns g minus o, sample-wise, as a new grid.  The inputs are not
// modified.  Returns ErrShape if the extents differ.
func (g *Grid) Sub(o *Grid) (*Grid, error) {
	if !g.SameShape(o) {
		return nil, ErrShape
	}
	c := New(g.Width, g.Height)
	for i, v := range g.Data {
		c.Data[i] = v - o.Data[i]
	}
	return c, nil
}

// SubScalar returns g minus v as a new grid.  g is not modified.
func (g *Grid) SubScalar(v float64) *Grid {
	c := New(g.Width, g.Height)
	for i, s := range g.Data {
		c.Data[i] = s - v
	}
	return c
}

// Window copies the samples inside b into a fresh slice, row by row.  b is
// clipped to the grid extent first; an empty intersection yields an empty
// slice.
func (g *Grid) Window(b Box) []float64 {
	b = b.Clip(g.Width, g.Height)
	if b.Empty() {
		return nil
	}
	out := make([]float64, 0, b.NumPixels())
	for y := b.Top; y <= b.Bottom; y++ {
		out = append(out, g.Data[y*g.Width+b.Left:y*g.Width+b.Right+1]...)
	}
	return out
}

// Box is an inclusive pixel-index window: pixels (x, y) with
// Left <= x <= Right and Top <= y <= Bottom.
type Box struct {
	Left, Top, Right, Bottom int
}

// Empty reports whether the box contains no pixels.
func (b Box) Empty() bool {
	return b.Right < b.Left || b.Bottom < b.Top
}

// NumX returns the pixel count along x, 0 for an empty box.
func (b Box) NumX() int {
	if b.Empty() {
		return 0
	}
	return b.Right - b.Left + 1
}

// NumY returns the pixel count along y, 0 for an empty box.
func (b Box) NumY() int {
	if b.Empty() {
		return 0
	}
	return b.Bottom - b.Top + 1
}

// NumPixels returns the number of pixels in the box.
func (b Box) NumPixels() int {
	return b.NumX() * b.NumY()
}

// Clip returns b intersected with the grid extent [0,w) x [0,h).
func (b Box) Clip(w, h int) Box {
	if b.Left < 0 {
		b.Left = 0
	}
	if b.Top < 0 {
		b.Top = 0
	}
	if b.Right > w-1 {
		b.Right = w - 1
	}
	if b.Bottom > h-1 {
		b.Bottom = h - 1
	}
	return b
}
