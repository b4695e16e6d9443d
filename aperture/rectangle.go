package aperture

import (
	"fmt"
	"math"

	"github.com/nasa-jpl/apphot/overlap"
)

// Rectangle is a rectangular aperture of full width w and full height h,
// rotated theta radians counterclockwise from the grid.
type Rectangle struct {
	x, y, w, h, theta float64
	cos, sin          float64
}

// NewRectangle returns a rectangular aperture centered at (x, y).
func NewRectangle(x, y, w, h, theta float64) (Rectangle, error) {
	if w < 0 || h < 0 {
		return Rectangle{}, fmt.Errorf("aperture: width and height must be non-negative, got w=%g h=%g", w, h)
	}
	return newRectangle(x, y, w, h, theta), nil
}

func newRectangle(x, y, w, h, theta float64) Rectangle {
	return Rectangle{x: x, y: y, w: w, h: h, theta: theta, cos: math.Cos(theta), sin: math.Sin(theta)}
}

// Position returns the center.
func (r Rectangle) Position() (float64, float64) { return r.x, r.y }

// Extent returns the bounding half-widths of the rotated rectangle.
func (r Rectangle) Extent() (float64, float64) {
	ac, as := math.Abs(r.cos), math.Abs(r.sin)
	return (r.w*ac + r.h*as) / 2, (r.w*as + r.h*ac) / 2
}

// Contains reports whether (x, y) lies strictly inside the rectangle, by
// rotating the point into the rectangle's own axes.
func (r Rectangle) Contains(x, y float64) bool {
	u, v := toFrame(x-r.x, y-r.y, r.cos, r.sin)
	return math.Abs(u) < r.w/2 && math.Abs(v) < r.h/2
}

// PixelOverlap rotates the pixel square into the rectangle's axes and clips
// it against the axis-aligned bounds; rotation preserves the area, so no
// scale-back is needed.
func (r Rectangle) PixelOverlap(px, py float64) float64 {
	if r.w == 0 || r.h == 0 {
		return 0
	}
	dx, dy := px-r.x, py-r.y
	var subject [4]overlap.Point
	for i, c := range [4][2]float64{
		{dx - 0.5, dy - 0.5},
		{dx + 0.5, dy - 0.5},
		{dx + 0.5, dy + 0.5},
		{dx - 0.5, dy + 0.5},
	} {
		u, v := toFrame(c[0], c[1], r.cos, r.sin)
		subject[i] = overlap.Point{X: u, Y: v}
	}
	w2, h2 := r.w/2, r.h/2
	clip := [4]overlap.Point{{X: -w2, Y: -h2}, {X: w2, Y: -h2}, {X: w2, Y: h2}, {X: -w2, Y: h2}}
	return overlap.PolygonArea(overlap.ClipConvex(subject[:], clip[:]))
}

// Area returns w h.
func (r Rectangle) Area() float64 { return r.w * r.h }

// RectangularAnnulus is the region between two concentric, co-rotated
// rectangles.
type RectangularAnnulus struct {
	in, out Rectangle
}

// NewRectangularAnnulus returns a rectangular annulus centered at (x, y).
// Both inner dimensions must be strictly smaller than their outer
// counterparts.
func NewRectangularAnnulus(x, y, win, hin, wout, hout, theta float64) (RectangularAnnulus, error) {
	if win < 0 || hin < 0 {
		return RectangularAnnulus{}, fmt.Errorf("aperture: width and height must be non-negative, got win=%g hin=%g", win, hin)
	}
	if wout <= win || hout <= hin {
		return RectangularAnnulus{}, fmt.Errorf("aperture: outer rectangle must strictly contain inner, got win=%g wout=%g hin=%g hout=%g", win, wout, hin, hout)
	}
	return RectangularAnnulus{
		in:  newRectangle(x, y, win, hin, theta),
		out: newRectangle(x, y, wout, hout, theta),
	}, nil
}

// Position returns the center.
func (a RectangularAnnulus) Position() (float64, float64) { return a.out.Position() }

// Extent returns the outer rectangle's bounding half-widths.
func (a RectangularAnnulus) Extent() (float64, float64) { return a.out.Extent() }

// Contains reports whether (x, y) lies inside the outer rectangle but not
// strictly inside the inner one.
func (a RectangularAnnulus) Contains(x, y float64) bool {
	return a.out.Contains(x, y) && !a.in.Contains(x, y)
}

// PixelOverlap returns the outer overlap minus the inner overlap, clamped at
// zero.
func (a RectangularAnnulus) PixelOverlap(px, py float64) float64 {
	f := a.out.PixelOverlap(px, py) - a.in.PixelOverlap(px, py)
	if f < 0 {
		return 0
	}
	return f
}

// Area returns wout hout - win hin.
func (a RectangularAnnulus) Area() float64 { return a.out.Area() - a.in.Area() }
