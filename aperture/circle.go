package aperture

import (
	"fmt"
	"math"

	"github.com/nasa-jpl/apphot/overlap"
)

// Circle is a circular aperture of radius r.
type Circle struct {
	x, y, r float64
}

// NewCircle returns a circular aperture centered at (x, y).
func NewCircle(x, y, r float64) (Circle, error) {
	if r < 0 {
		return Circle{}, fmt.Errorf("aperture: radius must be non-negative, got %g", r)
	}
	return Circle{x: x, y: y, r: r}, nil
}

// Position returns the center.
func (c Circle) Position() (float64, float64) { return c.x, c.y }

// Extent returns the bounding half-widths, r along both axes.
func (c Circle) Extent() (float64, float64) { return c.r, c.r }

// Radius returns r.
func (c Circle) Radius() float64 { return c.r }

// Contains reports whether (x, y) lies strictly inside the circle.
func (c Circle) Contains(x, y float64) bool {
	dx, dy := x-c.x, y-c.y
	return dx*dx+dy*dy < c.r*c.r
}

// PixelOverlap returns the exact area shared with the unit pixel at (px, py).
func (c Circle) PixelOverlap(px, py float64) float64 {
	dx, dy := px-c.x, py-c.y
	return overlap.CircleRect(dx-0.5, dy-0.5, dx+0.5, dy+0.5, c.r)
}

// Area returns pi r^2.
func (c Circle) Area() float64 { return math.Pi * c.r * c.r }

// CircularAnnulus is the region between two concentric circles.
type CircularAnnulus struct {
	in, out Circle
}

// NewCircularAnnulus returns an annular aperture centered at (x, y).  The
// inner boundary must be strictly inside the outer one.
func NewCircularAnnulus(x, y, rin, rout float64) (CircularAnnulus, error) {
	if rin < 0 {
		return CircularAnnulus{}, fmt.Errorf("aperture: inner radius must be non-negative, got %g", rin)
	}
	if rout <= rin {
		return CircularAnnulus{}, fmt.Errorf("aperture: outer radius must exceed inner, got rin=%g rout=%g", rin, rout)
	}
	return CircularAnnulus{
		in:  Circle{x: x, y: y, r: rin},
		out: Circle{x: x, y: y, r: rout},
	}, nil
}

// Position returns the center.
func (a CircularAnnulus) Position() (float64, float64) { return a.out.Position() }

// Extent returns the outer circle's bounding half-widths.
func (a CircularAnnulus) Extent() (float64, float64) { return a.out.Extent() }

// Contains reports whether (x, y) lies inside the outer circle but not
// strictly inside the inner one.
func (a CircularAnnulus) Contains(x, y float64) bool {
	return a.out.Contains(x, y) && !a.in.Contains(x, y)
}

// PixelOverlap returns the outer overlap minus the inner overlap, clamped at
// zero against floating-point residue.
func (a CircularAnnulus) PixelOverlap(px, py float64) float64 {
	f := a.out.PixelOverlap(px, py) - a.in.PixelOverlap(px, py)
	if f < 0 {
		return 0
	}
	return f
}

// Area returns pi (rout^2 - rin^2).
func (a CircularAnnulus) Area() float64 { return a.out.Area() - a.in.Area() }
