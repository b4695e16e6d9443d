package aperture

import (
	"fmt"
	"math"

	"github.com/nasa-jpl/apphot/overlap"
)

// Ellipse is an elliptical aperture with semi-axes a (along the rotated x
// axis) and b, rotated theta radians counterclockwise from the grid.
type Ellipse struct {
	x, y, a, b, theta float64
	cos, sin          float64
}

// NewEllipse returns an elliptical aperture centered at (x, y).
func NewEllipse(x, y, a, b, theta float64) (Ellipse, error) {
	if a < 0 || b < 0 {
		return Ellipse{}, fmt.Errorf("aperture: semi-axes must be non-negative, got a=%g b=%g", a, b)
	}
	return newEllipse(x, y, a, b, theta), nil
}

func newEllipse(x, y, a, b, theta float64) Ellipse {
	return Ellipse{x: x, y: y, a: a, b: b, theta: theta, cos: math.Cos(theta), sin: math.Sin(theta)}
}

// Position returns the center.
func (e Ellipse) Position() (float64, float64) { return e.x, e.y }

// Extent returns the bounding half-widths of the rotated ellipse.
func (e Ellipse) Extent() (float64, float64) {
	ex := math.Hypot(e.a*e.cos, e.b*e.sin)
	ey := math.Hypot(e.a*e.sin, e.b*e.cos)
	return ex, ey
}

// Contains reports whether (x, y) lies strictly inside the ellipse.  The
// point is mapped into the frame where the ellipse is the unit circle.
func (e Ellipse) Contains(x, y float64) bool {
	if e.a == 0 || e.b == 0 {
		return false
	}
	u, v := toFrame(x-e.x, y-e.y, e.cos, e.sin)
	u /= e.a
	v /= e.b
	return u*u+v*v < 1
}

// PixelOverlap maps the pixel square into the circularized frame, where it
// becomes a parallelogram, intersects with the unit disk, and scales the
// area back by a*b (the inverse Jacobian of the map).
func (e Ellipse) PixelOverlap(px, py float64) float64 {
	if e.a == 0 || e.b == 0 {
		return 0
	}
	dx, dy := px-e.x, py-e.y
	var verts [4]overlap.Point
	for i, c := range [4][2]float64{
		{dx - 0.5, dy - 0.5},
		{dx + 0.5, dy - 0.5},
		{dx + 0.5, dy + 0.5},
		{dx - 0.5, dy + 0.5},
	} {
		u, v := toFrame(c[0], c[1], e.cos, e.sin)
		verts[i] = overlap.Point{X: u / e.a, Y: v / e.b}
	}
	return overlap.UnitDiskPolygon(verts[:]) * e.a * e.b
}

// Area returns pi a b.
func (e Ellipse) Area() float64 { return math.Pi * e.a * e.b }

// EllipticalAnnulus is the region between two concentric, co-rotated
// ellipses.
type EllipticalAnnulus struct {
	in, out Ellipse
}

// NewEllipticalAnnulus returns an elliptical annulus centered at (x, y).
// Both inner semi-axes must be strictly smaller than their outer
// counterparts.
func NewEllipticalAnnulus(x, y, ain, bin, aout, bout, theta float64) (EllipticalAnnulus, error) {
	if ain < 0 || bin < 0 {
		return EllipticalAnnulus{}, fmt.Errorf("aperture: semi-axes must be non-negative, got ain=%g bin=%g", ain, bin)
	}
	if aout <= ain || bout <= bin {
		return EllipticalAnnulus{}, fmt.Errorf("aperture: outer ellipse must strictly contain inner, got ain=%g aout=%g bin=%g bout=%g", ain, aout, bin, bout)
	}
	return EllipticalAnnulus{
		in:  newEllipse(x, y, ain, bin, theta),
		out: newEllipse(x, y, aout, bout, theta),
	}, nil
}

// Position returns the center.
func (a EllipticalAnnulus) Position() (float64, float64) { return a.out.Position() }

// Extent returns the outer ellipse's bounding half-widths.
func (a EllipticalAnnulus) Extent() (float64, float64) { return a.out.Extent() }

// Contains reports whether (x, y) lies inside the outer ellipse but not
// strictly inside the inner one.
func (a EllipticalAnnulus) Contains(x, y float64) bool {
	return a.out.Contains(x, y) && !a.in.Contains(x, y)
}

// PixelOverlap returns the outer overlap minus the inner overlap, clamped at
// zero.
func (a EllipticalAnnulus) PixelOverlap(px, py float64) float64 {
	f := a.out.PixelOverlap(px, py) - a.in.PixelOverlap(px, py)
	if f < 0 {
		return 0
	}
	return f
}

// Area returns pi (aout bout - ain bin).
func (a EllipticalAnnulus) Area() float64 { return a.out.Area() - a.in.Area() }
