/*Package aperture implements aperture photometry over float64 pixel grids.

An Aperture is an immutable geometric region (circle, ellipse, rectangle, or
an annulus of one of those) anchored at a continuous pixel position.
Photometry reduces the overlap between apertures and pixels into one flux row
per aperture, using one of three interchangeable overlap strategies: exact
analytic geometry, pixel-center sampling, or deterministic subpixel sampling.

Pixel (i, j) is centered at continuous coordinates (i, j) and spans the unit
square [i-0.5, i+0.5) x [j-0.5, j+0.5).  Point-inclusion tests are strict:
a point exactly on a shape boundary is outside, and annuli count their inner
boundary as inside (outer minus inner).

Everything here is purely functional over its inputs; all calls are safe for
concurrent use on shared, read-only grids.
*/
package aperture

// Aperture is a fixed region over the pixel grid.  Implementations are
// immutable values constructed by the New* functions, which validate their
// parameters; zero-size shapes are legal and measure zero flux.
type Aperture interface {
	// Position returns the center in continuous pixel coordinates.
	Position() (x, y float64)

	// Extent returns the half-widths along x and y of the smallest
	// axis-aligned box enclosing the aperture (the outer boundary, for
	// annuli).
	Extent() (ex, ey float64)

	// Contains reports whether the point lies strictly inside the aperture.
	Contains(x, y float64) bool

	// PixelOverlap returns the exact intersection area between the aperture
	// and the unit pixel centered at (px, py), in [0, 1].
	PixelOverlap(px, py float64) float64

	// Area returns the analytic area of the aperture.
	Area() float64
}

// toFrame rotates (dx, dy) by -theta, mapping grid offsets into the frame of
// a shape whose axes are rotated +theta from the grid.  cos and sin are of
// theta.
func toFrame(dx, dy, cos, sin float64) (u, v float64) {
	return dx*cos + dy*sin, -dx*sin + dy*cos
}
