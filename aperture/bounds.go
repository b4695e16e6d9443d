package aperture

import (
	"math"

	"github.com/nasa-jpl/apphot/grid"
)

// Bounds returns the inclusive pixel-index box containing every pixel whose
// square can intersect ap, clipped to a w x h grid.  The box is empty when
// the aperture lies entirely outside the grid; callers must not evaluate any
// geometry in that case.
func Bounds(ap Aperture, w, h int) grid.Box {
	x, y := ap.Position()
	ex, ey := ap.Extent()
	b := grid.Box{
		Left:   int(math.Ceil(x - ex - 0.5)),
		Top:    int(math.Ceil(y - ey - 0.5)),
		Right:  int(math.Floor(x + ex + 0.5)),
		Bottom: int(math.Floor(y + ey + 0.5)),
	}
	return b.Clip(w, h)
}
