/*Package overlap implements exact intersection-area kernels between pixel
squares and aperture boundaries.

The kernels are plain functions over float64 coordinates with no aperture
types and no state.  Three cover all shapes used by photometry:

	CircleRect      disk x axis-aligned rectangle, by quadrant folding and
	                circular-segment decomposition
	UnitDiskPolygon unit disk x simple polygon, by Green's theorem; ellipses
	                reduce to this after their circularizing affine map
	ClipConvex      convex polygon x convex polygon, by Sutherland-Hodgman,
	                with PolygonArea for the shoelace area

All areas are unsigned.  Callers divide by the pixel area (1) to obtain
overlap fractions.
*/
package overlap

import "math"

// floorSqrt is sqrt clamped at zero, guarding small negative residue from
// float subtraction.
func floorSqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}
