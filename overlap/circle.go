package overlap

import "math"

// CircleRect returns the area of intersection between the disk of radius r
// centered at the origin and the axis-aligned rectangle [x0,x1] x [y0,y1].
// Degenerate disks and rectangles have zero area.
func CircleRect(x0, y0, x1, y1, r float64) float64 {
	if r <= 0 || x1 <= x0 || y1 <= y0 {
		return 0
	}
	// fold into the first quadrant, splitting rectangles that straddle an
	// axis; the disk is symmetric under reflection so area is preserved
	if x0 < 0 {
		if x1 <= 0 {
			return CircleRect(-x1, y0, -x0, y1, r)
		}
		return CircleRect(x0, y0, 0, y1, r) + CircleRect(0, y0, x1, y1, r)
	}
	if y0 < 0 {
		if y1 <= 0 {
			return CircleRect(x0, -y1, x1, -y0, r)
		}
		return CircleRect(x0, y0, x1, 0, r) + CircleRect(x0, 0, x1, y1, r)
	}
	return circleRectQuadrant(x0, y0, x1, y1, r)
}

// circleRectQuadrant handles 0 <= x0 < x1, 0 <= y0 < y1.  The nearest corner
// of the rectangle to the origin is (x0, y0) and the farthest is (x1, y1),
// so containment tests reduce to those two corners.
func circleRectQuadrant(x0, y0, x1, y1, r float64) float64 {
	rsq := r * r
	if x0*x0+y0*y0 >= rsq {
		return 0
	}
	if x1*x1+y1*y1 <= rsq {
		return (x1 - x0) * (y1 - y0)
	}
	// Partial overlap.  Exactly one arc of the circle crosses the rectangle:
	// it enters through the left or top edge and leaves through the bottom
	// or right edge.  The covered region is a polygon (arc replaced by its
	// chord) plus the circular segment beyond the chord, plus, for a top
	// entry, the fully covered strip left of the crossing.
	var (
		area      float64
		startX    = x0
		px, py    float64
		qx, qy    float64
		rightExit bool
	)
	if yl := floorSqrt(rsq - x0*x0); yl < y1 {
		px, py = x0, yl
	} else {
		dt := floorSqrt(rsq - y1*y1)
		area += (dt - x0) * (y1 - y0)
		startX = dt
		px, py = dt, y1
	}
	if xb := floorSqrt(rsq - y0*y0); xb <= x1 {
		qx, qy = xb, y0
	} else {
		qx, qy = x1, floorSqrt(rsq-x1*x1)
		rightExit = true
	}
	verts := make([]Point, 0, 4)
	verts = append(verts, Point{startX, y0}, Point{px, py}, Point{qx, qy})
	if rightExit {
		verts = append(verts, Point{x1, y0})
	}
	area += PolygonArea(verts)
	area += segment(px, py, qx, qy, r)
	return area
}

// segment returns the area between the chord from (px,py) to (qx,qy) and the
// arc of the radius-r circle through them.  Both points lie on the circle in
// the same quadrant, so the arc spans less than a half turn and the minor
// segment formula applies.
func segment(px, py, qx, qy, r float64) float64 {
	dx, dy := qx-px, qy-py
	chordsq := dx*dx + dy*dy
	if chordsq == 0 {
		return 0
	}
	half := math.Sqrt(chordsq) / (2 * r)
	if half > 1 {
		half = 1
	}
	theta := 2 * math.Asin(half)
	return 0.5 * r * r * (theta - math.Sin(theta))
}
