package overlap

import "math"

// Point is a location in the continuous pixel plane.
type Point struct {
	X, Y float64
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the z component of the cross product of p and q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// PolygonArea returns the unsigned area of the simple polygon traced by
// verts, by the shoelace formula.  Fewer than three vertices bound no area.
func PolygonArea(verts []Point) float64 {
	if len(verts) < 3 {
		return 0
	}
	var s float64
	j := len(verts) - 1
	for i := range verts {
		s += verts[j].Cross(verts[i])
		j = i
	}
	return math.Abs(s) / 2
}

// ClipConvex returns the intersection of two convex polygons, both wound
// counterclockwise, by Sutherland-Hodgman clipping of subject against each
// edge of clip.  The result is empty when the polygons do not intersect.
func ClipConvex(subject, clip []Point) []Point {
	out := append([]Point(nil), subject...)
	n := len(clip)
	for i := 0; i < n && len(out) > 0; i++ {
		out = clipEdge(out, clip[i], clip[(i+1)%n])
	}
	return out
}

// clipEdge keeps the part of poly on or left of the directed line a->b.
func clipEdge(poly []Point, a, b Point) []Point {
	var out []Point
	n := len(poly)
	for i := 0; i < n; i++ {
		cur := poly[i]
		prev := poly[(i+n-1)%n]
		curIn := side(a, b, cur) >= 0
		prevIn := side(a, b, prev) >= 0
		switch {
		case curIn && prevIn:
			out = append(out, cur)
		case curIn:
			out = append(out, lineCross(prev, cur, a, b), cur)
		case prevIn:
			out = append(out, lineCross(prev, cur, a, b))
		}
	}
	return out
}

// side is positive when p lies left of the directed line a->b.
func side(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// lineCross returns the intersection of segment p-q with the line a->b.
// Callers guarantee p and q lie on opposite sides, so the denominator is
// nonzero.
func lineCross(p, q, a, b Point) Point {
	d1 := side(a, b, p)
	d2 := side(a, b, q)
	t := d1 / (d1 - d2)
	return Point{p.X + t*(q.X-p.X), p.Y + t*(q.Y-p.Y)}
}

// UnitDiskPolygon returns the area of intersection between the unit disk
// centered at the origin and a simple polygon.  Each directed edge
// contributes the signed area swept between the origin and the edge, with
// runs of the edge outside the disk replaced by circular sectors; summing
// around the polygon leaves exactly the intersection, so the winding
// direction only sets the sign.
func UnitDiskPolygon(verts []Point) float64 {
	if len(verts) < 3 {
		return 0
	}
	var total float64
	j := len(verts) - 1
	for i := range verts {
		total += diskEdge(verts[j], verts[i])
		j = i
	}
	return math.Abs(total)
}

// diskEdge returns the signed area bounded by the origin and the directed
// edge a->b, clipped to the unit disk.
func diskEdge(a, b Point) float64 {
	d := Point{b.X - a.X, b.Y - a.Y}
	lensq := d.Dot(d)
	if lensq == 0 {
		return 0
	}
	// |a + t*d|^2 = 1 gives the chord interval [t0, t1] of the edge line
	bq := a.Dot(d)
	c := a.Dot(a) - 1
	disc := bq*bq - lensq*c
	if disc <= 0 {
		// line misses the disk: the whole edge sweeps a sector
		return sector(a, b)
	}
	root := math.Sqrt(disc)
	t0 := (-bq - root) / lensq
	t1 := (-bq + root) / lensq
	if t1 <= 0 || t0 >= 1 {
		// chord lies beyond the segment ends
		return sector(a, b)
	}
	if t0 < 0 {
		t0 = 0
	}
	if t1 > 1 {
		t1 = 1
	}
	p := Point{a.X + t0*d.X, a.Y + t0*d.Y}
	q := Point{a.X + t1*d.X, a.Y + t1*d.Y}
	return sector(a, p) + p.Cross(q)/2 + sector(q, b)
}

// sector returns the signed area of the unit-circle sector swept from the
// direction of p to the direction of q, the short way around.  A polygon
// edge never subtends a half turn or more from an off-edge origin, so the
// short way is the right way.
func sector(p, q Point) float64 {
	return 0.5 * math.Atan2(p.Cross(q), p.Dot(q))
}
