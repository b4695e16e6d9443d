package aperture

import (
	"errors"
	"fmt"
	"math"

	"github.com/nasa-jpl/apphot/grid"
)

var (
	// ErrNoImage is returned when photometry is invoked without an image.
	ErrNoImage = errors.New("aperture: nil image")

	// ErrMethod is returned for a zero-valued method selector.
	ErrMethod = errors.New("aperture: invalid method")
)

// Result is one photometry row.
type Result struct {
	// X, Y echo the aperture center.
	X, Y float64

	// Sum is the overlap-weighted total of pixel values.  Negative pixel
	// values pass through unclamped.
	Sum float64

	// Err is the quadrature-propagated uncertainty.  It is meaningful only
	// when the owning Table has HasErr set.
	Err float64
}

// Table holds one Result per input aperture, in input order.
type Table struct {
	Rows []Result

	// HasErr records whether an error map was supplied.  When false the
	// error column does not exist: encoders must omit it rather than write
	// zeros.
	HasErr bool
}

// Photometry measures every aperture over img with strategy m, producing one
// row per aperture.  errmap optionally gives the per-pixel standard
// deviation and must match the image extent; passing nil omits the error
// column from the result schema.  Arguments are validated before any
// accumulation begins, and the inputs are never modified.
func Photometry(aps []Aperture, img *grid.Grid, errmap *grid.Grid, m Method) (Table, error) {
	if img == nil {
		return Table{}, ErrNoImage
	}
	if !m.valid() {
		return Table{}, ErrMethod
	}
	if errmap != nil && !img.SameShape(errmap) {
		return Table{}, fmt.Errorf("%w: image %dx%d, error map %dx%d",
			grid.ErrShape, img.Width, img.Height, errmap.Width, errmap.Height)
	}
	t := Table{Rows: make([]Result, len(aps)), HasErr: errmap != nil}
	for i, ap := range aps {
		t.Rows[i] = measure(ap, img, errmap, m)
	}
	return t, nil
}

// One measures a single aperture.  It validates like Photometry.
func One(ap Aperture, img *grid.Grid, errmap *grid.Grid, m Method) (Result, error) {
	t, err := Photometry([]Aperture{ap}, img, errmap, m)
	if err != nil {
		return Result{}, err
	}
	return t.Rows[0], nil
}

// measure accumulates one aperture over its cutout.  An empty cutout
// short-circuits to a zero row without touching any pixel.
func measure(ap Aperture, img, errmap *grid.Grid, m Method) Result {
	x, y := ap.Position()
	res := Result{X: x, Y: y}
	box := Bounds(ap, img.Width, img.Height)
	if box.Empty() {
		return res
	}
	var variance float64
	for py := box.Top; py <= box.Bottom; py++ {
		row := img.Row(py)
		for px := box.Left; px <= box.Right; px++ {
			f := m.Fraction(ap, float64(px), float64(py))
			if f == 0 {
				continue
			}
			res.Sum += f * row[px]
			if errmap != nil {
				e := errmap.At(px, py)
				variance += f * f * e * e
			}
		}
	}
	if errmap != nil {
		res.Err = math.Sqrt(variance)
	}
	return res
}
