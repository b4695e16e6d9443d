package background

import (
	"fmt"

	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/stats"
)

// Mesh computes a spatially varying background map: the grid is tiled into
// BoxSize x BoxSize cells (edge cells may be partial), each cell is reduced
// with Estimator, the cell values are optionally median-filtered, and the
// result is bilinearly upsampled back to full resolution.
type Mesh struct {
	// BoxSize is the cell edge in pixels.
	BoxSize int

	// FilterSize is the median-filter window in cells, centered on each
	// cell with truncation at the mesh edges.  0 and 1 disable filtering;
	// even sizes are rejected.
	FilterSize int

	// Estimator is the per-cell statistic.
	Estimator Estimator

	// ClipLow and ClipHigh sigma-clip each cell's samples before reduction
	// when either is positive.
	ClipLow, ClipHigh float64
}

// Map returns the full-resolution background map of g.  g is not modified.
func (m Mesh) Map(g *grid.Grid) (*grid.Grid, error) {
	if m.BoxSize < 1 {
		return nil, fmt.Errorf("background: box size must be at least 1, got %d", m.BoxSize)
	}
	if m.FilterSize > 1 && m.FilterSize%2 == 0 {
		return nil, fmt.Errorf("background: filter size must be odd, got %d", m.FilterSize)
	}
	if !m.Estimator.valid() {
		return nil, fmt.Errorf("background: unrecognized estimator %d", m.Estimator)
	}
	nx := (g.Width + m.BoxSize - 1) / m.BoxSize
	ny := (g.Height + m.BoxSize - 1) / m.BoxSize
	if nx == 0 || ny == 0 {
		return grid.New(g.Width, g.Height), nil
	}
	cells := m.reduceCells(g, nx, ny)
	if m.FilterSize > 1 {
		cells = filterCells(cells, nx, ny, m.FilterSize)
	}
	return m.upsample(cells, nx, ny, g.Width, g.Height), nil
}

func (m Mesh) reduceCells(g *grid.Grid, nx, ny int) []float64 {
	cells := make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			b := grid.Box{
				Left:   i * m.BoxSize,
				Top:    j * m.BoxSize,
				Right:  (i+1)*m.BoxSize - 1,
				Bottom: (j+1)*m.BoxSize - 1,
			}
			vals := g.Window(b)
			if m.ClipLow > 0 || m.ClipHigh > 0 {
				vals = stats.SigmaClip(vals, m.ClipLow, m.ClipHigh)
			}
			cells[j*nx+i] = m.Estimator.reduce(vals)
		}
	}
	return cells
}

// filterCells runs a median filter over the mesh, truncating the window at
// the edges rather than padding.
func filterCells(cells []float64, nx, ny, size int) []float64 {
	half := size / 2
	out := make([]float64, len(cells))
	win := make([]float64, 0, size*size)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			win = win[:0]
			for wj := j - half; wj <= j+half; wj++ {
				if wj < 0 || wj >= ny {
					continue
				}
				for wi := i - half; wi <= i+half; wi++ {
					if wi < 0 || wi >= nx {
						continue
					}
					win = append(win, cells[wj*nx+wi])
				}
			}
			out[j*nx+i] = stats.Median(win)
		}
	}
	return out
}

// upsample bilinearly interpolates cell values back to pixel resolution.
// Cell centers sit at ((i+0.5)*box - 0.5) in pixel coordinates; pixels
// beyond the first or last center clamp to the edge cell.
func (m Mesh) upsample(cells []float64, nx, ny, w, h int) *grid.Grid {
	out := grid.New(w, h)
	box := float64(m.BoxSize)
	for y := 0; y < h; y++ {
		v := (float64(y)+0.5)/box - 0.5
		j0, fy := splitCell(v, ny)
		j1 := j0 + 1
		if j1 > ny-1 {
			j1 = ny - 1
		}
		for x := 0; x < w; x++ {
			u := (float64(x)+0.5)/box - 0.5
			i0, fx := splitCell(u, nx)
			i1 := i0 + 1
			if i1 > nx-1 {
				i1 = nx - 1
			}
			top := cells[j0*nx+i0] + fx*(cells[j0*nx+i1]-cells[j0*nx+i0])
			bot := cells[j1*nx+i0] + fx*(cells[j1*nx+i1]-cells[j1*nx+i0])
			out.Set(x, y, top+fy*(bot-top))
		}
	}
	return out
}

// splitCell decomposes a continuous cell coordinate into an index and a
// fraction, clamped to the mesh.
func splitCell(u float64, n int) (int, float64) {
	if u <= 0 {
		return 0, 0
	}
	if u >= float64(n-1) {
		return n - 1, 0
	}
	i := int(u)
	return i, u - float64(i)
}
