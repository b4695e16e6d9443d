package imgio

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"
	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/stats"
)

// Preview renders a Grid as a Gray16 image with a linear stretch between
// the 0.5th and 99.5th percentiles, resized to the requested width.
// width < 1 keeps the native resolution.
func Preview(g *grid.Grid, width int) image.Image {
	lo := stats.Quantile(g.Data, 0.005)
	hi := stats.Quantile(g.Data, 0.995)
	scale := 0.
	if hi > lo {
		scale = 65535 / (hi - lo)
	}
	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x, v := range g.Row(y) {
			p := (v - lo) * scale
			if p < 0 {
				p = 0
			} else if p > 65535 {
				p = 65535
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(p)})
		}
	}
	if width < 1 || width == g.Width {
		return img
	}
	filt := gift.New(gift.Resize(width, 0, gift.LanczosResampling))
	dst := image.NewGray16(filt.Bounds(img.Bounds()))
	filt.Draw(dst, img)
	return dst
}
