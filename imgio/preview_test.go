package imgio_test

import (
	"image/color"
	"testing"

	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/imgio"
)

func TestPreviewStretch(t *testing.T) {
	g := grid.New(10, 10)
	for i := range g.Data {
		g.Data[i] = float64(i)
	}
	img := imgio.Preview(g, 0)
	b := img.Bounds()
	if b.Dx() != 10 || b.Dy() != 10 {
		t.Fatalf("expected 10x10 preview, got %dx%d", b.Dx(), b.Dy())
	}
	if got := img.At(0, 0); got != (color.Gray16{Y: 0}) {
		t.Errorf("darkest pixel: expected 0 got %v", got)
	}
	if got := img.At(9, 9); got != (color.Gray16{Y: 65535}) {
		t.Errorf("brightest pixel: expected 65535 got %v", got)
	}
	mid := img.At(5, 5).(color.Gray16).Y
	if mid == 0 || mid == 65535 {
		t.Errorf("middle pixel should sit inside the stretch, got %d", mid)
	}
}

func TestPreviewConstant(t *testing.T) {
	g := grid.Uniform(6, 6, 42)
	img := imgio.Preview(g, 0)
	if got := img.At(3, 3); got != (color.Gray16{Y: 0}) {
		t.Errorf("constant image: expected 0 got %v", got)
	}
}

func TestPreviewResize(t *testing.T) {
	g := grid.New(64, 48)
	img := imgio.Preview(g, 32)
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("expected 32x24 preview, got %dx%d", b.Dx(), b.Dy())
	}
}
