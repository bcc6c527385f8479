package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func solidImage(w int, h int, c color.Color) image.Image {

	im := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(im, im.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	return im
}

func TestCompositeDimensions(t *testing.T) {

	base := solidImage(100, 80, color.Black)
	ovl := solidImage(40, 30, color.White)

	im := Composite(base, ovl)

	bounds := im.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Fatalf("Unexpected dimensions, expected 100x80 but got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if _, ok := im.(*image.RGBA); !ok {
		t.Fatalf("Expected an image with an alpha channel, got %T", im)
	}
}

func TestCompositeBlend(t *testing.T) {

	base := solidImage(100, 80, color.Black)
	ovl := solidImage(40, 30, color.White)

	im := Composite(base, ovl)

	// An opaque white overlay on an opaque black base blends to mid-gray
	// at 50% opacity (integer rounding lands on 127-128)

	r, g, b, a := im.At(5, 75).RGBA()

	for label, v := range map[string]uint32{"red": r >> 8, "green": g >> 8, "blue": b >> 8} {

		if v < 126 || v > 129 {
			t.Fatalf("Unexpected %s channel in overlay region, expected 127-128 but got %d", label, v)
		}
	}

	if a>>8 != 255 {
		t.Fatalf("Expected an opaque result over an opaque base, got alpha %d", a>>8)
	}

	// Outside the overlay region the base is untouched

	r, g, b, _ = im.At(50, 5).RGBA()

	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("Expected an untouched base pixel outside the overlay region, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestCompositePlacement(t *testing.T) {

	base := solidImage(100, 80, color.Black)
	ovl := solidImage(40, 30, color.White)

	im := Composite(base, ovl)

	// The overlay is flush with the bottom-left corner: rows above
	// (80 - 30) are untouched, rows below are blended

	r, _, _, _ := im.At(5, 49).RGBA()

	if r != 0 {
		t.Fatalf("Expected an untouched pixel above the overlay region, got red %d", r>>8)
	}

	r, _, _, _ = im.At(5, 50).RGBA()

	if r>>8 < 126 {
		t.Fatalf("Expected a blended pixel inside the overlay region, got red %d", r>>8)
	}
}

func TestCompositeOverlayTallerThanBase(t *testing.T) {

	base := solidImage(100, 80, color.Black)
	ovl := solidImage(40, 200, color.White)

	im := Composite(base, ovl)

	bounds := im.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Fatalf("Unexpected dimensions, expected 100x80 but got %dx%d", bounds.Dx(), bounds.Dy())
	}

	// The top of the overlay is cropped and the remainder blended

	r, _, _, _ := im.At(5, 0).RGBA()

	if r>>8 < 126 {
		t.Fatalf("Expected a blended pixel at the top of the base, got red %d", r>>8)
	}
}

func TestFlatten(t *testing.T) {

	im := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(im, im.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 128}), image.Point{}, draw.Src)

	flat := Flatten(im)

	_, _, _, a := flat.At(5, 5).RGBA()

	if a>>8 != 255 {
		t.Fatalf("Expected an opaque pixel after flattening, got alpha %d", a>>8)
	}
}
