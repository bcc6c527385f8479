package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

// opacity is the fixed blend applied to overlays. 128/255 works out to
// the 50% opacity that map insets are composited at.
const opacity = 128

// Composite returns a new image with base's exact dimensions and ovl
// blended at 50% opacity over its bottom-left corner. The result always
// carries an alpha channel. An overlay taller than the base is cropped
// at the top.
func Composite(base image.Image, ovl image.Image) image.Image {

	base_bounds := base.Bounds()

	im := image.NewRGBA(image.Rect(0, 0, base_bounds.Dx(), base_bounds.Dy()))
	draw.Draw(im, im.Bounds(), base, base_bounds.Min, draw.Src)

	ovl_bounds := ovl.Bounds()

	x := 0
	y := base_bounds.Dy() - ovl_bounds.Dy()

	target := image.Rect(x, y, x+ovl_bounds.Dx(), y+ovl_bounds.Dy())

	// The uniform mask scales the overlay's own alpha channel so the
	// base shows through proportionally

	mask := image.NewUniform(color.Alpha{opacity})

	draw.DrawMask(im, target, ovl, ovl_bounds.Min, mask, image.Point{}, draw.Over)

	return im
}

// Flatten returns an opaque copy of im drawn over a white background,
// for encodings like JPEG that have no alpha channel.
func Flatten(im image.Image) image.Image {

	bounds := im.Bounds()

	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), im, bounds.Min, draw.Over)

	return flat
}
