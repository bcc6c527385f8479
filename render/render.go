package render

import (
	"context"
	"fmt"
	"image"
	"image/color"

	sm "github.com/flopp/go-staticmaps"
	"github.com/golang/geo/s2"
	"github.com/sfomuseum/go-photo-geomap/geo"
)

// Renderer is an interface for rendering a map image of a fixed pixel
// size, centered on a coordinate and drawn with a marker at that
// coordinate.
type Renderer interface {
	// Render returns a map image of exactly (width, height) pixels
	// centered on a coordinate at a given zoom level.
	Render(context.Context, *geo.Coordinate, int, int, int) (image.Image, error)
}

// StaticRenderer is a Renderer that draws slippy-map tiles using the
// flopp/go-staticmaps package. Tile fetching and caching are handled
// entirely by that package.
type StaticRenderer struct {
	// The colour of the marker drawn at the center coordinate.
	MarkerColor color.Color
	// The size of the marker drawn at the center coordinate, in pixels.
	MarkerSize float64
}

// NewStaticRenderer returns a StaticRenderer with a red 16px marker.
func NewStaticRenderer() *StaticRenderer {

	r := &StaticRenderer{
		MarkerColor: color.RGBA{0xff, 0x00, 0x00, 0xff},
		MarkerSize:  16.0,
	}

	return r
}

// Render returns a (width, height) map image centered on coord at zoom.
func (r *StaticRenderer) Render(ctx context.Context, coord *geo.Coordinate, width int, height int, zoom int) (image.Image, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Invalid map dimensions %dx%d", width, height)
	}

	if zoom < 0 {
		return nil, fmt.Errorf("Invalid zoom level %d", zoom)
	}

	center := s2.LatLngFromDegrees(coord.Latitude, coord.Longitude)

	map_ctx := sm.NewContext()
	map_ctx.SetSize(width, height)
	map_ctx.SetZoom(zoom)
	map_ctx.SetCenter(center)

	marker := sm.NewMarker(center, r.MarkerColor, r.MarkerSize)
	map_ctx.AddObject(marker)

	im, err := map_ctx.Render()

	if err != nil {
		return nil, fmt.Errorf("Failed to render map for %v, %w", coord, err)
	}

	return im, nil
}
