package annotate

// overlay a rendered map, centered on a photo's EXIF GPS coordinate, on
// the bottom-left corner of that photo

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sfomuseum/go-photo-geomap/common"
	"github.com/sfomuseum/go-photo-geomap/geo"
	"github.com/sfomuseum/go-photo-geomap/overlay"
	"github.com/sfomuseum/go-photo-geomap/render"
	"gocloud.dev/blob"
)

// DefaultZoom is the map zoom level used when a request does not
// specify one.
const DefaultZoom int = 10

// DefaultOutputFilename is the output filename used when a request does
// not specify one.
const DefaultOutputFilename string = "output.jpg"

// AnnotateOptions is a struct containing application-specific options
// for annotating photos.
type AnnotateOptions struct {
	// The gocloud.dev/blob.Bucket where source photos are read from.
	Source *blob.Bucket
	// The gocloud.dev/blob.Bucket where annotated photos are written to.
	Target *blob.Bucket
	// The render.Renderer used to draw map insets.
	Renderer render.Renderer
	// The map zoom level applied to requests that do not carry their own.
	Zoom int
	// A boolean flag signaling that annotated photos should not actually be written.
	Dryrun bool
}

// AnnotateRequest is a struct describing a single photo to annotate.
type AnnotateRequest struct {
	// The path of the source photo, relative to the source bucket.
	Path string `json:"path"`
	// The path the annotated photo is written to, relative to the target
	// bucket. An empty path defaults to "output.jpg" next to the source
	// photo; a bare filename is placed next to the source photo.
	OutputPath string `json:"output_path"`
	// An optional map zoom level overriding the operation default.
	Zoom int `json:"zoom,omitempty"`
}

// AnnotateResponse is a struct describing a completed annotation.
type AnnotateResponse struct {
	// The path of the source photo, relative to the source bucket.
	Path string `json:"path"`
	// The path the annotated photo was written to, relative to the target bucket.
	OutputPath string `json:"output_path"`
	// The coordinate derived from the source photo's EXIF GPS tags.
	Coordinate *geo.Coordinate `json:"coordinate"`
	// The pixel width of the annotated photo.
	Width int `json:"width"`
	// The pixel height of the annotated photo.
	Height int `json:"height"`
}

// Annotate processes one or more AnnotateRequest instances in order.
// The first failure stops the run.
func Annotate(ctx context.Context, opts *AnnotateOptions, requests ...*AnnotateRequest) ([]*AnnotateResponse, error) {

	responses := make([]*AnnotateResponse, 0, len(requests))

	for _, req := range requests {

		rsp, err := AnnotatePhoto(ctx, opts, req)

		if err != nil {
			return nil, fmt.Errorf("Failed to annotate %s, %w", req.Path, err)
		}

		responses = append(responses, rsp)
	}

	return responses, nil
}

// AnnotatePhoto derives the coordinate stored in a photo's EXIF GPS
// tags, renders a map inset at one third of the photo's dimensions
// centered on that coordinate, composites the inset over the photo's
// bottom-left corner at 50% opacity and writes the result. Each stage
// failure is terminal and reported with the stage that failed; photos
// without a usable GPS tag set fail with geo.ErrNoLocation.
func AnnotatePhoto(ctx context.Context, opts *AnnotateOptions, req *AnnotateRequest) (*AnnotateResponse, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	logger := slog.Default().With("path", req.Path)

	im, format, err := common.DecodeImage(ctx, opts.Source, req.Path)

	if err != nil {
		return nil, fmt.Errorf("Failed to derive dimensions, %w", err)
	}

	bounds := im.Bounds()

	width := bounds.Dx()
	height := bounds.Dy()

	coord, err := deriveCoordinate(ctx, opts.Source, req.Path)

	if err != nil {
		logger.Debug("Failed to derive geolocation", "error", err)
		return nil, fmt.Errorf("Failed to derive geolocation, %w", err)
	}

	logger = logger.With("coordinate", coord.String())

	zoom := req.Zoom

	if zoom == 0 {
		zoom = opts.Zoom
	}

	if zoom == 0 {
		zoom = DefaultZoom
	}

	map_width := width / 3
	map_height := height / 3

	logger.Debug("Render map inset", "width", map_width, "height", map_height, "zoom", zoom)

	map_im, err := opts.Renderer.Render(ctx, coord, map_width, map_height, zoom)

	if err != nil {
		return nil, fmt.Errorf("Failed to render map, %w", err)
	}

	final := overlay.Composite(im, map_im)

	out_path := deriveOutputPath(req.Path, req.OutputPath)

	if opts.Dryrun {
		logger.Info("Dryrun, skipping write", "output", out_path)
	} else {

		err = common.SaveImage(ctx, opts.Target, out_path, final, format)

		if err != nil {
			return nil, fmt.Errorf("Failed to save annotated photo, %w", err)
		}
	}

	rsp := &AnnotateResponse{
		Path:       req.Path,
		OutputPath: out_path,
		Coordinate: coord,
		Width:      width,
		Height:     height,
	}

	return rsp, nil
}

func deriveCoordinate(ctx context.Context, bucket *blob.Bucket, path string) (*geo.Coordinate, error) {

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	return geo.ExtractCoordinateFromReader(ctx, fh)
}

// deriveOutputPath applies the output defaulting rules: an empty output
// becomes DefaultOutputFilename next to the source photo and a bare
// filename is placed next to the source photo.
func deriveOutputPath(path string, out_path string) string {

	root := filepath.Dir(path)

	if root == "." {
		root = ""
	}

	switch {
	case out_path == "":
		return filepath.Join(root, DefaultOutputFilename)
	case !strings.Contains(out_path, "/"):
		return filepath.Join(root, out_path)
	default:
		return out_path
	}
}
