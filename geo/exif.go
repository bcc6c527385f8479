package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrNoLocation is returned when an image carries no usable GPS tag set.
// All four GPS tags (latitude and longitude magnitudes and their
// hemisphere references) must be present; there are no partial results.
var ErrNoLocation = errors.New("No location")

var register_parsers = new(sync.Once)

// ExtractCoordinate opens the image at path and returns the Coordinate
// stored in its EXIF GPS tags. Missing or incomplete GPS tags are
// signaled with ErrNoLocation; anything else is a read or decode failure.
func ExtractCoordinate(ctx context.Context, path string) (*Coordinate, error) {

	fh, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	return ExtractCoordinateFromReader(ctx, fh)
}

// ExtractCoordinateFromReader returns the Coordinate stored in the EXIF
// GPS tags of the image data read from r.
func ExtractCoordinateFromReader(ctx context.Context, r io.Reader) (*Coordinate, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	register_parsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	x, err := exif.Decode(r)

	if err != nil {
		// Images without an EXIF block land here alongside corrupt
		// ones. Neither carries a usable location so both map to the
		// sentinel, with the parse failure kept as a diagnostic.
		slog.Debug("Failed to decode EXIF data", "error", err)
		return nil, ErrNoLocation
	}

	lat_tag, err := x.Get(exif.GPSLatitude)

	if err != nil {
		return nil, ErrNoLocation
	}

	lat_ref_tag, err := x.Get(exif.GPSLatitudeRef)

	if err != nil {
		return nil, ErrNoLocation
	}

	lon_tag, err := x.Get(exif.GPSLongitude)

	if err != nil {
		return nil, ErrNoLocation
	}

	lon_ref_tag, err := x.Get(exif.GPSLongitudeRef)

	if err != nil {
		return nil, ErrNoLocation
	}

	lat, err := tagToDegrees(lat_tag)

	if err != nil {
		return nil, ErrNoLocation
	}

	lon, err := tagToDegrees(lon_tag)

	if err != nil {
		return nil, ErrNoLocation
	}

	lat_ref, err := lat_ref_tag.StringVal()

	if err != nil {
		return nil, ErrNoLocation
	}

	lon_ref, err := lon_ref_tag.StringVal()

	if err != nil {
		return nil, ErrNoLocation
	}

	// Anything other than a leading 'N' or 'E' flips the sign,
	// malformed reference bytes included. Cameras are known to emit
	// those and consumers treat them as the opposite hemisphere.

	if len(lat_ref) == 0 || lat_ref[0] != 'N' {
		lat = -lat
	}

	if len(lon_ref) == 0 || lon_ref[0] != 'E' {
		lon = -lon
	}

	c := &Coordinate{
		Latitude:  lat,
		Longitude: lon,
	}

	return c, nil
}

func tagToDegrees(tag *tiff.Tag) (float64, error) {

	if tag.Count != 3 {
		return 0, fmt.Errorf("Expected 3 rational values, got %d", tag.Count)
	}

	triple := make([]Rational, 3)

	for i := 0; i < 3; i++ {

		num, den, err := tag.Rat2(i)

		if err != nil {
			return 0, fmt.Errorf("Failed to read rational value at offset %d, %w", i, err)
		}

		triple[i] = Rational{
			Num: num,
			Den: den,
		}
	}

	return DecimalDegrees(triple[0], triple[1], triple[2]), nil
}
