package geo

import (
	"fmt"
)

// Rational is a single EXIF-style rational number (numerator over
// denominator). GPS magnitudes are stored as triples of these.
type Rational struct {
	Num int64
	Den int64
}

// Float returns the quotient of r. A denominator of 0 is treated as 1
// rather than triggering a division fault. Cameras have been observed
// writing 0 denominators in the wild.
func (r Rational) Float() float64 {

	den := r.Den

	if den == 0 {
		den = 1
	}

	return float64(r.Num) / float64(den)
}

// DecimalDegrees converts a degrees/minutes/seconds triple in to a single
// non-negative decimal degree magnitude. The sign for the relevant
// hemisphere is expected to be applied by the caller.
func DecimalDegrees(d Rational, m Rational, s Rational) float64 {
	return d.Float() + (m.Float() / 60.0) + (s.Float() / 3600.0)
}

// Coordinate is a latitude, longitude pair in decimal degrees. Latitudes
// are in the range -90 to 90 and longitudes -180 to 180. Instances are
// treated as immutable once derived.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String returns c as a comma-separated "latitude,longitude" string.
func (c *Coordinate) String() string {
	return fmt.Sprintf("%0.6f,%0.6f", c.Latitude, c.Longitude)
}
