package gather

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sfomuseum/go-flags/flagset"
)

var annotate_photos bool
var target_uri string
var zoom int

var hash_photos bool
var reports bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("gather")

	fs.BoolVar(&annotate_photos, "annotate", false, "Annotate every gathered photo that carries a GPS coordinate.")
	fs.StringVar(&target_uri, "target-uri", "", "An optional gocloud.dev/blob URI where annotated photos are written to. If empty the bucket being gathered is used.")
	fs.IntVar(&zoom, "zoom", 10, "The map zoom level for rendered insets.")

	fs.BoolVar(&hash_photos, "hash", true, "Derive perceptual hashes for gathered photos.")
	fs.BoolVar(&reports, "reports", true, "Emit a JSON report for each gathered photo to STDOUT.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "gather is a command-line tool for crawling one or more buckets of photos, reporting on their GPS coordinates and optionally annotating them.\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] bucket-uri(N) bucket-uri(N)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
