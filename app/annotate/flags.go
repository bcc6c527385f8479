package annotate

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sfomuseum/go-flags/flagset"
)

var source_uri string
var target_uri string

var output string
var zoom int

var dryrun bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("annotate")

	fs.StringVar(&source_uri, "source-uri", "", "An optional gocloud.dev/blob URI where photos are read from. If empty each photo's parent directory is used.")
	fs.StringVar(&target_uri, "target-uri", "", "An optional gocloud.dev/blob URI where annotated photos are written to. If empty the source is used.")

	fs.StringVar(&output, "output", "", "An optional path for the annotated photo. If empty 'output.jpg' next to the source photo is used; a bare filename is placed next to the source photo.")
	fs.IntVar(&zoom, "zoom", 10, "The map zoom level for the rendered inset.")

	fs.BoolVar(&dryrun, "dryrun", false, "Go through the motions but don't write anything.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "annotate is a command-line tool for overlaying maps of their GPS coordinates on one or more photos.\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] photo(N) photo(N)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
