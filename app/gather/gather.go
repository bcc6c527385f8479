package gather

import (
	"context"
	"flag"
	"fmt"

	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-photo-geomap/common"
	op_annotate "github.com/sfomuseum/go-photo-geomap/operations/annotate"
	op_gather "github.com/sfomuseum/go-photo-geomap/operations/gather"
	"github.com/sfomuseum/go-photo-geomap/render"
)

func Run(ctx context.Context) error {
	fs := DefaultFlagSet(ctx)
	return RunWithFlagSet(ctx, fs)
}

func RunWithFlagSet(ctx context.Context, fs *flag.FlagSet) error {

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "GEOMAP")

	if err != nil {
		return fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	for _, uri := range fs.Args() {

		err := gatherBucket(ctx, uri)

		if err != nil {
			return fmt.Errorf("Failed to gather %s, %w", uri, err)
		}
	}

	return nil
}

func gatherBucket(ctx context.Context, uri string) error {

	bucket, err := common.OpenBucket(ctx, uri)

	if err != nil {
		return fmt.Errorf("Failed to open bucket, %w", err)
	}

	defer bucket.Close()

	cb := func(rsp *op_gather.GatherPhotosResponse) error {

		if !reports {
			return nil
		}

		body, err := rsp.MarshalReport()

		if err != nil {
			return fmt.Errorf("Failed to marshal report for %s, %w", rsp.Path, err)
		}

		fmt.Println(string(body))
		return nil
	}

	opts := &op_gather.GatherPhotosOptions{
		Callback:   cb,
		HashPhotos: hash_photos,
	}

	if annotate_photos {

		target := bucket

		if target_uri != "" {

			target, err = common.OpenBucket(ctx, target_uri)

			if err != nil {
				return fmt.Errorf("Failed to open target bucket, %w", err)
			}

			defer target.Close()
		}

		opts.Annotate = &op_annotate.AnnotateOptions{
			Source:   bucket,
			Target:   target,
			Renderer: render.NewStaticRenderer(),
			Zoom:     zoom,
		}
	}

	return op_gather.GatherPhotosWithOptions(ctx, bucket, opts)
}
