package annotate

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-photo-geomap/common"
	op_annotate "github.com/sfomuseum/go-photo-geomap/operations/annotate"
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

	r := render.NewStaticRenderer()

	for _, path := range fs.Args() {

		err := annotatePhoto(ctx, r, path)

		if err != nil {
			return fmt.Errorf("Failed to annotate %s, %w", path, err)
		}
	}

	return nil
}

func annotatePhoto(ctx context.Context, r render.Renderer, path string) error {

	photo_source := source_uri
	rel_path := path

	if photo_source == "" {

		abs_path, err := filepath.Abs(path)

		if err != nil {
			return fmt.Errorf("Failed to derive absolute path, %w", err)
		}

		photo_source = filepath.Dir(abs_path)
		rel_path = filepath.Base(abs_path)
	}

	source, err := common.OpenBucket(ctx, photo_source)

	if err != nil {
		return fmt.Errorf("Failed to open source bucket, %w", err)
	}

	defer source.Close()

	target := source

	if target_uri != "" {

		target, err = common.OpenBucket(ctx, target_uri)

		if err != nil {
			return fmt.Errorf("Failed to open target bucket, %w", err)
		}

		defer target.Close()
	}

	opts := &op_annotate.AnnotateOptions{
		Source:   source,
		Target:   target,
		Renderer: r,
		Zoom:     zoom,
		Dryrun:   dryrun,
	}

	req := &op_annotate.AnnotateRequest{
		Path:       rel_path,
		OutputPath: output,
	}

	rsp, err := op_annotate.AnnotatePhoto(ctx, opts, req)

	if err != nil {
		return err
	}

	slog.Info("Annotated photo", "path", path, "coordinate", rsp.Coordinate.String(), "output", rsp.OutputPath)
	return nil
}
