package gather

// crawl a bucket of photos, derive their GPS coordinates and annotate
// the ones that have them

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aaronland/go-string/random"
	"github.com/sfomuseum/go-photo-geomap/common"
	"github.com/sfomuseum/go-photo-geomap/geo"
	"github.com/sfomuseum/go-photo-geomap/operations/annotate"
	"github.com/tidwall/sjson"
	"gocloud.dev/blob"
)

// GatherPhotosResponse is a struct describing a single photo found while
// crawling a bucket.
type GatherPhotosResponse struct {
	// The path of the photo, relative to the bucket it was gathered from.
	Path string
	// The SHA-1 fingerprint of the photo.
	Fingerprint string
	// The mimetype of the photo, derived from its extension.
	MimeType string
	// The coordinate stored in the photo's EXIF GPS tags; nil when absent.
	Coordinate *geo.Coordinate
	// Perceptual hashes of the photo.
	ImageHashes []*common.ImageHashRsp
	// The path the annotated copy was written to; empty when no
	// annotation happened.
	AnnotatedPath string
}

// GatherPhotoCallbackFunc is a function invoked for each gathered photo.
type GatherPhotoCallbackFunc func(*GatherPhotosResponse) error

// GatherPhotosOptions is a struct containing application-specific
// options for gathering photos.
type GatherPhotosOptions struct {
	// The callback invoked for each gathered photo.
	Callback GatherPhotoCallbackFunc
	// A boolean flag signaling that perceptual hashes should be derived.
	HashPhotos bool
	// Optional annotation options. When present every gathered photo
	// that carries a coordinate is annotated.
	Annotate *annotate.AnnotateOptions
}

// GatherPhotos iterates through all the photos stored in a blob.Bucket
// instance and invokes cb for each one.
func GatherPhotos(ctx context.Context, bucket *blob.Bucket, cb GatherPhotoCallbackFunc) error {

	opts := &GatherPhotosOptions{
		Callback:   cb,
		HashPhotos: true,
	}

	return GatherPhotosWithOptions(ctx, bucket, opts)
}

func GatherPhotosWithOptions(ctx context.Context, bucket *blob.Bucket, opts *GatherPhotosOptions) error {

	gather_ch := make(chan *GatherPhotosResponse)

	done_ch := make(chan bool)
	err_ch := make(chan error)

	go func() {

		err := CrawlPhotos(ctx, bucket, opts, gather_ch)

		if err != nil {
			err_ch <- err
		}

		done_ch <- true
	}()

	gathering := true
	wg := new(sync.WaitGroup)

	for {
		select {

		case <-done_ch:
			gathering = false
		case err := <-err_ch:
			return err
		case gather_rsp := <-gather_ch:

			wg.Add(1)

			go func(rsp *GatherPhotosResponse) {

				defer wg.Done()

				err := opts.Callback(rsp)

				if err != nil {
					slog.Error("Failed to process photo", "path", rsp.Path, "error", err)
				}

			}(gather_rsp)

		}

		if !gathering {
			break
		}
	}

	wg.Wait()
	return nil
}

// CrawlPhotos iterates through all the items stored in a blob.Bucket
// instance, generates a GatherPhotosResponse for things that are photos
// and dispatches each response to a user-defined channel.
func CrawlPhotos(ctx context.Context, bucket *blob.Bucket, opts *GatherPhotosOptions, rsp_ch chan *GatherPhotosResponse) error {

	var list func(context.Context, *blob.Bucket, string) error

	list = func(ctx context.Context, b *blob.Bucket, prefix string) error {

		iter := b.List(&blob.ListOptions{
			Delimiter: "/",
			Prefix:    prefix,
		})

		for {

			select {
			case <-ctx.Done():
				return nil
			default:
				// pass
			}

			obj, err := iter.Next(ctx)

			if err == io.EOF {
				break
			}

			if err != nil {
				return err
			}

			if obj.IsDir {

				err := list(ctx, b, obj.Key)

				if err != nil {
					return err
				}

				continue
			}

			rsp, err := GatherPhotoResponseWithPath(ctx, bucket, opts, obj.Key)

			if err != nil {
				return err
			}

			if rsp == nil {
				continue
			}

			rsp_ch <- rsp
		}

		return nil
	}

	return list(ctx, bucket, "")
}

// GatherPhotoResponseWithPath generates a GatherPhotosResponse for the
// photo stored at path, or nil when path is not a photo.
func GatherPhotoResponseWithPath(ctx context.Context, bucket *blob.Bucket, opts *GatherPhotosOptions, path string) (*GatherPhotosResponse, error) {

	ext := filepath.Ext(path)

	t := mime.TypeByExtension(ext)

	if t == "" {
		return nil, nil
	}

	if !strings.HasPrefix(t, "image/") {
		return nil, nil
	}

	fp, err := common.FingerprintPhoto(ctx, bucket, path)

	if err != nil {
		return nil, err
	}

	rsp := &GatherPhotosResponse{
		Path:        path,
		MimeType:    t,
		Fingerprint: fp,
	}

	if opts.HashPhotos {

		hashes, err := common.ImageHashes(ctx, bucket, path)

		if err != nil {
			return nil, err
		}

		rsp.ImageHashes = hashes
	}

	coord, err := deriveCoordinate(ctx, bucket, path)

	if err != nil && !errors.Is(err, geo.ErrNoLocation) {
		return nil, err
	}

	if coord == nil {
		slog.Debug("No usable GPS tag set, skipping annotation", "path", path)
		return rsp, nil
	}

	rsp.Coordinate = coord

	if opts.Annotate != nil {

		out_path, err := annotatedPath(path)

		if err != nil {
			return nil, err
		}

		req := &annotate.AnnotateRequest{
			Path:       path,
			OutputPath: out_path,
		}

		_, err = annotate.AnnotatePhoto(ctx, opts.Annotate, req)

		if err != nil {
			return nil, fmt.Errorf("Failed to annotate %s, %w", path, err)
		}

		rsp.AnnotatedPath = out_path
	}

	return rsp, nil
}

// MarshalReport returns rsp as a JSON report body.
func (rsp *GatherPhotosResponse) MarshalReport() ([]byte, error) {

	var err error

	body := []byte("{}")

	assignments := map[string]interface{}{
		"media:path":        rsp.Path,
		"media:mimetype":    rsp.MimeType,
		"media:fingerprint": rsp.Fingerprint,
	}

	if rsp.Coordinate != nil {
		assignments["geo:latitude"] = rsp.Coordinate.Latitude
		assignments["geo:longitude"] = rsp.Coordinate.Longitude
	}

	if rsp.AnnotatedPath != "" {
		assignments["media:annotated_path"] = rsp.AnnotatedPath
	}

	for _, h := range rsp.ImageHashes {
		k := fmt.Sprintf("media:imagehash_%s", h.Approach)
		assignments[k] = h.Hash
	}

	for path, v := range assignments {

		body, err = sjson.SetBytes(body, path, v)

		if err != nil {
			return nil, fmt.Errorf("Failed to assign %s, %w", path, err)
		}
	}

	return body, nil
}

func deriveCoordinate(ctx context.Context, bucket *blob.Bucket, path string) (*geo.Coordinate, error) {

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	return geo.ExtractCoordinateFromReader(ctx, fh)
}

// annotatedPath derives an output path with a random secret so repeat
// runs never clobber earlier annotations.
func annotatedPath(path string) (string, error) {

	rand_opts := random.DefaultOptions()
	rand_opts.AlphaNumeric = true

	secret, err := random.String(rand_opts)

	if err != nil {
		return "", fmt.Errorf("Failed to generate secret for %s, %w", path, err)
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	return fmt.Sprintf("%s_%s_map%s", base, secret, ext), nil
}
