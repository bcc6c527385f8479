package common

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/aaronland/go-image-tools/util"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sfomuseum/go-photo-geomap/overlay"
	"gocloud.dev/blob"
)

// DecodeImage reads and decodes the image stored at path in a
// blob.Bucket instance, returning the image and its format label.
func DecodeImage(ctx context.Context, bucket *blob.Bucket, path string) (image.Image, string, error) {

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return nil, "", fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	im, format, err := util.DecodeImageFromReader(fh)

	if err != nil {
		return nil, "", fmt.Errorf("Failed to decode image from %s, %w", path, err)
	}

	return im, format, nil
}

// SaveImage encodes im and writes it to path in a blob.Bucket instance.
// The encoding is chosen from path's extension, falling back to format
// (a label as returned by DecodeImage) when the extension is unknown.
// JPEG output is flattened to an opaque image first since the format has
// no alpha channel. Writes to S3 buckets are assigned a public-read ACL.
func SaveImage(ctx context.Context, bucket *blob.Bucket, path string, im image.Image, format string) error {

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".png":
		format = "png"
	case ".gif":
		format = "gif"
	default:
		// pass
	}

	if format == "jpeg" {
		im = overlay.Flatten(im)
	}

	before := func(asFunc func(interface{}) bool) error {

		s3_req := &s3manager.UploadInput{}
		ok := asFunc(&s3_req)

		if ok {
			s3_req.ACL = aws.String("public-read")
		}

		return nil
	}

	wr_opts := &blob.WriterOptions{
		BeforeWrite: before,
	}

	wr, err := bucket.NewWriter(ctx, path, wr_opts)

	if err != nil {
		return fmt.Errorf("Failed to open %s for writing, %w", path, err)
	}

	err = util.EncodeImage(im, format, wr)

	if err != nil {
		wr.Close()
		return fmt.Errorf("Failed to encode image for %s, %w", path, err)
	}

	err = wr.Close()

	if err != nil {
		return fmt.Errorf("Failed to close %s after writing, %w", path, err)
	}

	return nil
}
