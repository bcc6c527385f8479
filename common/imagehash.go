package common

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/corona10/goimagehash"
	"gocloud.dev/blob"
)

// ImageHashRsp is a struct representing the results of an image hashing operation.
type ImageHashRsp struct {
	// String label describing the image hashing procedure used.
	Approach string
	// The hexidecimal hash of an image.
	Hash string
}

// ImageHashes generates a list of ImageHashRsp instances for a photo
// stored in a blob.Bucket instance using the corona10/goimagehash package.
func ImageHashes(ctx context.Context, bucket *blob.Bucket, path string) ([]*ImageHashRsp, error) {

	r, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for %s, %w", path, err)
	}

	defer r.Close()

	im, _, err := image.Decode(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode image from %s, %w", path, err)
	}

	return ImageHashesWithImage(ctx, im)
}

// ImageHashesWithImage generates a list of ImageHashRsp instances for an
// image that has already been decoded.
func ImageHashesWithImage(ctx context.Context, im image.Image) ([]*ImageHashRsp, error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	approaches := []string{
		"avg",
		"diff",
	}

	done_ch := make(chan bool)
	err_ch := make(chan error)
	rsp_ch := make(chan *ImageHashRsp)

	for _, a := range approaches {

		go func(ctx context.Context, im image.Image, a string) {

			defer func() {
				done_ch <- true
			}()

			rsp, err := imageHash(ctx, im, a)

			if err != nil {
				err_ch <- err
				return
			}

			rsp_ch <- rsp

		}(ctx, im, a)

	}

	remaining := len(approaches)
	hashes := make([]*ImageHashRsp, 0)

	for remaining > 0 {

		select {

		case <-done_ch:
			remaining -= 1
		case err := <-err_ch:
			slog.Error("Image hash channel received error", "error", err)
		case rsp := <-rsp_ch:
			hashes = append(hashes, rsp)
		}
	}

	return hashes, nil
}

func imageHash(ctx context.Context, im image.Image, approach string) (*ImageHashRsp, error) {

	select {
	case <-ctx.Done():
		return nil, nil
	default:
		// pass
	}

	var h *goimagehash.ImageHash
	var err error

	switch approach {
	case "avg":
		h, err = goimagehash.AverageHash(im)
	case "diff":
		h, err = goimagehash.DifferenceHash(im)
	default:
		err = errors.New("Unknown approach")
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to process image hash approach '%s', %w", approach, err)
	}

	rsp := &ImageHashRsp{
		Approach: approach,
		Hash:     h.ToString(),
	}

	return rsp, nil
}
