package common

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"

	"gocloud.dev/blob"
)

// FingerprintPhoto generates a SHA-1 hash of a photo stored in a
// blob.Bucket instance. Fingerprints are recorded in gather reports so
// renamed copies of the same photo can be spotted later.
func FingerprintPhoto(ctx context.Context, bucket *blob.Bucket, path string) (string, error) {

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return "", fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	return fingerprint(fh)
}

func fingerprint(r io.Reader) (string, error) {

	h := sha1.New()

	_, err := io.Copy(h, r)

	if err != nil {
		return "", fmt.Errorf("Failed to hash body, %w", err)
	}

	hash := h.Sum(nil)
	return hex.EncodeToString(hash[:]), nil
}
