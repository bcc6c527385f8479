package common

/*

You might be thinking: I know, I'll make a common pool of buckets that all the
codes can use! It's okay, I thought that too. The problem is that if you call
the bucket's Close() method in your code (and you should call it _somewhere_)
then it will stop working (as expected) for all the other code that currently
has an instance of it. It's just not worth the logistics to bother with a pool
of buckets so create them as one-offs, as needed.

*/

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"gocloud.dev/blob"
)

// OpenBucket opens the gocloud.dev/blob bucket identified by uri. Bare
// filesystem paths are rewritten as file:// URIs for convenience.
func OpenBucket(ctx context.Context, uri string) (*blob.Bucket, error) {

	u, err := url.Parse(uri)

	if err != nil || u.Scheme == "" {

		abs_path, err := filepath.Abs(uri)

		if err != nil {
			return nil, fmt.Errorf("Failed to derive absolute path for %s, %w", uri, err)
		}

		uri = fmt.Sprintf("file://%s", abs_path)
	}

	bucket, err := blob.OpenBucket(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open bucket %s, %w", uri, err)
	}

	return bucket, nil
}
