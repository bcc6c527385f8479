package main

import (
	"context"
	"log"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sfomuseum/go-photo-geomap/app/annotate"
)

func main() {

	ctx := context.Background()

	err := annotate.Run(ctx)

	if err != nil {
		log.Fatalf("Failed to annotate photos, %v", err)
	}
}
