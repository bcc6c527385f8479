package main

import (
	"context"
	"log"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sfomuseum/go-photo-geomap/app/gather"
)

func main() {

	ctx := context.Background()

	err := gather.Run(ctx)

	if err != nil {
		log.Fatalf("Failed to gather photos, %v", err)
	}
}
