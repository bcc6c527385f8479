package gather

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sfomuseum/go-photo-geomap/geo"
	"github.com/sfomuseum/go-photo-geomap/operations/annotate"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

type fixedRenderer struct{}

func (r *fixedRenderer) Render(ctx context.Context, coord *geo.Coordinate, width int, height int, zoom int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// gpsEXIF returns a little-endian TIFF block with GPS tags for
// 34.0507 N, 118.2405 W.
func gpsEXIF() []byte {

	le := binary.LittleEndian

	var buf bytes.Buffer

	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(8))

	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, uint16(0x8825))
	binary.Write(&buf, le, uint16(4))
	binary.Write(&buf, le, uint32(1))
	binary.Write(&buf, le, uint32(26))
	binary.Write(&buf, le, uint32(0))

	binary.Write(&buf, le, uint16(4))

	binary.Write(&buf, le, uint16(0x0001))
	binary.Write(&buf, le, uint16(2))
	binary.Write(&buf, le, uint32(2))
	buf.Write([]byte{'N', 0, 0, 0})

	binary.Write(&buf, le, uint16(0x0002))
	binary.Write(&buf, le, uint16(5))
	binary.Write(&buf, le, uint32(3))
	binary.Write(&buf, le, uint32(80))

	binary.Write(&buf, le, uint16(0x0003))
	binary.Write(&buf, le, uint16(2))
	binary.Write(&buf, le, uint32(2))
	buf.Write([]byte{'W', 0, 0, 0})

	binary.Write(&buf, le, uint16(0x0004))
	binary.Write(&buf, le, uint16(5))
	binary.Write(&buf, le, uint32(3))
	binary.Write(&buf, le, uint32(104))

	binary.Write(&buf, le, uint32(0))

	for _, v := range [][2]uint32{{34, 1}, {3, 1}, {252, 100}, {118, 1}, {14, 1}, {258, 10}} {
		binary.Write(&buf, le, v[0])
		binary.Write(&buf, le, v[1])
	}

	return buf.Bytes()
}

func writeJPEG(t *testing.T, path string, exif_body []byte) {

	im := image.NewRGBA(image.Rect(0, 0, 90, 60))
	draw.Draw(im, im.Bounds(), image.NewUniform(color.RGBA{0xff, 0x00, 0x00, 0xff}), image.Point{}, draw.Src)

	var buf bytes.Buffer

	err := jpeg.Encode(&buf, im, nil)

	if err != nil {
		t.Fatalf("Failed to encode JPEG, %v", err)
	}

	body := buf.Bytes()

	if exif_body != nil {

		payload := append([]byte("Exif\x00\x00"), exif_body...)

		app1 := make([]byte, 0, len(payload)+4)
		app1 = append(app1, 0xFF, 0xE1)
		app1 = append(app1, byte((len(payload)+2)>>8), byte((len(payload)+2)&0xFF))
		app1 = append(app1, payload...)

		spliced := make([]byte, 0, len(body)+len(app1))
		spliced = append(spliced, body[0:2]...)
		spliced = append(spliced, app1...)
		spliced = append(spliced, body[2:]...)

		body = spliced
	}

	err = os.WriteFile(path, body, 0644)

	if err != nil {
		t.Fatalf("Failed to write %s, %v", path, err)
	}
}

func TestGatherPhotos(t *testing.T) {

	ctx := context.Background()

	root := t.TempDir()

	writeJPEG(t, filepath.Join(root, "tagged.jpg"), gpsEXIF())
	writeJPEG(t, filepath.Join(root, "plain.jpg"), nil)

	err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not a photo"), 0644)

	if err != nil {
		t.Fatalf("Failed to write notes.txt, %v", err)
	}

	bucket, err := blob.OpenBucket(ctx, fmt.Sprintf("file://%s", root))

	if err != nil {
		t.Fatalf("Failed to open bucket, %v", err)
	}

	defer bucket.Close()

	mu := new(sync.Mutex)
	gathered := make(map[string]*GatherPhotosResponse)

	cb := func(rsp *GatherPhotosResponse) error {

		mu.Lock()
		defer mu.Unlock()

		gathered[rsp.Path] = rsp
		return nil
	}

	err = GatherPhotos(ctx, bucket, cb)

	if err != nil {
		t.Fatalf("Failed to gather photos, %v", err)
	}

	if len(gathered) != 2 {
		t.Fatalf("Expected 2 photos but gathered %d", len(gathered))
	}

	tagged, ok := gathered["tagged.jpg"]

	if !ok {
		t.Fatalf("Missing response for tagged.jpg")
	}

	if tagged.Coordinate == nil {
		t.Fatalf("Expected a coordinate for tagged.jpg")
	}

	if tagged.Fingerprint == "" {
		t.Fatalf("Expected a fingerprint for tagged.jpg")
	}

	if len(tagged.ImageHashes) != 2 {
		t.Fatalf("Expected 2 image hashes for tagged.jpg but got %d", len(tagged.ImageHashes))
	}

	plain, ok := gathered["plain.jpg"]

	if !ok {
		t.Fatalf("Missing response for plain.jpg")
	}

	if plain.Coordinate != nil {
		t.Fatalf("Expected no coordinate for plain.jpg")
	}
}

func TestGatherPhotosWithAnnotation(t *testing.T) {

	ctx := context.Background()

	root := t.TempDir()

	writeJPEG(t, filepath.Join(root, "tagged.jpg"), gpsEXIF())

	bucket, err := blob.OpenBucket(ctx, fmt.Sprintf("file://%s", root))

	if err != nil {
		t.Fatalf("Failed to open bucket, %v", err)
	}

	defer bucket.Close()

	opts := &GatherPhotosOptions{
		HashPhotos: false,
		Annotate: &annotate.AnnotateOptions{
			Source:   bucket,
			Target:   bucket,
			Renderer: &fixedRenderer{},
		},
	}

	mu := new(sync.Mutex)
	annotated := make([]string, 0)

	opts.Callback = func(rsp *GatherPhotosResponse) error {

		mu.Lock()
		defer mu.Unlock()

		if rsp.AnnotatedPath != "" {
			annotated = append(annotated, rsp.AnnotatedPath)
		}

		return nil
	}

	err = GatherPhotosWithOptions(ctx, bucket, opts)

	if err != nil {
		t.Fatalf("Failed to gather photos, %v", err)
	}

	if len(annotated) != 1 {
		t.Fatalf("Expected 1 annotated photo but got %d", len(annotated))
	}

	if !strings.HasPrefix(annotated[0], "tagged_") || !strings.HasSuffix(annotated[0], "_map.jpg") {
		t.Fatalf("Unexpected annotated path '%s'", annotated[0])
	}

	_, err = os.Stat(filepath.Join(root, annotated[0]))

	if err != nil {
		t.Fatalf("Failed to stat annotated photo, %v", err)
	}
}

func TestMarshalReport(t *testing.T) {

	rsp := &GatherPhotosResponse{
		Path:        "tagged.jpg",
		MimeType:    "image/jpeg",
		Fingerprint: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		Coordinate: &geo.Coordinate{
			Latitude:  34.0507,
			Longitude: -118.2405,
		},
	}

	body, err := rsp.MarshalReport()

	if err != nil {
		t.Fatalf("Failed to marshal report, %v", err)
	}

	tests := map[string]string{
		"media:path":        "tagged.jpg",
		"media:mimetype":    "image/jpeg",
		"media:fingerprint": "da39a3ee5e6b4b0d3255bfef95601890afd80709",
	}

	for path, expected := range tests {

		v := gjson.GetBytes(body, path)

		if !v.Exists() {
			t.Fatalf("Missing %s in report", path)
		}

		if v.String() != expected {
			t.Fatalf("Unexpected value for %s. Expected '%s' but got '%s'", path, expected, v.String())
		}
	}

	lat := gjson.GetBytes(body, "geo:latitude")

	if !lat.Exists() {
		t.Fatalf("Missing geo:latitude in report")
	}

	if lat.Float() != 34.0507 {
		t.Fatalf("Unexpected latitude %0.4f", lat.Float())
	}
}
