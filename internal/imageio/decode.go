// Package imageio loads source images into raster surfaces and writes
// generated outputs.
package imageio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"shadow-studio/internal/raster"
)

type decoder struct {
	name   string
	match  func(head []byte) bool
	decode func(io.Reader) (image.Image, error)
}

// TGA has no signature, so it is tried last.
var decoders = []decoder{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"gif", prefix("GIF8"), gif.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"webp", func(h []byte) bool {
		return len(h) >= 12 && string(h[:4]) == "RIFF" && string(h[8:12]) == "WEBP"
	}, webp.Decode},
	{"tga", func([]byte) bool { return true }, tga.Decode},
}

func prefix(magic string) func([]byte) bool {
	return func(h []byte) bool { return bytes.HasPrefix(h, []byte(magic)) }
}

// Decode reads one image from r and returns it as a non-premultiplied
// surface, together with the detected format name.
func Decode(r io.Reader) (*raster.Image, string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(12)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("imageio: sniff: %w", err)
	}
	if len(head) == 0 {
		return nil, "", fmt.Errorf("imageio: empty input")
	}

	for _, d := range decoders {
		if !d.match(head) {
			continue
		}
		img, err := d.decode(br)
		if err != nil {
			return nil, d.name, fmt.Errorf("imageio: %s: %w", d.name, err)
		}
		return raster.FromImage(img), d.name, nil
	}
	return nil, "", fmt.Errorf("imageio: unknown format")
}

// Load reads and decodes the image file at path.
func Load(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: read %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return img, nil
}

// LoadDepth reads a depth map from the red channel of the image at path.
func LoadDepth(path string) (*raster.DepthMap, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return raster.DepthFromRed(img), nil
}
