package raster

import (
	"errors"
	"fmt"
	"image"
)

// MaxPixels bounds any single surface the engine allocates (1 GiB of RGBA).
const MaxPixels = 1 << 28

// ErrResourceUnavailable reports that a pixel surface could not be obtained.
// Callers must abort the current generation when they see it.
var ErrResourceUnavailable = errors.New("raster: pixel surface unavailable")

// Image holds a non-premultiplied RGBA surface as a flat slice for cache locality.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

// NewImage allocates a zeroed (fully transparent) surface.
func NewImage(w, h int) (*Image, error) {
	if err := checkSurface(w, h); err != nil {
		return nil, err
	}
	return &Image{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
	}, nil
}

func checkSurface(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrResourceUnavailable, w, h)
	}
	if h > 0 && w > MaxPixels/h {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrResourceUnavailable, w, h, MaxPixels)
	}
	return nil
}

// Bounds returns the zero-based rectangle covered by the image.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.Width, im.Height)
}

// Empty reports whether the image has no pixels.
func (im *Image) Empty() bool {
	return im == nil || im.Width <= 0 || im.Height <= 0
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (im *Image) PixOffset(x, y int) int {
	return (y*im.Width + x) * 4
}

// NRGBA exposes the surface as an *image.NRGBA sharing the same buffer.
func (im *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    im.Pix,
		Stride: im.Width * 4,
		Rect:   im.Bounds(),
	}
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := &Image{Width: im.Width, Height: im.Height, Pix: make([]uint8, len(im.Pix))}
	copy(out.Pix, im.Pix)
	return out
}

// Fill sets every pixel to the given non-premultiplied color.
func (im *Image) Fill(r, g, b, a uint8) {
	for i := 0; i+3 < len(im.Pix); i += 4 {
		im.Pix[i] = r
		im.Pix[i+1] = g
		im.Pix[i+2] = b
		im.Pix[i+3] = a
	}
}
