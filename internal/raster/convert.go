package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// FromNRGBA wraps n without copying when its layout is already tight and
// zero-based, otherwise it copies the visible rectangle.
func FromNRGBA(n *image.NRGBA) *Image {
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	if b.Min == (image.Point{}) && n.Stride == w*4 && len(n.Pix) == w*h*4 {
		return &Image{Width: w, Height: h, Pix: n.Pix}
	}
	out := &Image{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
	for y := 0; y < h; y++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*w*4:(y+1)*w*4], n.Pix[si:si+w*4])
	}
	return out
}

// FromImage converts any image to a zero-based non-premultiplied surface.
func FromImage(src image.Image) *Image {
	if n, ok := src.(*image.NRGBA); ok {
		return FromNRGBA(n)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha channel: draw and force opaque
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return FromNRGBA(dst)
}
