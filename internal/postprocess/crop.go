package postprocess

import (
	"image"

	"shadow-studio/internal/raster"
)

// AlphaBounds returns the bounding box of pixels with non-zero alpha, or an
// empty rectangle when the image is fully transparent.
func AlphaBounds(img *raster.Image) image.Rectangle {
	w, h := img.Width, img.Height
	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := img.Pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Trim crops img to its non-transparent pixels and returns the crop
// rectangle in img's coordinates. Fully transparent images are returned
// unchanged with their full bounds.
func Trim(img *raster.Image) (*raster.Image, image.Rectangle) {
	r := AlphaBounds(img)
	if r.Empty() || r == img.Bounds() {
		return img, img.Bounds()
	}

	cropW, cropH := r.Dx(), r.Dy()
	cropped := &raster.Image{Width: cropW, Height: cropH, Pix: make([]uint8, cropW*cropH*4)}
	for y := 0; y < cropH; y++ {
		srcOff := img.PixOffset(r.Min.X, r.Min.Y+y)
		dstOff := y * cropW * 4
		copy(cropped.Pix[dstOff:dstOff+cropW*4], img.Pix[srcOff:srcOff+cropW*4])
	}
	return cropped, r
}

// FlipHorizontal mirrors img left to right.
func FlipHorizontal(img *raster.Image) *raster.Image {
	w, h := img.Width, img.Height
	out := &raster.Image{Width: w, Height: h, Pix: make([]uint8, len(img.Pix))}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := img.PixOffset(x, y)
			di := out.PixOffset(w-1-x, y)
			copy(out.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return out
}
