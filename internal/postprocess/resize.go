package postprocess

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"shadow-studio/internal/raster"
)

// Resize scales img to w×h with premultiplied-alpha-aware CatmullRom filtering.
// This prevents dark halo artifacts at transparent cut-out edges.
func Resize(img *raster.Image, w, h int) (*raster.Image, error) {
	out, err := raster.NewImage(w, h)
	if err != nil {
		return nil, fmt.Errorf("postprocess: resize: %w", err)
	}
	if img.Empty() || out.Empty() {
		return out, nil
	}
	if img.Width == w && img.Height == h {
		return img.Clone(), nil
	}

	// Premultiply alpha
	src := img.NRGBA()
	premul := image.NewRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		a := float64(src.Pix[i+3]) / 255.0
		premul.Pix[i] = uint8(float64(src.Pix[i])*a + 0.5)
		premul.Pix[i+1] = uint8(float64(src.Pix[i+1])*a + 0.5)
		premul.Pix[i+2] = uint8(float64(src.Pix[i+2])*a + 0.5)
		premul.Pix[i+3] = src.Pix[i+3]
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply alpha
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			out.Pix[i] = clamp8(float64(dst.Pix[i]) * inv)
			out.Pix[i+1] = clamp8(float64(dst.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp8(float64(dst.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = dst.Pix[i+3]
	}
	return out, nil
}

// Scale resizes img by factor, keeping at least one pixel per side.
func Scale(img *raster.Image, factor float64) (*raster.Image, error) {
	if factor <= 0 || factor == 1 {
		return img.Clone(), nil
	}
	w := max(int(float64(img.Width)*factor+0.5), 1)
	h := max(int(float64(img.Height)*factor+0.5), 1)
	return Resize(img, w, h)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
