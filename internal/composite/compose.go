// Package composite assembles the background, shadow layer and foreground
// into the final image.
package composite

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"shadow-studio/internal/raster"
)

// Compose draws bg, multiplies the shadow layer over it at shadowAlpha, then
// draws fg at pos with source-over. The result has bg's dimensions. fg may be
// nil.
func Compose(bg, shadow, fg *raster.Image, pos image.Point, shadowAlpha float64) (*raster.Image, error) {
	out, err := raster.NewImage(bg.Width, bg.Height)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	if out.Empty() {
		return out, nil
	}

	work := image.NewRGBA(bg.Bounds())
	draw.Draw(work, work.Bounds(), bg.NRGBA(), image.Point{}, draw.Src)

	if shadow != nil {
		MultiplyOver(work, shadow, shadowAlpha)
	}

	if !fg.Empty() {
		draw.Draw(work, fg.Bounds().Add(pos), fg.NRGBA(), image.Point{}, draw.Over)
	}

	unpremultiply(out, work)
	return out, nil
}

// Blit copies src into dst at pos, replacing dst pixels and clipping to dst.
func Blit(dst, src *raster.Image, pos image.Point) {
	r := src.Bounds().Add(pos).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X-pos.X, y-pos.Y)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}

func unpremultiply(dst *raster.Image, src *image.RGBA) {
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		a := src.Pix[i+3]
		dst.Pix[i+3] = a
		switch a {
		case 0:
		case 255:
			dst.Pix[i] = src.Pix[i]
			dst.Pix[i+1] = src.Pix[i+1]
			dst.Pix[i+2] = src.Pix[i+2]
		default:
			inv := 255.0 / float64(a)
			dst.Pix[i] = clamp8(float64(src.Pix[i]) * inv)
			dst.Pix[i+1] = clamp8(float64(src.Pix[i+1]) * inv)
			dst.Pix[i+2] = clamp8(float64(src.Pix[i+2]) * inv)
		}
	}
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
