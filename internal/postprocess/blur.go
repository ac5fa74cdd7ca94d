package postprocess

import (
	"image"

	"github.com/disintegration/gift"
)

// GaussianAlpha blurs a w×h single-channel alpha buffer with the given sigma.
// A non-positive sigma returns a copy. Sigma is capped at the larger buffer
// dimension so the kernel stays proportional to the image.
func GaussianAlpha(alpha []uint8, w, h int, sigma float64) []uint8 {
	out := make([]uint8, len(alpha))
	if !(sigma > 0) || w == 0 || h == 0 {
		copy(out, alpha)
		return out
	}
	sigma = min(sigma, float64(max(w, h)))

	src := &image.Gray{Pix: alpha, Stride: w, Rect: image.Rect(0, 0, w, h)}
	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	copy(out, dst.Pix)
	return out
}

// VariableBoxAlpha box-blurs a w×h alpha buffer with a radius chosen per row,
// using a summed-area table so each pixel costs O(1) whatever its radius.
// Radii are capped at the larger buffer dimension.
// Pixels outside the buffer do not contribute.
func VariableBoxAlpha(alpha []uint8, w, h int, radiusForRow func(y int) int) []uint8 {
	out := make([]uint8, len(alpha))
	if w == 0 || h == 0 {
		return out
	}

	// sat[(y+1)*(w+1)+(x+1)] = sum of alpha over [0,x]×[0,y]
	stride := w + 1
	sat := make([]int64, stride*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(alpha[y*w+x])
			sat[(y+1)*stride+x+1] = sat[y*stride+x+1] + rowSum
		}
	}

	for y := 0; y < h; y++ {
		r := min(radiusForRow(y), max(w, h))
		if r <= 0 {
			copy(out[y*w:(y+1)*w], alpha[y*w:(y+1)*w])
			continue
		}
		y0 := max(y-r, 0)
		y1 := min(y+r, h-1)
		for x := 0; x < w; x++ {
			x0 := max(x-r, 0)
			x1 := min(x+r, w-1)
			sum := sat[(y1+1)*stride+x1+1] - sat[y0*stride+x1+1] - sat[(y1+1)*stride+x0] + sat[y0*stride+x0]
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			out[y*w+x] = uint8((sum + count/2) / count)
		}
	}
	return out
}
