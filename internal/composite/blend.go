package composite

import (
	"image"

	"shadow-studio/internal/raster"
)

// MultiplyOver blends layer onto the premultiplied dst with the multiply blend
// mode followed by source-over, with every layer alpha scaled by
// globalAlpha. layer is non-premultiplied and must share dst's size.
//
// In premultiplied terms, with s the layer and b the backdrop:
//
//	co = cs·(1−αb) + cb·(1−αs) + cs·cb
//	αo = αs + αb − αs·αb
func MultiplyOver(dst *image.RGBA, layer *raster.Image, globalAlpha float64) {
	if globalAlpha <= 0 {
		return
	}
	if globalAlpha > 1 {
		globalAlpha = 1
	}
	n := min(len(dst.Pix), len(layer.Pix))
	for i := 0; i+3 < n; i += 4 {
		as := float64(layer.Pix[i+3]) / 255 * globalAlpha
		if as == 0 {
			continue
		}
		ab := float64(dst.Pix[i+3]) / 255
		for c := 0; c < 3; c++ {
			cs := float64(layer.Pix[i+c]) / 255 * as
			cb := float64(dst.Pix[i+c]) / 255
			dst.Pix[i+c] = clamp8((cs*(1-ab) + cb*(1-as) + cs*cb) * 255)
		}
		dst.Pix[i+3] = clamp8((as + ab - as*ab) * 255)
	}
}
