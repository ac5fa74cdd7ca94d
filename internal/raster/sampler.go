package raster

// sampleBilinear filters a single-channel buffer at fractional (fx, fy),
// clamping to the edge texels. Accesses pix directly for performance.
func sampleBilinear(pix []uint8, w, h int, fx, fy float64) uint8 {
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	if fx > float64(w-1) {
		fx = float64(w - 1)
	}
	if fy > float64(h-1) {
		fy = float64(h - 1)
	}

	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	// Four texels
	p00 := float64(pix[y0*w+x0])
	p10 := float64(pix[y0*w+x1])
	p01 := float64(pix[y1*w+x0])
	p11 := float64(pix[y1*w+x1])

	v := p00*(1-dx)*(1-dy) + p10*dx*(1-dy) + p01*(1-dx)*dy + p11*dx*dy
	return uint8(v + 0.5)
}
