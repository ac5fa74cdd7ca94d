package raster

import "fmt"

// DepthMap holds relative background depth, one byte per pixel (0 near, 255 far).
// It is sized independently of the background; samples outside it are absent.
type DepthMap struct {
	Width  int
	Height int
	Pix    []uint8 // len = W*H
}

// NewDepthMap allocates a zeroed depth map.
func NewDepthMap(w, h int) (*DepthMap, error) {
	if err := checkSurface(w, h); err != nil {
		return nil, err
	}
	return &DepthMap{Width: w, Height: h, Pix: make([]uint8, w*h)}, nil
}

// DepthFromRed builds a depth map from the red channel of img.
func DepthFromRed(img *Image) *DepthMap {
	d := &DepthMap{Width: img.Width, Height: img.Height, Pix: make([]uint8, img.Width*img.Height)}
	for i := range d.Pix {
		d.Pix[i] = img.Pix[i*4]
	}
	return d
}

// Sample returns the depth byte at (x, y) and whether it lies inside the map.
func (d *DepthMap) Sample(x, y int) (uint8, bool) {
	if d == nil || x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0, false
	}
	return d.Pix[y*d.Width+x], true
}

// Resize resamples the map to w×h with bilinear filtering.
func (d *DepthMap) Resize(w, h int) (*DepthMap, error) {
	out, err := NewDepthMap(w, h)
	if err != nil {
		return nil, fmt.Errorf("raster: resize depth: %w", err)
	}
	if d.Width == 0 || d.Height == 0 {
		return out, nil
	}
	sx := float64(d.Width) / float64(max(w, 1))
	sy := float64(d.Height) / float64(max(h, 1))
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			out.Pix[y*w+x] = sampleBilinear(d.Pix, d.Width, d.Height, fx, fy)
		}
	}
	return out, nil
}
