// Package mask derives binary occupancy masks from cut-out foregrounds.
package mask

import (
	"image"

	"shadow-studio/internal/raster"
)

// Threshold is the alpha (and mask) value above which a pixel counts as occupied.
const Threshold = 128

// Mask is a width×height occupancy buffer whose values are exactly 0 or 255.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8 // len = W*H
}

// ExtractFromAlpha marks every pixel whose alpha exceeds Threshold.
func ExtractFromAlpha(img *raster.Image) *Mask {
	m := &Mask{Width: img.Width, Height: img.Height, Pix: make([]uint8, img.Width*img.Height)}
	for i := range m.Pix {
		if img.Pix[i*4+3] > Threshold {
			m.Pix[i] = 255
		}
	}
	return m
}

// Set reports whether (x, y) is inside the mask and occupied.
func (m *Mask) Set(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] > Threshold
}

// Debug renders the mask as an opaque grayscale image: unmasked pixels are
// solid black, not transparent.
func Debug(m *Mask) *raster.Image {
	img := &raster.Image{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix)*4)}
	for i, v := range m.Pix {
		img.Pix[i*4] = v
		img.Pix[i*4+1] = v
		img.Pix[i*4+2] = v
		img.Pix[i*4+3] = 255
	}
	return img
}

// ContactRow returns the lowest (largest y) row holding an occupied pixel.
// An empty mask falls back to the last row.
func ContactRow(m *Mask) int {
	for y := m.Height - 1; y >= 0; y-- {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for _, v := range row {
			if v > Threshold {
				return y
			}
		}
	}
	return m.Height - 1
}

// Bounds returns the bounding box of occupied pixels, or an empty rectangle.
func Bounds(m *Mask) image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] <= Threshold {
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

// Coverage returns the fraction of occupied pixels.
func Coverage(m *Mask) float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		if v > Threshold {
			n++
		}
	}
	return float64(n) / float64(len(m.Pix))
}
