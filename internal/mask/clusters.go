package mask

import "image"

// neighbours are the 8-connected offsets around a pixel.
var neighbours = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Islands returns the 8-connected components of the mask as lists of pixel
// indices, in scan order of their first pixel.
func Islands(m *Mask) [][]int {
	seen := make([]bool, len(m.Pix))
	var islands [][]int
	var stack []image.Point

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			start := y*m.Width + x
			if seen[start] || !m.Set(x, y) {
				continue
			}
			seen[start] = true
			island := []int{}
			stack = append(stack[:0], image.Pt(x, y))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				island = append(island, p.Y*m.Width+p.X)
				for _, d := range neighbours {
					q := p.Add(d)
					if !m.Set(q.X, q.Y) {
						continue
					}
					if i := q.Y*m.Width + q.X; !seen[i] {
						seen[i] = true
						stack = append(stack, q)
					}
				}
			}
			islands = append(islands, island)
		}
	}
	return islands
}

// Despeckle clears small disconnected islands, typically matting noise left
// around a cut-out. minRatio is the minimum fraction of all occupied pixels an
// island needs to survive; a mask with a single island is returned as is.
// The input is not modified.
func Despeckle(m *Mask, minRatio float64) *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	if minRatio <= 0 {
		return out
	}

	islands := Islands(m)
	if len(islands) <= 1 {
		return out
	}
	occupied := 0
	for _, island := range islands {
		occupied += len(island)
	}

	cutoff := int(float64(occupied) * minRatio)
	for _, island := range islands {
		if len(island) >= cutoff {
			continue
		}
		for _, i := range island {
			out.Pix[i] = 0
		}
	}
	return out
}
