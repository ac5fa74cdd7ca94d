// Package placement resolves named anchor presets to foreground positions.
package placement

import (
	"fmt"
	"image"
	"strings"
)

// Preset names one of the nine anchor points of the background.
type Preset string

const (
	TopLeft      Preset = "top-left"
	TopCenter    Preset = "top-center"
	TopRight     Preset = "top-right"
	MiddleLeft   Preset = "middle-left"
	Center       Preset = "center"
	MiddleRight  Preset = "middle-right"
	BottomLeft   Preset = "bottom-left"
	BottomCenter Preset = "bottom-center"
	BottomRight  Preset = "bottom-right"
)

// Presets lists every preset in reading order.
var Presets = []Preset{
	TopLeft, TopCenter, TopRight,
	MiddleLeft, Center, MiddleRight,
	BottomLeft, BottomCenter, BottomRight,
}

// ParsePreset normalizes s ("Bottom Center", "bottom_center") to a Preset.
func ParsePreset(s string) (Preset, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer(" ", "-", "_", "-").Replace(n)
	if n == "middle-center" {
		n = string(Center)
	}
	for _, p := range Presets {
		if string(p) == n {
			return p, nil
		}
	}
	return "", fmt.Errorf("placement: unknown preset %q", s)
}

// Resolve returns the top-left position that puts a foreground of size fg at
// preset within a background of size bg, inset by margin on the anchored
// edges. Positions are clamped so the foreground starts inside the background
// whenever it fits.
func Resolve(p Preset, fg, bg image.Point, margin int) (image.Point, error) {
	col, row, err := p.cell()
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(axis(col, fg.X, bg.X, margin), axis(row, fg.Y, bg.Y, margin)), nil
}

// cell returns the preset's column and row, each 0, 1 or 2.
func (p Preset) cell() (int, int, error) {
	for i, q := range Presets {
		if q == p {
			return i % 3, i / 3, nil
		}
	}
	return 0, 0, fmt.Errorf("placement: unknown preset %q", string(p))
}

func axis(slot, fg, bg, margin int) int {
	var v int
	switch slot {
	case 0:
		v = margin
	case 1:
		v = (bg - fg) / 2
	default:
		v = bg - fg - margin
	}
	if v > bg-fg {
		v = bg - fg
	}
	if v < 0 {
		v = 0
	}
	return v
}
