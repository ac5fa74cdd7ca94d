// Package session holds loaded inputs as immutable snapshots and renders them
// with last-writer-wins semantics.
package session

import (
	"errors"
	"fmt"
	"image"

	"shadow-studio/internal/mask"
	"shadow-studio/internal/placement"
	"shadow-studio/internal/postprocess"
	"shadow-studio/internal/raster"
	"shadow-studio/internal/shadow"
)

// ErrMissingAsset reports a render attempted before its inputs were loaded.
var ErrMissingAsset = errors.New("session: missing asset")

// Assets is an immutable snapshot of the loaded inputs. The With methods
// return a new snapshot and never modify the receiver, so a failed load
// leaves the previous snapshot usable.
type Assets struct {
	Foreground *raster.Image
	Mask       *mask.Mask // derived from Foreground
	Background *raster.Image
	Depth      *raster.DepthMap
}

// Prep controls how a foreground is prepared before mask extraction.
type Prep struct {
	Flip           bool    // mirror left to right
	Trim           bool    // crop transparent margins
	Scale          float64 // 0 or 1 keeps the original size
	DespeckleRatio float64 // 0 disables despeckling
}

// WithForeground returns a snapshot using img as the foreground.
func (a *Assets) WithForeground(img *raster.Image, prep Prep) (*Assets, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil foreground", ErrMissingAsset)
	}
	if prep.Flip {
		img = postprocess.FlipHorizontal(img)
	}
	if prep.Trim {
		img, _ = postprocess.Trim(img)
	}
	if prep.Scale > 0 && prep.Scale != 1 {
		scaled, err := postprocess.Scale(img, prep.Scale)
		if err != nil {
			return nil, fmt.Errorf("session: scale foreground: %w", err)
		}
		img = scaled
	}

	m := mask.ExtractFromAlpha(img)
	if prep.DespeckleRatio > 0 {
		m = mask.Despeckle(m, prep.DespeckleRatio)
	}

	next := a.clone()
	next.Foreground = img
	next.Mask = m
	return next, nil
}

// WithBackground returns a snapshot using img as the background.
func (a *Assets) WithBackground(img *raster.Image) (*Assets, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil background", ErrMissingAsset)
	}
	next := a.clone()
	next.Background = img
	return next, nil
}

// WithDepth returns a snapshot using d as the depth map. A nil d clears it.
func (a *Assets) WithDepth(d *raster.DepthMap) *Assets {
	next := a.clone()
	next.Depth = d
	return next
}

func (a *Assets) clone() *Assets {
	if a == nil {
		return &Assets{}
	}
	c := *a
	return &c
}

// Params are the per-render settings applied to a snapshot.
type Params struct {
	Light    shadow.Light
	Shadow   shadow.Appearance
	Options  shadow.Options
	Position image.Point
	Preset   placement.Preset // overrides Position when set
	Margin   int
	DepthFit bool // resample the depth map to the background size
}

// DefaultParams returns the default light and appearance at the origin.
func DefaultParams() Params {
	return Params{
		Light:  shadow.DefaultLight(),
		Shadow: shadow.DefaultAppearance(),
	}
}

// Request builds the engine request for p.
func (a *Assets) Request(p Params) (shadow.Request, error) {
	if a == nil || a.Background == nil {
		return shadow.Request{}, fmt.Errorf("%w: background", ErrMissingAsset)
	}
	if a.Mask == nil {
		return shadow.Request{}, fmt.Errorf("%w: foreground", ErrMissingAsset)
	}

	pos := p.Position
	if p.Preset != "" {
		fg := image.Pt(a.Mask.Width, a.Mask.Height)
		bg := image.Pt(a.Background.Width, a.Background.Height)
		var err error
		if pos, err = placement.Resolve(p.Preset, fg, bg, p.Margin); err != nil {
			return shadow.Request{}, fmt.Errorf("session: %w", err)
		}
	}

	depth := a.Depth
	if depth != nil && p.DepthFit && (depth.Width != a.Background.Width || depth.Height != a.Background.Height) {
		fitted, err := depth.Resize(a.Background.Width, a.Background.Height)
		if err != nil {
			return shadow.Request{}, fmt.Errorf("session: fit depth: %w", err)
		}
		depth = fitted
	}

	return shadow.Request{
		Foreground: a.Foreground,
		Mask:       a.Mask,
		Background: a.Background,
		Depth:      depth,
		Position:   pos,
		Light:      p.Light,
		Shadow:     p.Shadow,
		Options:    p.Options,
	}, nil
}
