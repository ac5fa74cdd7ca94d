// Package shadow synthesizes a cast shadow for a cut-out foreground placed on
// a background, and composites the three layers.
//
// Generate is a pure function of its Request: identical requests produce
// bit-identical results, and nothing is retained between calls.
package shadow

import (
	"errors"
	"fmt"
	"image"
	"math"

	"shadow-studio/internal/composite"
	"shadow-studio/internal/mask"
	"shadow-studio/internal/mathutil"
	"shadow-studio/internal/postprocess"
	"shadow-studio/internal/raster"
)

// ErrInvalidRequest reports a request missing a required input.
var ErrInvalidRequest = errors.New("shadow: invalid request")

// Options selects the projection and blur strategies.
type Options struct {
	Model Model    `json:"model" yaml:"model"`
	Blur  BlurMode `json:"blur" yaml:"blur"`
}

// Request is the complete, immutable input of one generation.
type Request struct {
	Foreground *raster.Image    // drawn over the shadow; may be nil when Mask is set
	Mask       *mask.Mask       // derived from Foreground when nil
	Background *raster.Image    // required; fixes the output size
	Depth      *raster.DepthMap // optional
	Position   image.Point      // foreground origin in background space
	Light      Light
	Shadow     Appearance
	Options    Options
}

// Result is the generated triple plus diagnostics.
type Result struct {
	Composite  *raster.Image
	ShadowOnly *raster.Image // black RGB, blurred shadow alpha
	MaskDebug  *raster.Image // mask visualization placed at Position on opaque black

	ContactRow int     // mask-relative contact row
	AnchorRow  int     // background row distances are measured from
	Raw        []uint8 // shadow alpha before blur, len = background W*H
}

// Generate runs mask extraction, projection, blur and compositing.
func Generate(req Request) (Result, error) {
	if req.Background == nil {
		return Result{}, fmt.Errorf("%w: missing background", ErrInvalidRequest)
	}
	m := req.Mask
	if m == nil {
		if req.Foreground == nil {
			return Result{}, fmt.Errorf("%w: missing foreground", ErrInvalidRequest)
		}
		m = mask.ExtractFromAlpha(req.Foreground)
	}
	if req.Foreground != nil && (req.Foreground.Width != m.Width || req.Foreground.Height != m.Height) {
		return Result{}, fmt.Errorf("%w: mask %dx%d does not match foreground %dx%d",
			ErrInvalidRequest, m.Width, m.Height, req.Foreground.Width, req.Foreground.Height)
	}

	bg := req.Background
	shadowOnly, err := raster.NewImage(bg.Width, bg.Height)
	if err != nil {
		return Result{}, fmt.Errorf("shadow: shadow layer: %w", err)
	}

	p := &projector{
		m:          m,
		depth:      req.Depth,
		pos:        req.Position,
		light:      req.Light,
		appearance: req.Shadow,
		profile:    req.Options.Model.Profile(),
		contactY:   mask.ContactRow(m),
	}
	layer := &alphaLayer{w: bg.Width, h: bg.Height, pix: make([]uint8, bg.Width*bg.Height)}
	anchorY := p.project(layer, req.Options.Model)

	blurred := blurLayer(layer, anchorY, req.Shadow, req.Options.Blur)
	for i, a := range blurred {
		shadowOnly.Pix[i*4+3] = a
	}

	comp, err := composite.Compose(bg, shadowOnly, req.Foreground, req.Position, p.profile.CompositeAlpha)
	if err != nil {
		return Result{}, fmt.Errorf("shadow: %w", err)
	}

	debug, err := raster.NewImage(bg.Width, bg.Height)
	if err != nil {
		return Result{}, fmt.Errorf("shadow: mask debug: %w", err)
	}
	debug.Fill(0, 0, 0, 255)
	composite.Blit(debug, mask.Debug(m), req.Position)

	return Result{
		Composite:  comp,
		ShadowOnly: shadowOnly,
		MaskDebug:  debug,
		ContactRow: p.contactY,
		AnchorRow:  anchorY,
		Raw:        layer.pix,
	}, nil
}

// blurLayer applies the configured blur stage to the raw alpha buffer.
func blurLayer(l *alphaLayer, anchorY int, a Appearance, mode BlurMode) []uint8 {
	switch mode {
	case BlurNone:
		out := make([]uint8, len(l.pix))
		copy(out, l.pix)
		return out
	case BlurDistance:
		return postprocess.VariableBoxAlpha(l.pix, l.w, l.h, func(y int) int {
			n := NormalizedDistance(math.Abs(float64(y-anchorY)), a.FalloffDistance)
			return mathutil.RoundHalfUp(n * a.MaxBlurRadius)
		})
	}
	return postprocess.GaussianAlpha(l.pix, l.w, l.h, a.MaxBlurRadius*UniformBlurScale)
}
