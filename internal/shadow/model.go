package shadow

import (
	"fmt"
	"strings"
)

// Projection and shaping constants shared by both models.
const (
	BaseShadowLength = 200.0  // directional model, shadow length at elevation 0
	LightHeight      = 500.0  // perspective model, height of the point light
	HeightScale      = 0.5    // perspective model, object height per mask row above contact
	ElevationEpsilon = 0.01   // radians; at or below this the light is grazing
	DepthFade        = 0.3    // opacity lost at depth 255
	UniformBlurScale = 0.3    // uniform blur sigma per unit of MaxBlurRadius
	MaxBlurLimit     = 1000.0 // pixels, largest accepted MaxBlurRadius
)

// Model selects the shadow projection strategy.
type Model int

const (
	// Perspective projects every masked source pixel from a point light.
	Perspective Model = iota
	// Directional shifts the silhouette by a single offset vector and
	// inverse-maps every background pixel onto the mask.
	Directional
)

// Profile carries the opacity and composite constants tied to a model.
type Profile struct {
	Decay          float64 // k in exp(-k·n)
	Base           float64 // c, baseline opacity at the contact row
	Slope          float64 // f, fraction of Base lost at n = 1
	CompositeAlpha float64 // global alpha of the multiply pass
}

var profiles = map[Model]Profile{
	Perspective: {Decay: 4, Base: 0.5, Slope: 0.8, CompositeAlpha: 0.85},
	Directional: {Decay: 3, Base: 0.4, Slope: 0.7, CompositeAlpha: 0.8},
}

// Profile returns the constants for m.
func (m Model) Profile() Profile {
	if p, ok := profiles[m]; ok {
		return p
	}
	return profiles[Perspective]
}

func (m Model) String() string {
	switch m {
	case Perspective:
		return "perspective"
	case Directional:
		return "directional"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// ParseModel accepts "perspective" or "directional"; empty means Perspective.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "perspective":
		return Perspective, nil
	case "directional":
		return Directional, nil
	}
	return 0, fmt.Errorf("shadow: unknown model %q", s)
}

func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Model) UnmarshalText(b []byte) error {
	v, err := ParseModel(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// BlurMode selects how the raw shadow layer is softened.
type BlurMode int

const (
	// BlurUniform applies one Gaussian with sigma MaxBlurRadius·UniformBlurScale.
	BlurUniform BlurMode = iota
	// BlurDistance grows a box radius from 0 at the anchor row to MaxBlurRadius
	// at the falloff distance.
	BlurDistance
	// BlurNone keeps the raw projected layer.
	BlurNone
)

func (b BlurMode) String() string {
	switch b {
	case BlurUniform:
		return "uniform"
	case BlurDistance:
		return "distance"
	case BlurNone:
		return "none"
	}
	return fmt.Sprintf("BlurMode(%d)", int(b))
}

// ParseBlurMode accepts "uniform", "distance" or "none"; empty means BlurUniform.
func ParseBlurMode(s string) (BlurMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return BlurUniform, nil
	case "distance":
		return BlurDistance, nil
	case "none":
		return BlurNone, nil
	}
	return 0, fmt.Errorf("shadow: unknown blur mode %q", s)
}

func (b BlurMode) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BlurMode) UnmarshalText(t []byte) error {
	v, err := ParseBlurMode(string(t))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
