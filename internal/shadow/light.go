package shadow

import (
	"fmt"

	"shadow-studio/internal/mathutil"
)

// Light describes the single light source.
type Light struct {
	Angle     float64 `json:"angle" yaml:"angle"`         // compass direction of illumination, degrees 0–360
	Elevation float64 `json:"elevation" yaml:"elevation"` // degrees, 0 grazing, 90 overhead
	Intensity float64 `json:"intensity" yaml:"intensity"` // scales overall darkness
}

// Appearance shapes the shadow independently of the light geometry.
type Appearance struct {
	ContactDarkness float64 `json:"contact_darkness" yaml:"contact_darkness"` // 0–1 opacity boost at the contact row
	MaxBlurRadius   float64 `json:"max_blur_radius" yaml:"max_blur_radius"`   // pixels
	FalloffDistance float64 `json:"falloff_distance" yaml:"falloff_distance"` // pixels
}

// DefaultLight returns a 45° key light at full intensity.
func DefaultLight() Light {
	return Light{
		Angle:     45,
		Elevation: 45,
		Intensity: 1,
	}
}

// DefaultAppearance returns the appearance used when nothing is configured.
func DefaultAppearance() Appearance {
	return Appearance{
		ContactDarkness: 0.5,
		MaxBlurRadius:   10,
		FalloffDistance: 100,
	}
}

// Validate rejects values outside the documented ranges.
func (l Light) Validate() error {
	if l.Angle < 0 || l.Angle > 360 {
		return fmt.Errorf("shadow: angle %.2f outside [0, 360]", l.Angle)
	}
	if l.Elevation < 0 || l.Elevation > 90 {
		return fmt.Errorf("shadow: elevation %.2f outside [0, 90]", l.Elevation)
	}
	if l.Intensity < 0 {
		return fmt.Errorf("shadow: negative intensity %.2f", l.Intensity)
	}
	return nil
}

// Validate rejects values outside the documented ranges.
func (a Appearance) Validate() error {
	if a.ContactDarkness < 0 || a.ContactDarkness > 1 {
		return fmt.Errorf("shadow: contact darkness %.2f outside [0, 1]", a.ContactDarkness)
	}
	if a.MaxBlurRadius < 0 || a.MaxBlurRadius > MaxBlurLimit {
		return fmt.Errorf("shadow: blur radius %.2f outside [0, %.0f]", a.MaxBlurRadius, MaxBlurLimit)
	}
	if a.FalloffDistance < 0 {
		return fmt.Errorf("shadow: negative falloff distance %.2f", a.FalloffDistance)
	}
	return nil
}

func (l Light) angleRad() float64     { return mathutil.Deg2Rad(mathutil.NormalizeDeg(l.Angle)) }
func (l Light) elevationRad() float64 { return mathutil.Deg2Rad(l.Elevation) }

// grazing reports whether the light is too low for a projected shadow.
func (l Light) grazing() bool {
	return !(l.elevationRad() > ElevationEpsilon)
}
