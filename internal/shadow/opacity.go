package shadow

import (
	"math"

	"shadow-studio/internal/mathutil"
)

// NormalizedDistance maps a pixel distance from the contact row onto [0, 1].
// A non-positive falloff collapses the ramp: only distance 0 stays at 0.
func NormalizedDistance(dist, falloff float64) float64 {
	if falloff <= 0 {
		if dist <= 0 {
			return 0
		}
		return 1
	}
	return mathutil.Clamp01(dist / falloff)
}

// Opacity evaluates the contact-boosted falloff curve for normalized distance n.
// The result is in [0, 1] and non-increasing in n.
func (p Profile) Opacity(n, contactDarkness, intensity float64) float64 {
	contactBoost := math.Exp(-p.Decay*n) * contactDarkness
	baseOpacity := p.Base * (1 - n*p.Slope)
	return mathutil.Clamp01((contactBoost + baseOpacity) * intensity)
}

// DepthModulate fades opacity on background regions marked as farther away.
func DepthModulate(opacity float64, depth uint8) float64 {
	return opacity * (1 - float64(depth)/255*DepthFade)
}
