package shadow

import (
	"image"
	"math"

	"shadow-studio/internal/mask"
	"shadow-studio/internal/mathutil"
	"shadow-studio/internal/raster"
)

// alphaLayer is the background-sized shadow alpha buffer written by the
// projectors. Writes use max-compositing so overlapping contributions
// never double-darken a pixel.
type alphaLayer struct {
	w, h int
	pix  []uint8
}

func (l *alphaLayer) blend(x, y int, opacity float64) {
	i := y*l.w + x
	cur := float64(l.pix[i]) / 255
	l.pix[i] = mathutil.UnitToByte(math.Max(cur, opacity))
}

func (l *alphaLayer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.w && y < l.h
}

// projector holds the per-call inputs shared by both models.
type projector struct {
	m          *mask.Mask
	depth      *raster.DepthMap
	pos        image.Point
	light      Light
	appearance Appearance
	profile    Profile
	contactY   int // mask-relative
}

func (p *projector) absContactY() int {
	return p.pos.Y + p.contactY
}

// opacityAt evaluates the opacity model for a destination pixel at the given
// distance from the anchor row, applying depth modulation when sampled.
func (p *projector) opacityAt(bgX, bgY int, dist float64) float64 {
	n := NormalizedDistance(dist, p.appearance.FalloffDistance)
	opacity := p.profile.Opacity(n, p.appearance.ContactDarkness, p.light.Intensity)
	if d, ok := p.depth.Sample(bgX, bgY); ok {
		opacity = DepthModulate(opacity, d)
	}
	return opacity
}

// grazing writes the hard contact-only shadow used when the light is at or
// below ElevationEpsilon. Returns the anchor row.
func (p *projector) grazing(l *alphaLayer) int {
	groundY := p.absContactY()
	opacity := mathutil.Clamp01(p.appearance.ContactDarkness * p.light.Intensity)
	for srcY := 0; srcY < p.m.Height; srcY++ {
		for srcX := 0; srcX < p.m.Width; srcX++ {
			if !p.m.Set(srcX, srcY) {
				continue
			}
			bgX := p.pos.X + srcX
			if l.inside(bgX, groundY) {
				l.blend(bgX, groundY, opacity)
			}
		}
	}
	return groundY
}

// directionalOffset returns the whole-pixel silhouette shift for the light.
func directionalOffset(light Light) (int, int) {
	length := BaseShadowLength * (1 - math.Sin(light.elevationRad()))
	return mathutil.Polar(light.angleRad(), length).Round()
}

// directional inverse-maps every background pixel onto the mask through the
// shadow offset. Returns the anchor row.
func (p *projector) directional(l *alphaLayer) int {
	offX, offY := directionalOffset(p.light)
	anchorY := p.absContactY() + offY

	for y := 0; y < l.h; y++ {
		srcY := y - offY - p.pos.Y
		if srcY < 0 || srcY >= p.m.Height {
			continue
		}
		for x := 0; x < l.w; x++ {
			srcX := x - offX - p.pos.X
			if !p.m.Set(srcX, srcY) {
				continue
			}
			dist := math.Abs(float64(y - anchorY))
			l.blend(x, y, p.opacityAt(x, y, dist))
		}
	}
	return anchorY
}

// perspectiveOffset returns the ground-plane offset of the point light.
func perspectiveOffset(light Light) mathutil.Vec2 {
	lightDist := LightHeight / math.Tan(light.elevationRad()+ElevationEpsilon)
	return mathutil.Polar(light.angleRad(), lightDist)
}

// perspective projects every masked source pixel from a point light at
// LightHeight onto the ground plane anchored at the contact row. Returns the
// anchor row.
func (p *projector) perspective(l *alphaLayer) int {
	lightOffset := perspectiveOffset(p.light)
	groundY := p.absContactY()

	for srcY := 0; srcY < p.m.Height; srcY++ {
		objHeight := math.Max(float64(p.contactY-srcY)*HeightScale, 0)
		t := (LightHeight - objHeight) / LightHeight
		shift := lightOffset.Scale(1 - t)
		for srcX := 0; srcX < p.m.Width; srcX++ {
			if !p.m.Set(srcX, srcY) {
				continue
			}
			ground := mathutil.Vec2{float64(p.pos.X + srcX), float64(groundY)}
			bgX, bgY := ground.Add(shift).Round()
			if !l.inside(bgX, bgY) {
				continue
			}
			dist := math.Abs(float64(bgY - groundY))
			l.blend(bgX, bgY, p.opacityAt(bgX, bgY, dist))
		}
	}
	return groundY
}

// project fills l according to the selected model and returns the anchor
// row that distances (and distance-scaled blur) are measured from.
func (p *projector) project(l *alphaLayer, model Model) int {
	if p.light.grazing() {
		return p.grazing(l)
	}
	if model == Directional {
		return p.directional(l)
	}
	return p.perspective(l)
}
