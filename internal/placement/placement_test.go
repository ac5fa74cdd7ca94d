package placement

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeepsForegroundInside(t *testing.T) {
	fg := image.Pt(100, 60)
	bg := image.Pt(640, 480)
	bounds := image.Rect(0, 0, bg.X, bg.Y)

	for _, p := range Presets {
		pos, err := Resolve(p, fg, bg, 16)
		require.NoError(t, err, p)
		r := image.Rectangle{Min: pos, Max: pos.Add(fg)}
		assert.True(t, r.In(bounds), "%s placed at %v", p, r)
	}
}

func TestResolveAnchors(t *testing.T) {
	fg := image.Pt(100, 60)
	bg := image.Pt(640, 480)

	cases := map[Preset]image.Point{
		TopLeft:      image.Pt(10, 10),
		Center:       image.Pt(270, 210),
		BottomCenter: image.Pt(270, 410),
		BottomRight:  image.Pt(530, 410),
		MiddleLeft:   image.Pt(10, 210),
	}
	for p, want := range cases {
		got, err := Resolve(p, fg, bg, 10)
		require.NoError(t, err)
		assert.Equal(t, want, got, p)
	}
}

func TestResolveOversizedForeground(t *testing.T) {
	got, err := Resolve(BottomRight, image.Pt(800, 100), image.Pt(640, 480), 10)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(0, 370), got)
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset(" Bottom Center ")
	require.NoError(t, err)
	assert.Equal(t, BottomCenter, p)

	p, err = ParsePreset("middle_center")
	require.NoError(t, err)
	assert.Equal(t, Center, p)

	_, err = ParsePreset("floor")
	assert.Error(t, err)

	_, err = Resolve(Preset("nowhere"), image.Pt(1, 1), image.Pt(2, 2), 0)
	assert.Error(t, err)
}
