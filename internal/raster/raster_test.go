package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageLimits(t *testing.T) {
	img, err := NewImage(3, 2)
	require.NoError(t, err)
	assert.Len(t, img.Pix, 24)

	empty, err := NewImage(0, 0)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	_, err = NewImage(-1, 4)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))

	_, err = NewImage(MaxPixels, 2)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))

	_, err = NewDepthMap(1<<30, 1<<30)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}

func TestNRGBASharesBuffer(t *testing.T) {
	img, err := NewImage(2, 2)
	require.NoError(t, err)
	n := img.NRGBA()
	n.SetNRGBA(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	assert.Equal(t, []uint8{1, 2, 3, 4}, img.Pix[img.PixOffset(1, 1):img.PixOffset(1, 1)+4])

	back := FromNRGBA(n)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestFromImageSubRect(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	n.SetNRGBA(2, 3, color.NRGBA{R: 9, A: 255})
	sub := n.SubImage(image.Rect(1, 1, 4, 4)).(*image.NRGBA)

	img := FromImage(sub)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, uint8(9), img.Pix[img.PixOffset(1, 2)])
}

func TestFromImageGrayIsOpaque(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.SetGray(1, 0, color.Gray{Y: 77})

	img := FromImage(g)
	assert.Equal(t, []uint8{0, 0, 0, 255, 77, 77, 77, 255}, img.Pix)
}

func TestDepthFromRedAndSample(t *testing.T) {
	img, err := NewImage(2, 1)
	require.NoError(t, err)
	copy(img.Pix, []uint8{10, 99, 99, 255, 200, 0, 0, 255})

	d := DepthFromRed(img)
	v, ok := d.Sample(1, 0)
	assert.True(t, ok)
	assert.Equal(t, uint8(200), v)

	_, ok = d.Sample(2, 0)
	assert.False(t, ok)
	_, ok = d.Sample(0, -1)
	assert.False(t, ok)

	var none *DepthMap
	_, ok = none.Sample(0, 0)
	assert.False(t, ok)
}

func TestDepthResize(t *testing.T) {
	d := &DepthMap{Width: 2, Height: 1, Pix: []uint8{0, 200}}
	out, err := d.Resize(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, uint8(0), out.Pix[0])
	assert.Equal(t, uint8(200), out.Pix[3])
	assert.Equal(t, out.Pix[:4], out.Pix[4:])
	assert.Less(t, out.Pix[1], out.Pix[2])
}
