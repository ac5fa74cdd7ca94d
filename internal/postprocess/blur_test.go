package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-studio/internal/raster"
)

func TestGaussianAlphaZeroSigmaCopies(t *testing.T) {
	in := []uint8{1, 2, 3, 4}
	out := GaussianAlpha(in, 2, 2, 0)
	assert.Equal(t, in, out)
	out[0] = 99
	assert.Equal(t, uint8(1), in[0])
}

func TestGaussianAlphaSpreads(t *testing.T) {
	const w, h = 21, 21
	in := make([]uint8, w*h)
	in[10*w+10] = 255

	out := GaussianAlpha(in, w, h, 2)
	require.Len(t, out, w*h)
	assert.Less(t, out[10*w+10], uint8(255))
	assert.NotZero(t, out[10*w+11])
	assert.NotZero(t, out[12*w+10])
	assert.GreaterOrEqual(t, out[10*w+10], out[10*w+12])
	assert.Zero(t, out[0])
}

func TestGaussianAlphaKeepsFlatField(t *testing.T) {
	in := make([]uint8, 16*16)
	for i := range in {
		in[i] = 100
	}
	for _, v := range GaussianAlpha(in, 16, 16, 3) {
		assert.InDelta(t, 100, int(v), 1)
	}
}

func TestGaussianAlphaCapsSigma(t *testing.T) {
	in := make([]uint8, 8*8)
	in[3*8+4] = 255
	assert.Equal(t, GaussianAlpha(in, 8, 8, 8), GaussianAlpha(in, 8, 8, 2e8))
}

func TestVariableBoxAlphaCapsRadius(t *testing.T) {
	in := make([]uint8, 6*4)
	in[1*6+2] = 200
	capped := VariableBoxAlpha(in, 6, 4, func(int) int { return 6 })
	huge := VariableBoxAlpha(in, 6, 4, func(int) int { return 1 << 40 })
	assert.Equal(t, capped, huge)
}

func TestVariableBoxAlpha(t *testing.T) {
	const w, h = 5, 5
	in := make([]uint8, w*h)
	in[2*w+2] = 90

	sharp := VariableBoxAlpha(in, w, h, func(int) int { return 0 })
	assert.Equal(t, in, sharp)

	soft := VariableBoxAlpha(in, w, h, func(int) int { return 1 })
	assert.Equal(t, uint8(10), soft[2*w+2])
	assert.Equal(t, uint8(10), soft[1*w+1])
	assert.Equal(t, uint8(0), soft[0])

	// Only row 2 blurs
	rowOnly := VariableBoxAlpha(in, w, h, func(y int) int {
		if y == 2 {
			return 1
		}
		return 0
	})
	assert.Equal(t, uint8(10), rowOnly[2*w+1])
	assert.Equal(t, uint8(0), rowOnly[1*w+2])
}

func TestVariableBoxAlphaEdgeAverage(t *testing.T) {
	in := []uint8{255, 0, 0, 0}
	out := VariableBoxAlpha(in, 2, 2, func(int) int { return 4 })
	for _, v := range out {
		assert.Equal(t, uint8(64), v)
	}
}

func TestResize(t *testing.T) {
	img, err := raster.NewImage(8, 8)
	require.NoError(t, err)
	img.Fill(255, 0, 0, 255)

	out, err := Resize(img, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 2, out.Height)
	for i := 0; i < len(out.Pix); i += 4 {
		assert.Equal(t, []uint8{255, 0, 0, 255}, out.Pix[i:i+4])
	}

	half, err := Scale(img, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 4, half.Width)

	same, err := Scale(img, 1)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, same.Pix)
}

func TestResizeTransparentEdgesHaveNoHalo(t *testing.T) {
	img, err := raster.NewImage(8, 8)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			i := img.PixOffset(x, y)
			copy(img.Pix[i:i+4], []uint8{255, 255, 255, 255})
		}
	}

	out, err := Resize(img, 4, 4)
	require.NoError(t, err)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i+3] > 0 {
			assert.GreaterOrEqual(t, out.Pix[i], uint8(250), "dark fringe at byte %d", i)
		}
	}
}
