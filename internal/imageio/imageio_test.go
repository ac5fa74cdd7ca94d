package imageio

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-studio/internal/raster"
	"shadow-studio/internal/shadow"
)

func testImage(t *testing.T) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(4, 3)
	require.NoError(t, err)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i * 5)
		img.Pix[i+1] = 40
		img.Pix[i+2] = 200
		img.Pix[i+3] = 255
	}
	img.Pix[3] = 128
	return img
}

func TestPNGRoundTrip(t *testing.T) {
	img := testImage(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, PNG))

	got, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestWebPRoundTrip(t *testing.T) {
	img := testImage(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, WebP))

	got, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, img.Width, got.Width)
	assert.Equal(t, img.Height, got.Height)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestDecodeJPEGIsOpaque(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	got, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	for i := 3; i < len(got.Pix); i += 4 {
		assert.Equal(t, uint8(255), got.Pix[i])
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader(nil))
	assert.Error(t, err)

	_, _, err = Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestLoadErrorsNamePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nxx"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imageio: decode "+path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDepthUsesRedChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depth.png")
	src := testImage(t)
	require.NoError(t, Save(path, src, PNG))

	d, err := LoadDepth(path)
	require.NoError(t, err)
	v, ok := d.Sample(1, 0)
	require.True(t, ok)
	assert.Equal(t, src.Pix[4], v)
}

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	img := testImage(t)
	res := shadow.Result{Composite: img, ShadowOnly: img, MaskDebug: img}

	paths, err := WriteResult(dir, res, WebP)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "composite.webp"),
		filepath.Join(dir, "shadow_only.webp"),
		filepath.Join(dir, "mask_debug.webp"),
	}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	_, err = WriteResult(dir, shadow.Result{Composite: img}, PNG)
	assert.Error(t, err)
}

func TestCacheReusesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, Save(path, testImage(t), PNG))

	c := NewCache()
	a, err := c.Load(path)
	require.NoError(t, err)
	b, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())

	_, err = c.Load(path + ".missing")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".WEBP")
	require.NoError(t, err)
	assert.Equal(t, WebP, f)
	assert.Equal(t, "image/webp", f.ContentType())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	_, err = ParseFormat("tiff")
	assert.Error(t, err)
}

