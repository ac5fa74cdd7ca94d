package imageio

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"shadow-studio/internal/raster"
	"shadow-studio/internal/shadow"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// ParseFormat accepts "png" or "webp"; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("imageio: unknown output format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == WebP {
		return "image/webp"
	}
	return "image/png"
}

// Encode writes img to w. WebP output is lossless.
func Encode(w io.Writer, img *raster.Image, f Format) error {
	switch f {
	case WebP:
		if err := nativewebp.Encode(w, img.NRGBA(), nil); err != nil {
			return fmt.Errorf("imageio: webp encode: %w", err)
		}
	case PNG, "":
		if err := png.Encode(w, img.NRGBA()); err != nil {
			return fmt.Errorf("imageio: png encode: %w", err)
		}
	default:
		return fmt.Errorf("imageio: unknown output format %q", string(f))
	}
	return nil
}

// Save encodes img to path, creating parent directories.
func Save(path string, img *raster.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Output file stems written by WriteResult.
const (
	CompositeName  = "composite"
	ShadowOnlyName = "shadow_only"
	MaskDebugName  = "mask_debug"
)

// WriteResult saves the three generated images into dir and returns the
// written paths in composite, shadow-only, mask-debug order.
func WriteResult(dir string, res shadow.Result, f Format) ([]string, error) {
	outputs := []struct {
		name string
		img  *raster.Image
	}{
		{CompositeName, res.Composite},
		{ShadowOnlyName, res.ShadowOnly},
		{MaskDebugName, res.MaskDebug},
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if o.img == nil {
			return paths, fmt.Errorf("imageio: result has no %s image", o.name)
		}
		p := filepath.Join(dir, o.name+f.Ext())
		if err := Save(p, o.img, f); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
