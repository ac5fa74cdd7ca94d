package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"shadow-studio/internal/imageio"
	"shadow-studio/internal/placement"
	"shadow-studio/internal/shadow"
)

// Config holds input paths, shadow parameters and runtime settings.
type Config struct {
	// Paths
	BaseDir    string `json:"-" yaml:"-"`
	Foreground string `json:"foreground" yaml:"foreground"`
	Background string `json:"background" yaml:"background"`
	Depth      string `json:"depth" yaml:"depth"`
	OutputDir  string `json:"output_dir" yaml:"output_dir"`

	// Shadow
	Light   shadow.Light      `json:"light" yaml:"light"`
	Shadow  shadow.Appearance `json:"shadow" yaml:"shadow"`
	Options shadow.Options    `json:"options" yaml:"options"`

	// Placement: Preset wins over X/Y when set.
	Preset string `json:"preset" yaml:"preset"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Margin int    `json:"margin" yaml:"margin"`

	// Preprocessing
	FlipForeground  bool    `json:"flip_foreground" yaml:"flip_foreground"`
	TrimForeground  bool    `json:"trim_foreground" yaml:"trim_foreground"`
	ForegroundScale float64 `json:"foreground_scale" yaml:"foreground_scale"`
	DespeckleRatio  float64 `json:"despeckle_ratio" yaml:"despeckle_ratio"`
	DepthFit        bool    `json:"depth_fit" yaml:"depth_fit"`

	// Output and runtime
	Format       string `json:"format" yaml:"format"`
	Workers      int    `json:"workers" yaml:"workers"`
	Addr         string `json:"addr" yaml:"addr"`
	AssetCacheMB int    `json:"asset_cache_mb" yaml:"asset_cache_mb"`
}

// Default returns a Config with the default light and appearance.
// Other fields are filled by Resolve.
func Default() Config {
	return Config{
		Light:  shadow.DefaultLight(),
		Shadow: shadow.DefaultAppearance(),
	}
}

// Load reads a JSON or YAML config file on top of Default.
// Fields not set in the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// DecodeFile unmarshals path into v, as YAML for .yaml/.yml files and
// JSON otherwise.
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Resolve applies CLI overrides, makes file paths absolute against BaseDir
// and fills runtime defaults. It fails only on unknown model or blur names.
func (c *Config) Resolve(flags Flags) error {
	// Paths from the config file are relative to the file
	c.Foreground = c.abs(c.Foreground)
	c.Background = c.abs(c.Background)
	c.Depth = c.abs(c.Depth)
	c.OutputDir = c.abs(c.OutputDir)

	// CLI flags override config file
	if flags.Foreground != "" {
		c.Foreground = flags.Foreground
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.Depth != "" {
		c.Depth = flags.Depth
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Preset != "" {
		c.Preset = flags.Preset
	}
	if flags.Addr != "" {
		c.Addr = flags.Addr
	}
	if flags.Flip {
		c.FlipForeground = true
	}
	if flags.Trim {
		c.TrimForeground = true
	}
	if flags.Model != "" {
		m, err := shadow.ParseModel(flags.Model)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.Options.Model = m
	}
	if flags.Blur != "" {
		b, err := shadow.ParseBlurMode(flags.Blur)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.Options.Blur = b
	}
	setFloat(&c.Light.Angle, flags.Angle)
	setFloat(&c.Light.Elevation, flags.Elevation)
	setFloat(&c.Light.Intensity, flags.Intensity)
	setFloat(&c.Shadow.ContactDarkness, flags.ContactDarkness)
	setFloat(&c.Shadow.MaxBlurRadius, flags.MaxBlurRadius)
	setFloat(&c.Shadow.FalloffDistance, flags.FalloffDistance)
	setFloat(&c.ForegroundScale, flags.ForegroundScale)
	setInt(&c.X, flags.X)
	setInt(&c.Y, flags.Y)

	// Defaults for runtime settings
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.Format == "" {
		c.Format = string(imageio.PNG)
	}
	if c.ForegroundScale <= 0 {
		c.ForegroundScale = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.AssetCacheMB <= 0 {
		c.AssetCacheMB = 512
	}
	return nil
}

// Validate checks parameter ranges and names.
func (c *Config) Validate() error {
	if err := c.Light.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Shadow.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := imageio.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Preset != "" {
		if _, err := placement.ParsePreset(c.Preset); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.DespeckleRatio < 0 || c.DespeckleRatio >= 1 {
		return fmt.Errorf("config: despeckle_ratio %.3f outside [0, 1)", c.DespeckleRatio)
	}
	if c.Margin < 0 {
		return fmt.Errorf("config: negative margin %d", c.Margin)
	}
	return nil
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
// Nil pointers and empty strings leave the file value in place.
type Flags struct {
	Foreground string
	Background string
	Depth      string
	OutputDir  string
	Format     string
	Preset     string
	Model      string
	Blur       string
	Addr       string
	Workers    int
	Flip       bool // true forces flip_foreground on
	Trim       bool // true forces trim_foreground on

	Angle           *float64
	Elevation       *float64
	Intensity       *float64
	ContactDarkness *float64
	MaxBlurRadius   *float64
	FalloffDistance *float64
	ForegroundScale *float64
	X               *int
	Y               *int
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
