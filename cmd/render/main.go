package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"shadow-studio/internal/batch"
	"shadow-studio/internal/config"
	"shadow-studio/internal/imageio"
	"shadow-studio/internal/placement"
	"shadow-studio/internal/session"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	jobsFile := flag.String("jobs", "", "Render every job in this manifest (.json, .yaml)")
	fgPath := flag.String("fg", "", "Foreground cut-out image")
	bgPath := flag.String("bg", "", "Background image")
	depthPath := flag.String("depth", "", "Optional depth map (red channel, 0 near, 255 far)")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	format := flag.String("format", "", "Output format: png or webp (default: png)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	preset := flag.String("preset", "", "Placement preset, e.g. bottom-center")
	model := flag.String("model", "", "Projection model: perspective or directional")
	blur := flag.String("blur", "", "Blur mode: uniform, distance or none")
	x := flag.Int("x", 0, "Foreground x offset in the background")
	y := flag.Int("y", 0, "Foreground y offset in the background")
	angle := flag.Float64("angle", 0, "Light angle in degrees (0-360)")
	elevation := flag.Float64("elevation", 0, "Light elevation in degrees (0-90)")
	intensity := flag.Float64("intensity", 0, "Light intensity")
	darkness := flag.Float64("contact", 0, "Contact darkness (0-1)")
	maxBlur := flag.Float64("max-blur", 0, "Maximum blur radius in pixels")
	falloff := flag.Float64("falloff", 0, "Falloff distance in pixels")
	scale := flag.Float64("scale", 0, "Foreground scale factor")
	flip := flag.Bool("flip", false, "Mirror the foreground left to right")
	trim := flag.Bool("trim", false, "Crop transparent margins off the foreground")

	flag.Parse()

	// Only flags given on the command line override the config file
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	floatFlag := func(name string, v *float64) *float64 {
		if set[name] {
			return v
		}
		return nil
	}
	intFlag := func(name string, v *int) *int {
		if set[name] {
			return v
		}
		return nil
	}

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	err := cfg.Resolve(config.Flags{
		Foreground:      *fgPath,
		Background:      *bgPath,
		Depth:           *depthPath,
		OutputDir:       *outputDir,
		Format:          *format,
		Preset:          *preset,
		Model:           *model,
		Blur:            *blur,
		Workers:         *workers,
		Flip:            *flip,
		Trim:            *trim,
		Angle:           floatFlag("angle", angle),
		Elevation:       floatFlag("elevation", elevation),
		Intensity:       floatFlag("intensity", intensity),
		ContactDarkness: floatFlag("contact", darkness),
		MaxBlurRadius:   floatFlag("max-blur", maxBlur),
		FalloffDistance: floatFlag("falloff", falloff),
		ForegroundScale: floatFlag("scale", scale),
		X:               intFlag("x", x),
		Y:               intFlag("y", y),
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	outFormat, _ := imageio.ParseFormat(cfg.Format)
	params := session.Params{
		Light:    cfg.Light,
		Shadow:   cfg.Shadow,
		Options:  cfg.Options,
		Position: image.Pt(cfg.X, cfg.Y),
		Margin:   cfg.Margin,
		DepthFit: cfg.DepthFit,
	}
	if cfg.Preset != "" {
		params.Preset, _ = placement.ParsePreset(cfg.Preset)
	}

	// Jobs: manifest or a single unnamed job from the config
	var jobs []batch.Job
	if *jobsFile != "" {
		jobs, err = batch.LoadJobs(*jobsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading jobs: %v\n", err)
			os.Exit(1)
		}
	} else {
		if cfg.Foreground == "" || cfg.Background == "" {
			fmt.Fprintln(os.Stderr, "Error: need -fg and -bg (or -jobs manifest.json).")
			flag.Usage()
			os.Exit(2)
		}
		jobs = []batch.Job{{
			Foreground: cfg.Foreground,
			Background: cfg.Background,
			Depth:      cfg.Depth,
		}}
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs to render.")
		os.Exit(0)
	}

	fmt.Printf("Shadow render → %s\n", outFormat)
	fmt.Printf("Jobs: %d, Workers: %d, Model: %s, Blur: %s\n",
		len(jobs), cfg.Workers, cfg.Options.Model, cfg.Options.Blur)
	fmt.Printf("Light: angle=%.1f elevation=%.1f intensity=%.2f\n",
		cfg.Light.Angle, cfg.Light.Elevation, cfg.Light.Intensity)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	images := imageio.NewCache()
	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    outFormat,
		Workers:   cfg.Workers,
		Defaults:  params,
		Prep: session.Prep{
			Flip:           cfg.FlipForeground,
			Trim:           cfg.TrimForeground,
			Scale:          cfg.ForegroundScale,
			DespeckleRatio: cfg.DespeckleRatio,
		},
		Images: images,
	}, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs (%d images decoded)\n", elapsed.Seconds(), images.Len())

	success, failed := batch.Summary(results)
	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if failed > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			if shown == 20 {
				break
			}
			fmt.Printf("  %s: %s\n", r.Name, r.Error)
			shown++
		}
	}

	if *jobsFile == "" {
		if failed == 0 {
			for _, p := range results[0].Outputs {
				fmt.Printf("Wrote %s\n", p)
			}
		}
	} else {
		// Write manifest
		manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
