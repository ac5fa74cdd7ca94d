package main

import (
	"flag"
	"image"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"

	"shadow-studio/internal/config"
	"shadow-studio/internal/imageio"
	"shadow-studio/internal/placement"
	"shadow-studio/internal/server"
	"shadow-studio/internal/session"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	addr := flag.String("addr", "", "Listen address (default: :8080)")
	format := flag.String("format", "", "Default output format: png or webp")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if err := cfg.Resolve(config.Flags{Addr: *addr, Format: *format}); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	outFormat, _ := imageio.ParseFormat(cfg.Format)
	defaults := session.Params{
		Light:    cfg.Light,
		Shadow:   cfg.Shadow,
		Options:  cfg.Options,
		Position: image.Pt(cfg.X, cfg.Y),
		Margin:   cfg.Margin,
		DepthFit: cfg.DepthFit,
	}
	if cfg.Preset != "" {
		defaults.Preset, _ = placement.ParsePreset(cfg.Preset)
	}

	e, srv, err := server.SetupServer(server.Options{
		CacheBytes: int64(cfg.AssetCacheMB) << 20,
		Prep: session.Prep{
			Flip:           cfg.FlipForeground,
			Trim:           cfg.TrimForeground,
			Scale:          cfg.ForegroundScale,
			DespeckleRatio: cfg.DespeckleRatio,
		},
		Defaults: defaults,
		Format:   outFormat,
	})
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	defer srv.Close()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Error reporting is optional; the DSN comes from the environment
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			Environment:      os.Getenv("SENTRY_ENVIRONMENT"),
			Release:          "shadow-studio@1.0.0",
			TracesSampleRate: 0.2,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	log.Printf("shadow-studio listening on %s (model=%s blur=%s, cache=%dMB)",
		cfg.Addr, cfg.Options.Model, cfg.Options.Blur, cfg.AssetCacheMB)
	e.Logger.Fatal(e.Start(cfg.Addr))
}
