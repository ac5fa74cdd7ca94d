// Package server exposes the shadow engine over HTTP for interactive
// previews. Uploaded images stay in memory; every render is recomputed from
// scratch.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shadow-studio/internal/imageio"
	"shadow-studio/internal/raster"
	"shadow-studio/internal/session"
	"shadow-studio/internal/shadow"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Options configures the service.
type Options struct {
	CacheBytes int64          // pixel bytes kept in the asset store
	Prep       session.Prep   // applied to uploaded foregrounds
	Defaults   session.Params // used for fields a render body omits
	Format     imageio.Format // default output encoding

	MaxSessions int64         // preview sessions kept at once
	SessionTTL  time.Duration // idle time after which a session is dropped
}

// Server holds the asset store and one renderer per preview session.
type Server struct {
	store    *AssetStore
	sessions *SessionStore
	prep     session.Prep
	defaults session.Params
	format   imageio.Format
}

// SetupServer builds the echo instance with all routes registered.
// Logging, recovery and error reporting middleware are left to the caller.
func SetupServer(opts Options) (*echo.Echo, *Server, error) {
	if opts.CacheBytes <= 0 {
		opts.CacheBytes = 512 << 20
	}
	if opts.Format == "" {
		opts.Format = imageio.PNG
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1024
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	store, err := NewAssetStore(opts.CacheBytes)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := NewSessionStore(opts.MaxSessions, opts.SessionTTL)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	s := &Server{
		store:    store,
		sessions: sessions,
		prep:     opts.Prep,
		defaults: opts.Defaults,
		format:   opts.Format,
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.GET("/healthz", s.health)
	e.POST("/assets", s.upload)
	e.POST("/render", s.render)
	e.POST("/sessions/:id/render", s.renderSession)
	e.GET("/sessions/:id/latest", s.latest)

	return e, s, nil
}

// Close releases the asset and session stores.
func (s *Server) Close() {
	s.sessions.Close()
	s.store.Close()
}

// toHTTPError maps engine and store errors to status codes.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, session.ErrSuperseded):
		return echo.NewHTTPError(http.StatusConflict, "superseded")
	case errors.Is(err, ErrUnknownAsset):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrMissingAsset), errors.Is(err, shadow.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, raster.ErrResourceUnavailable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrStoreFull):
		return echo.NewHTTPError(http.StatusInsufficientStorage, err.Error())
	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}
	return nil
}

// errorHandler renders every error as {"error": message}. Unexpected errors
// become 500s and are reported to Sentry when the middleware is installed.
func errorHandler(err error, c echo.Context) {
	he := toHTTPError(err)
	if he == nil {
		captureException(c, err)
		log.Printf("server: %s %s: %v", c.Request().Method, c.Path(), err)
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(he.Code, map[string]string{"error": fmt.Sprint(he.Message)}); err != nil {
		log.Printf("server: write error response: %v", err)
	}
}
