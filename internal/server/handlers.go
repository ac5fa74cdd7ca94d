package server

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shadow-studio/internal/imageio"
	"shadow-studio/internal/placement"
	"shadow-studio/internal/raster"
	"shadow-studio/internal/session"
	"shadow-studio/internal/shadow"
)

type uploadForm struct {
	Kind string `validate:"required,oneof=foreground background depth"`
}

// AssetResponse describes a stored upload.
type AssetResponse struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LightBody mirrors shadow.Light with request validation.
type LightBody struct {
	Angle     float64 `json:"angle" validate:"gte=0,lte=360"`
	Elevation float64 `json:"elevation" validate:"gte=0,lte=90"`
	Intensity float64 `json:"intensity" validate:"gte=0"`
}

// ShadowBody mirrors shadow.Appearance with request validation.
type ShadowBody struct {
	ContactDarkness float64 `json:"contact_darkness" validate:"gte=0,lte=1"`
	MaxBlurRadius   float64 `json:"max_blur_radius" validate:"gte=0,lte=1000"`
	FalloffDistance float64 `json:"falloff_distance" validate:"gte=0"`
}

// RenderRequest is the JSON body of the render endpoints. Omitted fields
// keep the service defaults.
type RenderRequest struct {
	Foreground string     `json:"foreground" validate:"required"`
	Background string     `json:"background" validate:"required"`
	Depth      string     `json:"depth"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Preset     string     `json:"preset"`
	Margin     int        `json:"margin" validate:"gte=0"`
	DepthFit   bool       `json:"depth_fit"`
	Light      LightBody  `json:"light"`
	Shadow     ShadowBody `json:"shadow"`
	Model      string     `json:"model" validate:"omitempty,oneof=perspective directional"`
	Blur       string     `json:"blur" validate:"omitempty,oneof=uniform distance none"`
	Output     string     `json:"output" validate:"omitempty,oneof=composite shadow mask"`
	Format     string     `json:"format" validate:"omitempty,oneof=png webp"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// upload decodes a multipart image and stores it under a new id.
func (s *Server) upload(c echo.Context) error {
	form := uploadForm{Kind: c.FormValue("kind")}
	if err := c.Validate(&form); err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := imageio.Decode(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("decode %s: %v", fh.Filename, err))
	}

	asset := Asset{Kind: Kind(form.Kind)}
	switch asset.Kind {
	case KindForeground:
		var a *session.Assets
		if a, err = a.WithForeground(img, s.prep); err != nil {
			return err
		}
		asset.Image, asset.Mask = a.Foreground, a.Mask
	case KindBackground:
		asset.Image = img
	case KindDepth:
		asset.Depth = raster.DepthFromRed(img)
	}

	stored, err := s.store.Put(asset)
	if err != nil {
		return err
	}
	w, h := stored.Size()
	return c.JSON(http.StatusCreated, AssetResponse{ID: stored.ID, Kind: stored.Kind, Width: w, Height: h})
}

func (s *Server) render(c echo.Context) error {
	body, req, err := s.prepare(c)
	if err != nil {
		return err
	}
	res, err := shadow.Generate(req)
	if err != nil {
		return err
	}
	return s.respond(c, body, res)
}

// renderSession renders with last-writer-wins semantics per session id.
func (s *Server) renderSession(c echo.Context) error {
	body, req, err := s.prepare(c)
	if err != nil {
		return err
	}
	res, err := s.sessions.Acquire(c.Param("id")).Submit(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return s.respond(c, body, res)
}

// latest re-encodes the session's newest published render. The output and
// format query parameters select the image as in the render body.
func (s *Server) latest(c echo.Context) error {
	q := struct {
		Output string `query:"output" validate:"omitempty,oneof=composite shadow mask"`
		Format string `query:"format" validate:"omitempty,oneof=png webp"`
	}{}
	if err := c.Bind(&q); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	r, ok := s.sessions.Lookup(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	out, ok := r.Latest()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no render published yet")
	}
	c.Response().Header().Set("X-Render-Seq", strconv.FormatUint(out.Seq, 10))
	return s.respond(c, RenderRequest{Output: q.Output, Format: q.Format}, out.Result)
}

// prepare binds and validates the body and assembles the engine request.
func (s *Server) prepare(c echo.Context) (RenderRequest, shadow.Request, error) {
	d := s.defaults
	body := RenderRequest{
		X:      d.Position.X,
		Y:      d.Position.Y,
		Preset: string(d.Preset),
		Margin: d.Margin,
		Light:  LightBody(d.Light),
		Shadow: ShadowBody(d.Shadow),
	}
	if err := c.Bind(&body); err != nil {
		return body, shadow.Request{}, err
	}
	if err := c.Validate(&body); err != nil {
		return body, shadow.Request{}, err
	}

	p := session.Params{
		Light:    shadow.Light(body.Light),
		Shadow:   shadow.Appearance(body.Shadow),
		Options:  d.Options,
		Position: image.Pt(body.X, body.Y),
		Margin:   body.Margin,
		DepthFit: body.DepthFit || d.DepthFit,
	}
	var err error
	if body.Preset != "" {
		if p.Preset, err = placement.ParsePreset(body.Preset); err != nil {
			return body, shadow.Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if body.Model != "" {
		if p.Options.Model, err = shadow.ParseModel(body.Model); err != nil {
			return body, shadow.Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if body.Blur != "" {
		if p.Options.Blur, err = shadow.ParseBlurMode(body.Blur); err != nil {
			return body, shadow.Request{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	assets, err := s.assets(body)
	if err != nil {
		return body, shadow.Request{}, err
	}
	req, err := assets.Request(p)
	return body, req, err
}

// assets gathers the stored images named by body into a snapshot.
func (s *Server) assets(body RenderRequest) (*session.Assets, error) {
	fg, err := s.store.Get(body.Foreground, KindForeground)
	if err != nil {
		return nil, err
	}
	bg, err := s.store.Get(body.Background, KindBackground)
	if err != nil {
		return nil, err
	}
	a := &session.Assets{Foreground: fg.Image, Mask: fg.Mask, Background: bg.Image}
	if body.Depth != "" {
		d, err := s.store.Get(body.Depth, KindDepth)
		if err != nil {
			return nil, err
		}
		a = a.WithDepth(d.Depth)
	}
	return a, nil
}

// respond encodes the selected output image.
func (s *Server) respond(c echo.Context, body RenderRequest, res shadow.Result) error {
	format := s.format
	if body.Format != "" {
		format = imageio.Format(body.Format)
	}

	img := res.Composite
	switch body.Output {
	case "shadow":
		img = res.ShadowOnly
	case "mask":
		img = res.MaskDebug
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, format); err != nil {
		return err
	}
	h := c.Response().Header()
	h.Set("X-Contact-Row", strconv.Itoa(res.ContactRow))
	h.Set("X-Anchor-Row", strconv.Itoa(res.AnchorRow))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
