package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-studio/internal/imageio"
	"shadow-studio/internal/raster"
	"shadow-studio/internal/session"
)

func setup(t *testing.T) *echo.Echo {
	t.Helper()
	e, s, err := SetupServer(Options{CacheBytes: 64 << 20, Defaults: session.DefaultParams()})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return e
}

func pngBytes(t *testing.T, w, h int, alpha uint8) []byte {
	t.Helper()
	img, err := raster.NewImage(w, h)
	require.NoError(t, err)
	img.Fill(90, 120, 150, alpha)
	var buf bytes.Buffer
	require.NoError(t, imageio.Encode(&buf, img, imageio.PNG))
	return buf.Bytes()
}

func upload(t *testing.T, e *echo.Echo, kind string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("kind", kind))
	fw, err := mw.CreateFormFile("file", kind+".png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func uploadID(t *testing.T, e *echo.Echo, kind string, data []byte) AssetResponse {
	t.Helper()
	rec := upload(t, e, kind, data)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AssetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func postJSON(e *echo.Echo, target string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["error"]
}

func TestHealthz(t *testing.T) {
	e := setup(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestUploadAndRender(t *testing.T) {
	e := setup(t)
	fg := uploadID(t, e, "foreground", pngBytes(t, 16, 16, 255))
	bg := uploadID(t, e, "background", pngBytes(t, 80, 60, 255))
	assert.Equal(t, KindForeground, fg.Kind)
	assert.Equal(t, 80, bg.Width)
	assert.Equal(t, 60, bg.Height)

	rec := postJSON(e, "/render", map[string]interface{}{
		"foreground": fg.ID,
		"background": bg.ID,
		"preset":     "bottom-center",
		"margin":     4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "15", rec.Header().Get("X-Contact-Row"))

	img, format, err := imageio.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 80, img.Width)
	assert.Equal(t, 60, img.Height)
}

func TestRenderShadowAsWebP(t *testing.T) {
	e := setup(t)
	fg := uploadID(t, e, "foreground", pngBytes(t, 10, 10, 255))
	bg := uploadID(t, e, "background", pngBytes(t, 40, 40, 255))
	depth := uploadID(t, e, "depth", pngBytes(t, 20, 20, 255))

	rec := postJSON(e, "/render", map[string]interface{}{
		"foreground": fg.ID,
		"background": bg.ID,
		"depth":      depth.ID,
		"depth_fit":  true,
		"model":      "directional",
		"blur":       "distance",
		"output":     "shadow",
		"format":     "webp",
		"light":      map[string]float64{"angle": 45, "elevation": 60, "intensity": 1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/webp", rec.Header().Get(echo.HeaderContentType))

	img, format, err := imageio.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 40, img.Width)
}

func TestSessionRender(t *testing.T) {
	e := setup(t)
	fg := uploadID(t, e, "foreground", pngBytes(t, 8, 8, 255))
	bg := uploadID(t, e, "background", pngBytes(t, 32, 32, 255))

	for i := 0; i < 3; i++ {
		rec := postJSON(e, "/sessions/abc/render", map[string]interface{}{
			"foreground": fg.ID,
			"background": bg.ID,
			"x":          i,
			"y":          4,
			"output":     "mask",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestSessionLatest(t *testing.T) {
	e := setup(t)
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}
	assert.Equal(t, http.StatusNotFound, get("/sessions/s1/latest").Code)

	fg := uploadID(t, e, "foreground", pngBytes(t, 8, 8, 255))
	bg := uploadID(t, e, "background", pngBytes(t, 24, 20, 255))
	rec := postJSON(e, "/sessions/s1/render", map[string]interface{}{"foreground": fg.ID, "background": bg.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = get("/sessions/s1/latest?output=mask&format=webp")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Render-Seq"))
	assert.Equal(t, "image/webp", rec.Header().Get(echo.HeaderContentType))

	assert.Equal(t, http.StatusBadRequest, get("/sessions/s1/latest?format=tiff").Code)
}

func TestIdleSessionsAreReleased(t *testing.T) {
	e, s, err := SetupServer(Options{
		CacheBytes: 64 << 20,
		Defaults:   session.DefaultParams(),
		SessionTTL: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	fg := uploadID(t, e, "foreground", pngBytes(t, 8, 8, 255))
	bg := uploadID(t, e, "background", pngBytes(t, 24, 20, 255))
	for _, id := range []string{"a", "b", "c"} {
		rec := postJSON(e, "/sessions/"+id+"/render", map[string]interface{}{"foreground": fg.ID, "background": bg.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		_, ok := s.sessions.Lookup(id)
		require.True(t, ok, id)
	}

	time.Sleep(120 * time.Millisecond)
	for _, id := range []string{"a", "b", "c"} {
		_, ok := s.sessions.Lookup(id)
		assert.False(t, ok, id)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/latest", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestSessionStoreReusesRenderer(t *testing.T) {
	store, err := NewSessionStore(16, time.Minute)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	r := store.Acquire("one")
	assert.Same(t, r, store.Acquire("one"))
	assert.NotSame(t, r, store.Acquire("two"))

	got, ok := store.Lookup("one")
	require.True(t, ok)
	assert.Same(t, r, got)
	_, ok = store.Lookup("missing")
	assert.False(t, ok)
}

func TestRenderErrors(t *testing.T) {
	e := setup(t)
	fg := uploadID(t, e, "foreground", pngBytes(t, 8, 8, 255))
	bg := uploadID(t, e, "background", pngBytes(t, 32, 32, 255))

	cases := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"missing background", map[string]interface{}{"foreground": fg.ID}, http.StatusBadRequest},
		{"unknown asset", map[string]interface{}{"foreground": fg.ID, "background": "nope"}, http.StatusNotFound},
		{"wrong kind", map[string]interface{}{"foreground": fg.ID, "background": fg.ID}, http.StatusNotFound},
		{"elevation out of range", map[string]interface{}{
			"foreground": fg.ID, "background": bg.ID,
			"light": map[string]float64{"angle": 0, "elevation": 120, "intensity": 1},
		}, http.StatusBadRequest},
		{"blur radius too large", map[string]interface{}{
			"foreground": fg.ID, "background": bg.ID,
			"shadow": map[string]float64{"contact_darkness": 0.5, "max_blur_radius": 2e8, "falloff_distance": 50},
		}, http.StatusBadRequest},
		{"model alias", map[string]interface{}{"foreground": fg.ID, "background": bg.ID, "model": "point"}, http.StatusBadRequest},
		{"blur alias", map[string]interface{}{"foreground": fg.ID, "background": bg.ID, "blur": "off"}, http.StatusBadRequest},
		{"unknown model", map[string]interface{}{"foreground": fg.ID, "background": bg.ID, "model": "spot"}, http.StatusBadRequest},
		{"unknown preset", map[string]interface{}{"foreground": fg.ID, "background": bg.ID, "preset": "floor"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(e, "/render", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorBody(t, rec))
		})
	}
}

func TestUploadErrors(t *testing.T) {
	e := setup(t)

	rec := upload(t, e, "sky", pngBytes(t, 2, 2, 255))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, e, "background", []byte("garbage bytes"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "decode")

	req := httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader("kind=background"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	e := setup(t)
	e.GET("/fail/superseded", func(c echo.Context) error { return session.ErrSuperseded })
	e.GET("/fail/resource", func(c echo.Context) error {
		return fmt.Errorf("shadow: shadow layer: %w", raster.ErrResourceUnavailable)
	})
	e.GET("/fail/other", func(c echo.Context) error { return fmt.Errorf("boom") })

	cases := map[string]int{
		"/fail/superseded": http.StatusConflict,
		"/fail/resource":   http.StatusUnprocessableEntity,
		"/fail/other":      http.StatusInternalServerError,
		"/missing/route":   http.StatusNotFound,
	}
	for path, code := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail/superseded", nil))
	assert.Equal(t, "superseded", errorBody(t, rec))
}
