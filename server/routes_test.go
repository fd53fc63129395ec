package server

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/seglive/api"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/pipeline"
	"github.com/7blacky7/seglive/source"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePipeline struct {
	snap  *overlay.Snapshot
	stats pipeline.Stats
	opts  pipeline.Options
	dumps int
}

func (f *fakePipeline) Latest() *overlay.Snapshot { return f.snap }
func (f *fakePipeline) Stats() pipeline.Stats     { return f.stats }
func (f *fakePipeline) Options() pipeline.Options { return f.opts }
func (f *fakePipeline) RequestDump() bool {
	if f.opts.DumpDir == "" {
		return false
	}
	f.dumps++
	return true
}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.GenerateRoutes().ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	s := New(&fakePipeline{}, "synthetic", nil)
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		w := serve(t, s, method, "/")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, "seglive is running", serve(t, s, http.MethodGet, "/").Body.String())

	var v api.VersionResponse
	w := serve(t, s, http.MethodGet, "/api/version")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.NotEmpty(t, v.Version)
}

func TestOverlayHandler(t *testing.T) {
	fp := &fakePipeline{}
	s := New(fp, "synthetic", nil)

	w := serve(t, s, http.MethodGet, "/api/overlay")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no overlay yet"}`, w.Body.String())

	fp.snap = &overlay.Snapshot{
		Seq:               7,
		TraceID:           "abc",
		FrameWidth:        640,
		FrameHeight:       480,
		CropSize:          128,
		Threshold:         0.2,
		InferenceDuration: 3 * time.Millisecond,
		Points:            []overlay.Point{{X: 321.875, Y: 241.875, Row: 64, Col: 64, Score: 0.9}},
	}

	w = serve(t, s, http.MethodGet, "/api/overlay")
	require.Equal(t, http.StatusOK, w.Code)

	var got api.OverlayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	want := []api.OverlayPoint{{X: 321.875, Y: 241.875, Row: 64, Col: 64, Score: 0.9}}
	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("punkte (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(7), got.Seq)
	assert.Contains(t, got.Debug, "Frame: 640x480")
	assert.Contains(t, got.Debug, "Inference time: 3ms")
}

func TestOverlayHandlerEmptyPoints(t *testing.T) {
	s := New(&fakePipeline{snap: &overlay.Snapshot{Seq: 1}}, "synthetic", nil)
	w := serve(t, s, http.MethodGet, "/api/overlay")
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, []any{}, raw["points"], "leere Liste statt null")
}

func TestStatsHandler(t *testing.T) {
	fp := &fakePipeline{stats: pipeline.Stats{State: pipeline.StateProcessing, Delivered: 9, Dropped: 3, Published: 2}}
	luma := &pipeline.LumaTracker{}
	s := New(fp, "onnx", luma)

	var got api.StatsResponse
	w := serve(t, s, http.MethodGet, "/api/stats")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "processing", got.State)
	assert.Equal(t, "onnx", got.Backend)
	assert.Equal(t, uint64(3), got.Dropped)
	assert.Nil(t, got.LumaMean, "ohne gemessene Frames kein Mittelwert")
}

func TestDumpHandler(t *testing.T) {
	fp := &fakePipeline{}
	s := New(fp, "synthetic", nil)
	assert.Equal(t, http.StatusConflict, serve(t, s, http.MethodPost, "/api/dump").Code)

	fp.opts.DumpDir = "/tmp/seglive"
	w := serve(t, s, http.MethodPost, "/api/dump")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"dir":"/tmp/seglive"}`, w.Body.String())
	assert.Equal(t, 1, fp.dumps)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, s, http.MethodGet, "/api/dump").Code)
}

func TestCropHandler(t *testing.T) {
	fp := &fakePipeline{snap: &overlay.Snapshot{Seq: 1}}
	s := New(fp, "synthetic", nil)
	assert.Equal(t, http.StatusNotFound, serve(t, s, http.MethodGet, "/api/crop.png").Code)

	fp.snap.Crop = image.NewRGBA(image.Rect(0, 0, 8, 8))
	w := serve(t, s, http.MethodGet, "/api/crop.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestAllowedHosts(t *testing.T) {
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 11534}
	s := &Server{pipeline: &fakePipeline{}, addr: addr}
	h := s.GenerateRoutes()

	cases := map[string]int{
		"localhost:11534":    http.StatusOK,
		"127.0.0.1:11534":    http.StatusOK,
		"kamera.local":       http.StatusOK,
		"example.com":        http.StatusForbidden,
		"evil.example.com:1": http.StatusForbidden,
	}
	for host, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, host)
	}
}

type solidInferer struct{ grid []float32 }

func (s solidInferer) Run(context.Context, []float32) ([]float32, error) { return s.grid, nil }

func TestServeEndToEnd(t *testing.T) {
	opts := pipeline.DefaultOptions()
	opts.CropSize = 8
	grid := make([]float32, 64)
	grid[9] = 0.7

	luma := &pipeline.LumaTracker{Step: 4}
	opts.Trackers = []pipeline.Tracker{luma}
	p, err := pipeline.New(solidInferer{grid: grid}, opts)
	require.NoError(t, err)

	src := source.NewSynthetic(64, 48)
	f, err := src.Render(0)
	require.NoError(t, err)
	require.True(t, p.OnFrame(f))
	require.Eventually(t, func() bool { return p.Latest() != nil }, 2*time.Second, time.Millisecond)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- New(p, "synthetic", luma).Serve(ctx, ln) }()

	base := &url.URL{Scheme: "http", Host: ln.Addr().String()}
	client := api.NewClient(base, http.DefaultClient)

	ov, err := client.Overlay(t.Context())
	require.NoError(t, err)
	require.Len(t, ov.Points, 1)
	assert.Equal(t, 1, ov.Points[0].Row)
	assert.Equal(t, 1, ov.Points[0].Col)

	st, err := client.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.Published)
	require.NotNil(t, st.LumaMean)
	assert.InDelta(t, 128, *st.LumaMean, 1e-9)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, p.Stop(context.Background()))
}
