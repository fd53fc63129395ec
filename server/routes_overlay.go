// routes_overlay.go - Handler fuer Overlay, Zaehler, Crop und Debug-Export
// Enthaelt: VersionHandler, OverlayHandler, StatsHandler, CropHandler, DumpHandler

package server

import (
	"bytes"
	"image/png"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/seglive/api"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/version"
)

func (s *Server) VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version})
}

// OverlayHandler liefert den zuletzt veroeffentlichten Snapshot
func (s *Server) OverlayHandler(c *gin.Context) {
	snap := s.pipeline.Latest()
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no overlay yet"})
		return
	}
	c.JSON(http.StatusOK, overlayResponse(snap))
}

func overlayResponse(snap *overlay.Snapshot) api.OverlayResponse {
	points := make([]api.OverlayPoint, len(snap.Points))
	for i, p := range snap.Points {
		points[i] = api.OverlayPoint{X: p.X, Y: p.Y, Row: p.Row, Col: p.Col, Score: p.Score}
	}

	return api.OverlayResponse{
		Seq:               snap.Seq,
		TraceID:           snap.TraceID,
		Timestamp:         snap.Timestamp,
		FrameTimestamp:    snap.FrameTimestamp,
		FrameWidth:        snap.FrameWidth,
		FrameHeight:       snap.FrameHeight,
		CropSize:          snap.CropSize,
		Rotation:          snap.Rotation,
		Threshold:         snap.Threshold,
		InferenceDuration: snap.InferenceDuration,
		CycleDuration:     snap.CycleDuration,
		Points:            points,
		Debug:             snap.DebugLines(),
	}
}

func (s *Server) StatsHandler(c *gin.Context) {
	st := s.pipeline.Stats()
	resp := api.StatsResponse{
		State:         st.State.String(),
		Backend:       s.backend,
		Delivered:     st.Delivered,
		Admitted:      st.Admitted,
		Dropped:       st.Dropped,
		Malformed:     st.Malformed,
		Failures:      st.Failures,
		Published:     st.Published,
		LastInference: st.LastInference,
		LastCycle:     st.LastCycle,
	}
	if s.luma != nil && s.luma.Frames() > 0 {
		mean := s.luma.Mean()
		resp.LumaMean = &mean
	}
	c.JSON(http.StatusOK, resp)
}

// CropHandler liefert den Crop des letzten Snapshots als PNG
func (s *Server) CropHandler(c *gin.Context) {
	snap := s.pipeline.Latest()
	if snap == nil || snap.Crop == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no crop available"})
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, snap.Crop); err != nil {
		slog.Error("crop encode failed", "seq", snap.Seq, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// DumpHandler fordert den Debug-Export fuer den naechsten Zyklus an
func (s *Server) DumpHandler(c *gin.Context) {
	if !s.pipeline.RequestDump() {
		c.JSON(http.StatusConflict, gin.H{"error": "no dump directory configured"})
		return
	}
	c.JSON(http.StatusAccepted, api.DumpResponse{Dir: s.pipeline.Options().DumpDir})
}
