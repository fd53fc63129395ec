// Package api - JSON-Typen der Renderer-Schnittstelle.
// Enthaelt: StatusError, OverlayPoint, OverlayResponse, StatsResponse, VersionResponse, DumpResponse
package api

import (
	"fmt"
	"io"
	"time"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the seglive server logs for details"
	}
}

// OverlayPoint ist eine aktive Zelle in Frame-Koordinaten
type OverlayPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Score float32 `json:"score"`
}

// OverlayResponse ist der zuletzt veroeffentlichte Snapshot
type OverlayResponse struct {
	Seq            uint64    `json:"seq"`
	TraceID        string    `json:"trace_id"`
	Timestamp      time.Time `json:"timestamp"`
	FrameTimestamp int64     `json:"frame_timestamp"`
	FrameWidth     int       `json:"frame_width"`
	FrameHeight    int       `json:"frame_height"`
	CropSize       int       `json:"crop_size"`
	Rotation       int       `json:"rotation"`
	Threshold      float32   `json:"threshold"`

	InferenceDuration time.Duration `json:"inference_duration,omitempty"`
	CycleDuration     time.Duration `json:"cycle_duration,omitempty"`

	Points []OverlayPoint `json:"points"`
	// Debug enthaelt die Diagnosezeilen fuer die Anzeige
	Debug []string `json:"debug,omitempty"`
}

// StatsResponse enthaelt die Zaehler der Pipeline
type StatsResponse struct {
	State     string `json:"state"`
	Backend   string `json:"backend,omitempty"`
	Delivered uint64 `json:"delivered"`
	Admitted  uint64 `json:"admitted"`
	Dropped   uint64 `json:"dropped"`
	Malformed uint64 `json:"malformed"`
	Failures  uint64 `json:"failures"`
	Published uint64 `json:"published"`

	LastInference time.Duration `json:"last_inference,omitempty"`
	LastCycle     time.Duration `json:"last_cycle,omitempty"`

	// LumaMean fehlt wenn kein Helligkeits-Tracker laeuft
	LumaMean *float64 `json:"luma_mean,omitempty"`
}

// DropRate ist der Anteil verworfener Frames
func (s *StatsResponse) DropRate() float64 {
	if s.Delivered == 0 {
		return 0
	}
	return float64(s.Dropped) / float64(s.Delivered)
}

// Summary schreibt die Zaehler zeilenweise nach w
func (s *StatsResponse) Summary(w io.Writer) {
	fmt.Fprintf(w, "state:          %s\n", s.State)
	fmt.Fprintf(w, "delivered:      %d frame(s)\n", s.Delivered)
	fmt.Fprintf(w, "published:      %d overlay(s)\n", s.Published)
	fmt.Fprintf(w, "dropped:        %d (%.1f%%)\n", s.Dropped, 100*s.DropRate())

	if s.Failures > 0 || s.Malformed > 0 {
		fmt.Fprintf(w, "errors:         %d failed, %d malformed\n", s.Failures, s.Malformed)
	}

	if s.LastInference > 0 {
		fmt.Fprintf(w, "inference time: %s\n", s.LastInference)
	}

	if s.LumaMean != nil {
		fmt.Fprintf(w, "luma mean:      %.1f\n", *s.LumaMean)
	}
}

// VersionResponse wird von /api/version geliefert
type VersionResponse struct {
	Version string `json:"version"`
}

// DumpResponse bestaetigt eine Export-Anforderung
type DumpResponse struct {
	Dir string `json:"dir"`
}
