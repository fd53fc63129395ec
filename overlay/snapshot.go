package overlay

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"
)

// Snapshot ist das Ergebnis eines abgeschlossenen Zyklus.
// Nach der Veroeffentlichung wird ein Snapshot nicht mehr veraendert.
type Snapshot struct {
	Seq            uint64
	TraceID        string
	Timestamp      time.Time
	FrameTimestamp int64

	FrameWidth  int
	FrameHeight int
	CropSize    int
	Rotation    int
	Threshold   float32

	InferenceDuration time.Duration
	CycleDuration     time.Duration

	Points []Point

	// Stats ist die Statistik des Backends, leer ohne CollectStats
	Stats string

	// Crop ist eine Kopie des Modell-Eingangs, nil ohne KeepCrop
	Crop *image.RGBA
}

// InferenceMillis ist die Inference-Dauer in Millisekunden
func (s *Snapshot) InferenceMillis() int64 {
	return s.InferenceDuration.Milliseconds()
}

// DebugLines liefert die Diagnosezeilen fuer den Debug-Overlay
func (s *Snapshot) DebugLines() []string {
	lines := []string{
		fmt.Sprintf("Frame: %dx%d", s.FrameWidth, s.FrameHeight),
		fmt.Sprintf("Crop: %dx%d", s.CropSize, s.CropSize),
		fmt.Sprintf("Rotation: %d", s.Rotation),
		fmt.Sprintf("Inference time: %dms", s.InferenceMillis()),
		fmt.Sprintf("Points: %d", len(s.Points)),
	}
	if s.Stats != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(s.Stats, "\n")...)
	}
	return lines
}

func (s *Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("seq", s.Seq),
		slog.String("trace", s.TraceID),
		slog.Int("points", len(s.Points)),
		slog.Duration("inference", s.InferenceDuration),
	)
}
