package pipeline

import (
	"fmt"
	"math"

	"github.com/7blacky7/seglive/geometry"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/tensor"
)

// Options konfigurieren eine Pipeline. Aenderungen nach New wirken nicht.
type Options struct {
	CropSize       int
	Rotation       int
	MaintainAspect bool

	Threshold     float32
	Normalization tensor.Normalization
	Layout        tensor.Layout
	Interpolation geometry.Interpolation
	Origin        overlay.CellOrigin
	Order         overlay.GridOrder

	// ConvertWorkers > 1 teilt die YUV-Konvertierung in Zeilenbaender
	ConvertWorkers int

	// DumpDir aktiviert den Debug-Export, DumpEvery schreibt in jedem Zyklus
	DumpDir   string
	DumpEvery bool

	// KeepCrop legt eine Kopie des Crops in jeden Snapshot
	KeepCrop bool

	// Trackers laufen fuer jeden Frame im Lieferpfad, auch waehrend eines Zyklus
	Trackers []Tracker
}

// DefaultOptions entspricht dem Hand-Segmentierungsmodell
func DefaultOptions() Options {
	return Options{
		CropSize:       128,
		MaintainAspect: true,
		Threshold:      overlay.DefaultThreshold,
		Normalization:  tensor.Default,
		Layout:         tensor.Planar,
		Interpolation:  geometry.Nearest,
		Origin:         overlay.CellCenter,
		Order:          overlay.RowMajor,
		ConvertWorkers: 1,
	}
}

// Validate prueft alle Felder, Fehler wrappen ErrConfiguration
func (o Options) Validate() error {
	if o.CropSize <= 0 {
		return fmt.Errorf("%w: crop size %d", ErrConfiguration, o.CropSize)
	}
	if o.Rotation%90 != 0 {
		return fmt.Errorf("%w: rotation %d is not a multiple of 90", ErrConfiguration, o.Rotation)
	}
	if math.IsNaN(float64(o.Threshold)) {
		return fmt.Errorf("%w: threshold is NaN", ErrConfiguration)
	}
	if err := o.Normalization.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if o.ConvertWorkers < 0 {
		return fmt.Errorf("%w: convert workers %d", ErrConfiguration, o.ConvertWorkers)
	}
	return nil
}

func (o Options) mapper() overlay.Mapper {
	return overlay.Mapper{Size: o.CropSize, Threshold: o.Threshold, Origin: o.Origin, Order: o.Order}
}

// SensorOrientation addiert Sensor- und Bildschirmrotation
func SensorOrientation(sensorRotation, screenRotation int) int {
	return geometry.NormalizeRotation(sensorRotation + screenRotation)
}
