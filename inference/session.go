// Package inference kapselt das Segmentierungsmodell hinter einem synchronen Gateway.
//
// MODUL: session
// ZWECK: Drei-Schritt-Protokoll der Backends (feed, run, fetch) und Backend-Konfiguration
// INPUT: Config (Backend-Name, Modellpfad, Tensor-Namen, Crop-Groesse)
// OUTPUT: Session-Interface fuer Gateway und Backends
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: tensor (Layout)
// HINWEISE: Ein Backend pro Unterpaket (onnx, tflite), synthetic liegt hier
package inference

import (
	"fmt"

	"github.com/7blacky7/seglive/tensor"
)

// Session ist die Schnittstelle eines Inference-Backends.
// Aufrufe erfolgen seriell aus genau einem Worker.
type Session interface {
	// Feed kopiert data in den Eingabetensor name mit Form dims
	Feed(name string, data []float32, dims ...int64) error
	// Run fuehrt das Modell aus und berechnet die genannten Ausgaben
	Run(outputNames []string, collectStats bool) error
	// Fetch kopiert die Ausgabe name nach dst
	Fetch(name string, dst []float32) error
	// StatString beschreibt den letzten Lauf, leer ohne Statistik
	StatString() string
	// Close gibt alle Backend-Ressourcen frei
	Close() error
}

// Config beschreibt Modell und Tensoren eines Backends
type Config struct {
	Backend      string
	ModelPath    string
	InputName    string
	OutputName   string
	CropSize     int
	Layout       tensor.Layout
	NumThreads   int
	CollectStats bool

	// Options sind backend-spezifisch, z.B. "latency" fuer synthetic
	Options map[string]string
}

// DefaultConfig entspricht dem 128x128 Hand-Segmentierungsmodell
func DefaultConfig() Config {
	return Config{
		Backend:    "synthetic",
		InputName:  "input_1",
		OutputName: "activation_16/Sigmoid",
		CropSize:   128,
		Layout:     tensor.Planar,
	}
}

// Validate prueft die Felder, die jedes Backend braucht
func (c Config) Validate() error {
	if c.CropSize <= 0 {
		return fmt.Errorf("inference: crop size %d", c.CropSize)
	}
	if c.InputName == "" || c.OutputName == "" {
		return fmt.Errorf("inference: input and output names are required")
	}
	return nil
}

// Cells ist die Anzahl der Zellen im Aktivierungsgitter
func (c Config) Cells() int {
	return c.CropSize * c.CropSize
}
