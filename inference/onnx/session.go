//go:build onnx && cgo

// MODUL: onnx/session
// ZWECK: ONNX Runtime Session fuer das Segmentierungsmodell
// INPUT: Modell-Pfad (.onnx), Config (Tensor-Namen, Crop-Groesse, Threads)
// OUTPUT: inference.Session mit feed/run/fetch
// NEBENEFFEKTE: Alloziert ONNX Runtime Ressourcen, Close() MUSS aufgerufen werden
// ABHAENGIGKEITEN: onnxruntime_go
// HINWEISE: Option "library" setzt den Pfad zu libonnxruntime

package onnx

import (
	"fmt"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/7blacky7/seglive/inference"
	"github.com/7blacky7/seglive/tensor"
)

// ============================================================================
// Runtime Initialisierung (Singleton)
// ============================================================================

var (
	runtimeInitOnce sync.Once
	runtimeInitErr  error
)

// InitRuntime initialisiert die ONNX Runtime einmalig.
func InitRuntime(library string) error {
	runtimeInitOnce.Do(func() {
		if library != "" {
			ort.SetSharedLibraryPath(library)
		}
		runtimeInitErr = ort.InitializeEnvironment()
	})
	return runtimeInitErr
}

// ============================================================================
// Session
// ============================================================================

// Session haelt Eingabetensor und Ausgabe eines geladenen Modells
type Session struct {
	inner      *ort.DynamicAdvancedSession
	input      *ort.Tensor[float32]
	inputName  string
	outputName string
	output     []float32
	last       time.Duration
	runs       int
}

// Open laedt das Modell und allokiert den Eingabetensor fuer cfg.CropSize
func Open(cfg inference.Config) (inference.Session, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx: model path required")
	}
	if err := InitRuntime(cfg.Options["library"]); err != nil {
		return nil, fmt.Errorf("onnx: runtime init: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}
	defer opts.Destroy()

	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("onnx: threads setzen: %w", err)
		}
	}

	inner, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: session erstellen: %w", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(tensor.Shape(cfg.Layout, cfg.CropSize)...))
	if err != nil {
		inner.Destroy()
		return nil, fmt.Errorf("onnx: input tensor: %w", err)
	}

	return &Session{
		inner:      inner,
		input:      input,
		inputName:  cfg.InputName,
		outputName: cfg.OutputName,
		output:     make([]float32, 0, cfg.Cells()),
	}, nil
}

func (s *Session) Feed(name string, data []float32, dims ...int64) error {
	if name != s.inputName {
		return fmt.Errorf("onnx: unknown input %q", name)
	}
	shape := s.input.GetShape()
	if len(shape) != len(dims) {
		return fmt.Errorf("onnx: shape %v, session expects %v", dims, shape)
	}
	for i := range dims {
		if dims[i] != shape[i] {
			return fmt.Errorf("onnx: shape %v, session expects %v", dims, shape)
		}
	}
	copy(s.input.GetData(), data)
	return nil
}

func (s *Session) Run(outputNames []string, collectStats bool) error {
	if len(outputNames) != 1 || outputNames[0] != s.outputName {
		return fmt.Errorf("onnx: outputs %v, session computes %q", outputNames, s.outputName)
	}

	start := time.Now()
	// nil laesst ONNX Runtime den Ausgabetensor passend zum Modell allokieren
	outputs := []ort.ArbitraryTensor{nil}
	if err := s.inner.Run([]ort.ArbitraryTensor{s.input}, outputs); err != nil {
		return fmt.Errorf("onnx: run: %w", err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return fmt.Errorf("onnx: output %q is not float32", s.outputName)
	}
	s.output = append(s.output[:0], out.GetData()...)

	s.runs++
	if collectStats {
		s.last = time.Since(start)
	}
	return nil
}

func (s *Session) Fetch(name string, dst []float32) error {
	if name != s.outputName {
		return fmt.Errorf("onnx: unknown output %q", name)
	}
	if len(dst) != len(s.output) {
		return fmt.Errorf("onnx: output has %d values, want %d", len(s.output), len(dst))
	}
	copy(dst, s.output)
	return nil
}

func (s *Session) StatString() string {
	return fmt.Sprintf("onnx run %d\nsession time: %s", s.runs, s.last.Round(time.Microsecond))
}

// Close gibt Tensor und Session frei
func (s *Session) Close() error {
	var err error
	if s.input != nil {
		err = s.input.Destroy()
		s.input = nil
	}
	if s.inner != nil {
		if derr := s.inner.Destroy(); err == nil {
			err = derr
		}
		s.inner = nil
	}
	return err
}
