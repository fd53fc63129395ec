//go:build tflite && cgo

// MODUL: tflite/session
// ZWECK: TensorFlow Lite Interpreter als inference.Session
// INPUT: Modell-Pfad (.tflite), Config (Threads, Crop-Groesse)
// OUTPUT: feed/run/fetch auf Eingabe 0 und Ausgabe 0 des Interpreters
// NEBENEFFEKTE: Alloziert Interpreter-Speicher, Close() MUSS aufgerufen werden
// ABHAENGIGKEITEN: github.com/mattn/go-tflite
// HINWEISE: Tensor-Namen werden gegen die Modell-Metadaten geprueft wenn vorhanden

package tflite

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-tflite"

	"github.com/7blacky7/seglive/inference"
)

// Session kapselt Modell, Optionen und Interpreter
type Session struct {
	model   *tflite.Model
	options *tflite.InterpreterOptions
	interp  *tflite.Interpreter

	inputName  string
	outputName string
	last       time.Duration
	runs       int
}

// Open laedt das Modell und allokiert die Tensoren
func Open(cfg inference.Config) (inference.Session, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("tflite: model path required")
	}

	model := tflite.NewModelFromFile(cfg.ModelPath)
	if model == nil {
		return nil, fmt.Errorf("tflite: cannot load model %s", cfg.ModelPath)
	}

	options := tflite.NewInterpreterOptions()
	if cfg.NumThreads > 0 {
		options.SetNumThread(cfg.NumThreads)
	}
	options.SetErrorReporter(func(msg string, _ interface{}) {
		slog.Warn("tflite", "msg", msg)
	}, nil)

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("tflite: cannot create interpreter")
	}

	s := &Session{
		model:      model,
		options:    options,
		interp:     interp,
		inputName:  cfg.InputName,
		outputName: cfg.OutputName,
	}
	if status := interp.AllocateTensors(); status != tflite.OK {
		s.Close()
		return nil, fmt.Errorf("tflite: allocate tensors: status %v", status)
	}

	if in := interp.GetInputTensor(0); in.Type() != tflite.Float32 {
		s.Close()
		return nil, fmt.Errorf("tflite: input type %v, want float32", in.Type())
	}
	return s, nil
}

// nameMatches akzeptiert Modelle ohne Namen in den Metadaten
func nameMatches(got, want string) bool {
	return got == "" || got == want
}

func (s *Session) Feed(name string, data []float32, dims ...int64) error {
	in := s.interp.GetInputTensor(0)
	if !nameMatches(in.Name(), name) {
		return fmt.Errorf("tflite: input is %q, not %q", in.Name(), name)
	}
	if in.NumDims() != len(dims) {
		return fmt.Errorf("tflite: shape %v has %d dims, model %d", dims, len(dims), in.NumDims())
	}
	for i, d := range dims {
		if int64(in.Dim(i)) != d {
			return fmt.Errorf("tflite: dim %d is %d, model expects %d", i, d, in.Dim(i))
		}
	}

	buf := in.Float32s()
	if len(buf) != len(data) {
		return fmt.Errorf("tflite: input has %d values, model %d", len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

func (s *Session) Run(outputNames []string, collectStats bool) error {
	start := time.Now()
	if status := s.interp.Invoke(); status != tflite.OK {
		return fmt.Errorf("tflite: invoke: status %v", status)
	}
	s.runs++
	if collectStats {
		s.last = time.Since(start)
	}
	return nil
}

func (s *Session) Fetch(name string, dst []float32) error {
	out := s.interp.GetOutputTensor(0)
	if !nameMatches(out.Name(), name) {
		return fmt.Errorf("tflite: output is %q, not %q", out.Name(), name)
	}
	buf := out.Float32s()
	if len(buf) != len(dst) {
		return fmt.Errorf("tflite: output has %d values, want %d", len(buf), len(dst))
	}
	copy(dst, buf)
	return nil
}

func (s *Session) StatString() string {
	return fmt.Sprintf("tflite run %d\ninvoke time: %s", s.runs, s.last.Round(time.Microsecond))
}

// Close gibt Interpreter, Optionen und Modell frei
func (s *Session) Close() error {
	if s.interp != nil {
		s.interp.Delete()
		s.interp = nil
	}
	if s.options != nil {
		s.options.Delete()
		s.options = nil
	}
	if s.model != nil {
		s.model.Delete()
		s.model = nil
	}
	return nil
}
