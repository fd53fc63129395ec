package inference

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/7blacky7/seglive/tensor"
)

func init() {
	Register("synthetic", func(cfg Config) (Session, error) {
		return NewSynthetic(cfg)
	})
}

// Synthetic ist ein reines Go-Backend ohne Modelldatei.
// Helle Bereiche des Crops ergeben hohe Aktivierungen, gedacht fuer Demos und Benchmarks.
type Synthetic struct {
	Gain    float64
	Bias    float64
	Latency time.Duration

	layout  tensor.Layout
	shape   []int64
	input   []float32
	grid    []float32
	runs    int
	active  int
	elapsed time.Duration
}

// NewSynthetic liest "gain", "bias" und "latency" aus cfg.Options
func NewSynthetic(cfg Config) (*Synthetic, error) {
	s := &Synthetic{
		Gain:   8,
		Bias:   0.5,
		layout: cfg.Layout,
		shape:  tensor.Shape(cfg.Layout, cfg.CropSize),
		grid:   make([]float32, cfg.Cells()),
	}

	for key, value := range cfg.Options {
		var err error
		switch key {
		case "gain":
			s.Gain, err = strconv.ParseFloat(value, 64)
		case "bias":
			s.Bias, err = strconv.ParseFloat(value, 64)
		case "latency":
			s.Latency, err = time.ParseDuration(value)
		default:
			err = fmt.Errorf("unknown option")
		}
		if err != nil {
			return nil, fmt.Errorf("synthetic: option %s=%q: %w", key, value, err)
		}
	}
	return s, nil
}

func (s *Synthetic) Feed(name string, data []float32, dims ...int64) error {
	if !slices.Equal(dims, s.shape) {
		return fmt.Errorf("synthetic: shape %v, want %v", dims, s.shape)
	}
	if len(data) != 3*len(s.grid) {
		return fmt.Errorf("synthetic: %d values for shape %v", len(data), dims)
	}
	s.input = data
	return nil
}

func (s *Synthetic) Run(outputNames []string, collectStats bool) error {
	if s.input == nil {
		return fmt.Errorf("synthetic: run before feed")
	}
	start := time.Now()

	planar := s.layout == tensor.Planar
	cells := len(s.grid)

	s.active = 0
	for i := range cells {
		var sum float32
		if planar {
			sum = s.input[i] + s.input[cells+i] + s.input[2*cells+i]
		} else {
			sum = s.input[i*3] + s.input[i*3+1] + s.input[i*3+2]
		}
		score := 1 / (1 + math.Exp(-s.Gain*(float64(sum/3)-s.Bias)))
		s.grid[i] = float32(score)
		if score > 0.5 {
			s.active++
		}
	}

	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}

	s.runs++
	if collectStats {
		s.elapsed = time.Since(start)
	}
	return nil
}

func (s *Synthetic) Fetch(name string, dst []float32) error {
	if len(dst) != len(s.grid) {
		return fmt.Errorf("synthetic: fetch %s into %d values, have %d", name, len(dst), len(s.grid))
	}
	copy(dst, s.grid)
	return nil
}

func (s *Synthetic) StatString() string {
	return fmt.Sprintf("synthetic run %d\ncells above 0.5: %d\nrun time: %s", s.runs, s.active, s.elapsed.Round(time.Microsecond))
}

func (s *Synthetic) Close() error {
	s.input = nil
	return nil
}
