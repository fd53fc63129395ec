package inference

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/7blacky7/seglive/tensor"
)

func TestSyntheticBrightCellsActivate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CropSize = 2
	cfg.CollectStats = true
	s, err := NewSynthetic(cfg)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGateway(s, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Zelle 0 und 3 hell (1.0), Zelle 1 und 2 dunkel (-1.0), planar
	input := []float32{
		1, -1, -1, 1,
		1, -1, -1, 1,
		1, -1, -1, 1,
	}
	grid, err := g.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if grid[0] < 0.95 || grid[3] < 0.95 {
		t.Errorf("helle zellen zu schwach: %v", grid)
	}
	if grid[1] > 0.01 || grid[2] > 0.01 {
		t.Errorf("dunkle zellen zu stark: %v", grid)
	}
	if g.StatString() == "" {
		t.Error("statistik fehlt")
	}
}

func TestSyntheticLayoutsAgree(t *testing.T) {
	// 2x2 Crop, dieselben Pixel in beiden Layouts
	planar := []float32{0.1, 0.5, 0.9, -0.4, 0.2, 0.6, 1.0, -0.2, 0.3, 0.7, -0.4, 0}
	interleaved := []float32{0.1, 0.2, 0.3, 0.5, 0.6, 0.7, 0.9, 1.0, -0.4, -0.4, -0.2, 0}

	run := func(layout tensor.Layout, input []float32) []float32 {
		cfg := Config{CropSize: 2, Layout: layout}
		s, err := NewSynthetic(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Feed("input_1", input, tensor.Shape(layout, 2)...); err != nil {
			t.Fatal(err)
		}
		if err := s.Run(nil, false); err != nil {
			t.Fatal(err)
		}
		out := make([]float32, 4)
		if err := s.Fetch("out", out); err != nil {
			t.Fatal(err)
		}
		return out
	}

	a := run(tensor.Planar, planar)
	b := run(tensor.Interleaved, interleaved)
	if diff := cmp.Diff(a, b, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("layouts weichen ab (-planar +interleaved):\n%s", diff)
	}
}

func TestSyntheticOptions(t *testing.T) {
	cfg := Config{CropSize: 1, Options: map[string]string{"latency": "5ms", "gain": "2", "bias": "0"}}
	s, err := NewSynthetic(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Latency.Milliseconds() != 5 || s.Gain != 2 || s.Bias != 0 {
		t.Errorf("optionen nicht uebernommen: %+v", s)
	}

	cfg.Options = map[string]string{"farbe": "rot"}
	if _, err := NewSynthetic(cfg); err == nil {
		t.Error("unbekannte option soll fehlschlagen")
	}
}

func TestSyntheticRejectsBadShape(t *testing.T) {
	s, _ := NewSynthetic(Config{CropSize: 2})
	if err := s.Feed("input_1", make([]float32, 12), 1, 2, 2, 3); err == nil {
		t.Error("interleaved form bei planarem backend soll fehlschlagen")
	}
	if err := s.Feed("input_1", make([]float32, 11), 1, 3, 2, 2); err == nil {
		t.Error("falsche laenge soll fehlschlagen")
	}
	if err := s.Run(nil, false); err == nil {
		t.Error("run ohne feed soll fehlschlagen")
	}
}
