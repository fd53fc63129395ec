// MODUL: gateway
// ZWECK: Ein logischer Aufruf run(InputTensor) -> ActivationGrid ueber feed/run/fetch
// INPUT: Normalisierter Eingabetensor (3*S*S float32)
// OUTPUT: Aktivierungsgitter (S*S float32), gehoert dem Gateway
// NEBENEFFEKTE: Blockiert fuer die Dauer der Inference
// ABHAENGIGKEITEN: Session, tensor (Shape)
// HINWEISE: Kein Retry, jeder Fehler ist ein InferenceFailure

package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/7blacky7/seglive/tensor"
)

// ErrInferenceFailure markiert alle Fehler des Gateways
var ErrInferenceFailure = errors.New("inference failure")

// Error beschreibt einen fehlgeschlagenen Protokollschritt.
// errors.Is(err, ErrInferenceFailure) ist immer wahr.
type Error struct {
	Op      string // "feed", "run", "fetch"
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return "inference: " + e.Op + " (" + e.Backend + "): " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{ErrInferenceFailure, e.Err}
}

// Gateway fuehrt Inference seriell aus. Nicht fuer parallele Aufrufe gedacht.
type Gateway struct {
	session Session
	cfg     Config
	shape   []int64
	outputs []string
	grid    []float32
	stats   string
}

// NewGateway verbindet eine offene Session mit der Konfiguration
func NewGateway(s Session, cfg Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gateway{
		session: s,
		cfg:     cfg,
		shape:   tensor.Shape(cfg.Layout, cfg.CropSize),
		outputs: []string{cfg.OutputName},
		grid:    make([]float32, cfg.Cells()),
	}, nil
}

// Open erstellt die Session ueber die DefaultRegistry
func Open(cfg Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := DefaultRegistry.Open(cfg)
	if err != nil {
		return nil, err
	}
	g, err := NewGateway(s, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	return g, nil
}

// Run fuettert input, fuehrt das Modell aus und holt das Gitter ab.
// Das Gitter bleibt bis zum naechsten Run gueltig.
func (g *Gateway) Run(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, g.fail("feed", err)
	}
	if want := 3 * g.cfg.Cells(); len(input) != want {
		return nil, g.fail("feed", fmt.Errorf("input has %d values, want %d", len(input), want))
	}

	if err := g.session.Feed(g.cfg.InputName, input, g.shape...); err != nil {
		return nil, g.fail("feed", err)
	}
	if err := g.session.Run(g.outputs, g.cfg.CollectStats); err != nil {
		return nil, g.fail("run", err)
	}
	if err := g.session.Fetch(g.cfg.OutputName, g.grid); err != nil {
		return nil, g.fail("fetch", err)
	}

	if g.cfg.CollectStats {
		g.stats = g.session.StatString()
	}
	return g.grid, nil
}

func (g *Gateway) fail(op string, err error) error {
	return &Error{Op: op, Backend: g.cfg.Backend, Err: err}
}

// StatString gibt die Statistik des letzten erfolgreichen Laufs zurueck
func (g *Gateway) StatString() string {
	return g.stats
}

// Backend gibt den Backend-Namen zurueck
func (g *Gateway) Backend() string {
	return g.cfg.Backend
}

// Config gibt die Konfiguration zurueck
func (g *Gateway) Config() Config {
	return g.cfg
}

// Close schliesst die Session
func (g *Gateway) Close() error {
	return g.session.Close()
}
