package source

import (
	"context"
	"fmt"

	"github.com/7blacky7/seglive/frame"
)

// Pattern bestimmt den Bildinhalt der synthetischen Quelle
type Pattern int

const (
	// Solid ist eine einfarbige Flaeche
	Solid Pattern = iota
	// Moving ist ein helles Quadrat, das pro Frame nach rechts wandert
	Moving
)

func (p Pattern) String() string {
	if p == Moving {
		return "moving"
	}
	return "solid"
}

// ParsePattern akzeptiert "solid" und "moving"
func ParsePattern(s string) (Pattern, error) {
	switch s {
	case "", "solid":
		return Solid, nil
	case "moving":
		return Moving, nil
	}
	return Solid, fmt.Errorf("%w: unknown pattern %q", ErrInvalidSource, s)
}

// Synthetic erzeugt Frames ohne Kamera. Alle Puffer werden einmal angelegt und wiederverwendet.
type Synthetic struct {
	Width, Height int
	FPS           float64
	// Frames > 0 beendet Run nach dieser Anzahl
	Frames int

	RowPadding  int
	PixelStride int
	Pattern     Pattern

	// Farbe der Flaeche, bei Moving der Hintergrund
	Y, U, V byte
}

// NewSynthetic liefert eine graue Quelle mit planaren Ebenen
func NewSynthetic(width, height int) *Synthetic {
	return &Synthetic{Width: width, Height: height, FPS: DefaultFPS, PixelStride: 1, Y: 128, U: 128, V: 128}
}

func (s *Synthetic) Size() (int, int) {
	return s.Width, s.Height
}

func (s *Synthetic) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidSource, s.Width, s.Height)
	}
	if s.PixelStride != 0 && s.PixelStride != 1 && s.PixelStride != 2 {
		return fmt.Errorf("%w: pixel stride %d", ErrInvalidSource, s.PixelStride)
	}
	if s.RowPadding < 0 {
		return fmt.Errorf("%w: row padding %d", ErrInvalidSource, s.RowPadding)
	}
	return nil
}

// Run liefert Frames bis ctx endet oder Frames erreicht ist
func (s *Synthetic) Run(ctx context.Context, deliver func(*frame.RawFrame)) error {
	if err := s.validate(); err != nil {
		return err
	}

	f := s.allocate()
	return loop(ctx, s.FPS, s.Frames, func(n int, ts int64) {
		s.render(f, n)
		f.Timestamp = ts
		deliver(f)
	})
}

// Render zeichnet Frame n in einen neu angelegten Frame
func (s *Synthetic) Render(n int) (*frame.RawFrame, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	f := s.allocate()
	s.render(f, n)
	return f, nil
}

func (s *Synthetic) allocate() *frame.RawFrame {
	f := planeLayout{width: s.Width, height: s.Height, rowPadding: s.RowPadding, pixelStride: s.PixelStride}.allocate()
	cw, ch := (s.Width+1)/2, (s.Height+1)/2
	fillPlane(f.U, cw, ch, s.U)
	fillPlane(f.V, cw, ch, s.V)
	return f
}

func (s *Synthetic) render(f *frame.RawFrame, n int) {
	if s.Pattern == Solid {
		// Luma ist konstant, nur beim ersten Frame schreiben
		if n == 0 {
			fillPlane(f.Y, s.Width, s.Height, s.Y)
		}
		return
	}

	fillPlane(f.Y, s.Width, s.Height, s.Y)
	side := max(min(s.Width, s.Height)/4, 1)
	x0 := (n * 4) % max(s.Width-side+1, 1)
	y0 := (s.Height - side) / 2
	for y := y0; y < y0+side; y++ {
		row := f.Y.Data[y*f.Y.RowStride:]
		for x := x0; x < x0+side; x++ {
			row[x] = 235
		}
	}
}

// fillPlane setzt die adressierten Bytes einer Ebene, Polsterung bleibt unberuehrt
func fillPlane(p frame.Plane, width, height int, v byte) {
	ps := max(p.PixelStride, 1)
	for y := range height {
		off := y * p.RowStride
		for x := range width {
			p.Data[off+x*ps] = v
		}
	}
}
