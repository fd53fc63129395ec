package source

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"

	// Decoder fuer image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/7blacky7/seglive/frame"
)

// Still spielt ein einzelnes Bild als Kamerastrom ab
type Still struct {
	FPS    float64
	Frames int

	frame *frame.RawFrame
}

// NewStill kodiert img einmal nach YUV420
func NewStill(img image.Image, rowPadding, pixelStride int) (*Still, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidSource)
	}
	return &Still{FPS: DefaultFPS, frame: EncodeYUV420(img, rowPadding, pixelStride)}, nil
}

// OpenStill laedt PNG, JPEG, BMP oder WebP von der Platte
func OpenStill(path string) (*Still, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidSource, path, err)
	}
	s, err := NewStill(img, 0, 1)
	if err != nil {
		return nil, err
	}
	slog.Debug("still image loaded", "path", path, "format", format, "width", s.frame.Width, "height", s.frame.Height)
	return s, nil
}

func (s *Still) Size() (int, int) {
	return s.frame.Width, s.frame.Height
}

// Frame gibt den kodierten Frame zurueck. Nicht veraendern waehrend Run laeuft.
func (s *Still) Frame() *frame.RawFrame {
	return s.frame
}

func (s *Still) Run(ctx context.Context, deliver func(*frame.RawFrame)) error {
	return loop(ctx, s.FPS, s.Frames, func(_ int, ts int64) {
		s.frame.Timestamp = ts
		deliver(s.frame)
	})
}
