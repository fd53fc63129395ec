package geometry

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Interpolation waehlt das Resampling fuer den Crop
type Interpolation int

const (
	Nearest Interpolation = iota
	Bilinear
)

func (i Interpolation) String() string {
	switch i {
	case Bilinear:
		return "bilinear"
	default:
		return "nearest"
	}
}

// ParseInterpolation liest "nearest" oder "bilinear"
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	}
	return Nearest, fmt.Errorf("%w: unknown interpolation %q", ErrInvalidParams, s)
}

func (i Interpolation) transformer() draw.Transformer {
	if i == Bilinear {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// Crop tastet src ueber die Forward-Matrix in dst ab.
// Vom Frame nicht abgedeckte Crop-Pixel bleiben schwarz.
func Crop(dst, src *image.RGBA, t *Transform, interp Interpolation) error {
	if b := dst.Bounds(); b.Dx() != t.Params.CropSize || b.Dy() != t.Params.CropSize {
		return fmt.Errorf("%w: crop target %dx%d, want %d", ErrInvalidParams, b.Dx(), b.Dy(), t.Params.CropSize)
	}
	if b := src.Bounds(); b.Dx() != t.Params.FrameWidth || b.Dy() != t.Params.FrameHeight {
		return fmt.Errorf("%w: frame %dx%d, transform expects %dx%d",
			ErrInvalidParams, b.Dx(), b.Dy(), t.Params.FrameWidth, t.Params.FrameHeight)
	}

	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	// Aff3 verwendet absolute Koordinaten, daher auf Min-Ecken beziehen
	m := Translate(float64(dst.Rect.Min.X), float64(dst.Rect.Min.Y)).
		Mul(t.Forward).
		Mul(Translate(-float64(src.Rect.Min.X), -float64(src.Rect.Min.Y)))

	interp.transformer().Transform(dst, m.Aff3(), src, src.Bounds(), draw.Src, nil)
	return nil
}
