// MODUL: geometry/transform
// ZWECK: Transformation vom vollen Kamerabild in den quadratischen Modell-Crop
// INPUT: Params (Frame-Groesse, Crop-Groesse, Rotation, Seitenverhaeltnis)
// OUTPUT: Transform mit Forward- und exakter Inverse-Matrix
// NEBENEFFEKTE: Keine, Cache publiziert atomar
// ABHAENGIGKEITEN: affine.go
// HINWEISE: MaintainAspect fuellt den Crop vollstaendig, Ueberstand wird zentriert abgeschnitten

package geometry

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidParams meldet unbrauchbare Geometrie-Parameter
var ErrInvalidParams = errors.New("geometry: invalid parameters")

// Params bestimmen eine Transformation eindeutig
type Params struct {
	FrameWidth     int
	FrameHeight    int
	CropSize       int
	Rotation       int // Grad, Vielfaches von 90
	MaintainAspect bool
}

// Validate prueft Groessen und Rotation
func (p Params) Validate() error {
	if p.FrameWidth <= 0 || p.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidParams, p.FrameWidth, p.FrameHeight)
	}
	if p.CropSize <= 0 {
		return fmt.Errorf("%w: crop size %d", ErrInvalidParams, p.CropSize)
	}
	if p.Rotation%90 != 0 {
		return fmt.Errorf("%w: rotation %d is not a multiple of 90", ErrInvalidParams, p.Rotation)
	}
	return nil
}

func (p Params) normalized() Params {
	p.Rotation = NormalizeRotation(p.Rotation)
	return p
}

// Transform ist ein unveraenderliches Paar aus Forward und Inverse
type Transform struct {
	Params  Params
	Forward Affine // Frame -> Crop
	Inverse Affine // Crop -> Frame
}

// Compute berechnet die Transformation und ihre Inverse.
// Reihenfolge: Frame-Mitte in den Ursprung, drehen, skalieren, in die Crop-Mitte.
func Compute(p Params) (*Transform, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.normalized()

	fw, fh := float64(p.FrameWidth), float64(p.FrameHeight)
	crop := float64(p.CropSize)

	m := Translate(-fw/2, -fh/2).Then(Rotate(p.Rotation))

	inW, inH := fw, fh
	if p.Rotation == 90 || p.Rotation == 270 {
		inW, inH = fh, fw
	}

	sx, sy := crop/inW, crop/inH
	if p.MaintainAspect {
		s := max(sx, sy)
		sx, sy = s, s
	}
	m = m.Then(Scale(sx, sy)).Then(Translate(crop/2, crop/2))

	inv, err := m.Inverse()
	if err != nil {
		return nil, err
	}

	return &Transform{Params: p, Forward: m, Inverse: inv}, nil
}

// ToCrop bildet Frame-Koordinaten in den Crop ab
func (t *Transform) ToCrop(x, y float64) (float64, float64) {
	return t.Forward.Apply(x, y)
}

// ToFrame bildet Crop-Koordinaten zurueck ins Frame ab
func (t *Transform) ToFrame(x, y float64) (float64, float64) {
	return t.Inverse.Apply(x, y)
}

// ============================================================================
// Cache
// ============================================================================

// Cache haelt die zuletzt berechnete Transformation.
// Neuberechnung nur bei geaenderten Params, Forward und Inverse werden als Paar ersetzt.
type Cache struct {
	cur atomic.Pointer[Transform]
}

// Get gibt die passende Transformation zurueck und berechnet sie bei Bedarf neu
func (c *Cache) Get(p Params) (*Transform, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if t := c.cur.Load(); t != nil && t.Params == p.normalized() {
		return t, nil
	}

	t, err := Compute(p)
	if err != nil {
		return nil, err
	}
	c.cur.Store(t)
	return t, nil
}

// Current gibt die aktuelle Transformation zurueck oder nil
func (c *Cache) Current() *Transform {
	return c.cur.Load()
}
