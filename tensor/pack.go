// MODUL: tensor
// ZWECK: Normalisierung und Packen des Crops in den Modell-Eingabetensor
// INPUT: *image.RGBA (Crop), Normalization (mean, invStd), Layout
// OUTPUT: []float32 mit 3*S*S Werten, planar (CHW) oder interleaved (HWC)
// NEBENEFFEKTE: Schreibt in den uebergebenen Puffer
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Kanalwerte bleiben im Bereich 0..255, das Modell erwartet (c-128)/128

package tensor

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrInvalidNormalization meldet eine Standardabweichung von 0
var ErrInvalidNormalization = errors.New("tensor: invalid normalization")

// Layout bestimmt die Reihenfolge der Kanaele im Tensor
type Layout int

const (
	// Planar legt drei zusammenhaengende Kanalbloecke ab (NCHW)
	Planar Layout = iota
	// Interleaved legt RGB pro Pixel ab (NHWC)
	Interleaved
)

func (l Layout) String() string {
	if l == Interleaved {
		return "interleaved"
	}
	return "planar"
}

// ParseLayout liest "planar" oder "interleaved"
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "planar", "chw", "nchw":
		return Planar, nil
	case "interleaved", "hwc", "nhwc":
		return Interleaved, nil
	}
	return Planar, fmt.Errorf("tensor: unknown layout %q", s)
}

// Shape gibt die Tensor-Form fuer einen quadratischen Crop zurueck
func Shape(l Layout, size int) []int64 {
	s := int64(size)
	if l == Interleaved {
		return []int64{1, s, s, 3}
	}
	return []int64{1, 3, s, s}
}

// Normalization enthaelt Mittelwert und inverse Standardabweichung pro Kanal
type Normalization struct {
	Mean   [3]float32
	InvStd [3]float32
}

// Uniform verwendet denselben Mittelwert und dieselbe Abweichung fuer alle Kanaele
func Uniform(mean, std float32) Normalization {
	var inv float32
	if std != 0 {
		inv = 1 / std
	}
	return Normalization{
		Mean:   [3]float32{mean, mean, mean},
		InvStd: [3]float32{inv, inv, inv},
	}
}

// Default entspricht dem Segmentierungsmodell: mean 128, std 128
var Default = Uniform(128, 128)

// Validate prueft, dass kein Kanal mit 0 multipliziert wird
func (n Normalization) Validate() error {
	for c, v := range n.InvStd {
		if v == 0 {
			return fmt.Errorf("%w: channel %d has zero inverse std", ErrInvalidNormalization, c)
		}
	}
	return nil
}

// Pack normalisiert img in dst. dst wird wiederverwendet wenn die Kapazitaet reicht.
func Pack(dst []float32, img *image.RGBA, norm Normalization, layout Layout) ([]float32, error) {
	if img == nil {
		return dst, errors.New("tensor: nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cells := w * h

	if cap(dst) < cells*3 {
		dst = make([]float32, cells*3)
	}
	dst = dst[:cells*3]

	m0, m1, m2 := norm.Mean[0], norm.Mean[1], norm.Mean[2]
	s0, s1, s2 := norm.InvStd[0], norm.InvStd[1], norm.InvStd[2]

	i := 0
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r := (float32(row[x*4]) - m0) * s0
			g := (float32(row[x*4+1]) - m1) * s1
			bl := (float32(row[x*4+2]) - m2) * s2

			if layout == Interleaved {
				dst[i*3] = r
				dst[i*3+1] = g
				dst[i*3+2] = bl
			} else {
				dst[i] = r
				dst[cells+i] = g
				dst[2*cells+i] = bl
			}
			i++
		}
	}

	return dst, nil
}

// Packer haelt Normalisierung, Layout und den Ausgabepuffer eines Zyklus
type Packer struct {
	Norm   Normalization
	Layout Layout

	buf []float32
}

// NewPacker prueft die Normalisierung und allokiert den Puffer fuer size x size
func NewPacker(norm Normalization, layout Layout, size int) (*Packer, error) {
	if err := norm.Validate(); err != nil {
		return nil, err
	}
	return &Packer{Norm: norm, Layout: layout, buf: make([]float32, 3*size*size)}, nil
}

// Pack fuellt den internen Puffer. Das Ergebnis bleibt bis zum naechsten Aufruf gueltig.
func (p *Packer) Pack(img *image.RGBA) ([]float32, error) {
	out, err := Pack(p.buf, img, p.Norm, p.Layout)
	if err != nil {
		return nil, err
	}
	p.buf = out
	return out, nil
}
