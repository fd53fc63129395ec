// MODUL: geometry/affine
// ZWECK: 3x3 affine Matrizen fuer Frame <-> Crop Koordinaten
// INPUT: Translation, Skalierung, Rotation in 90-Grad-Schritten
// OUTPUT: Affine (row-major), Inverse ueber gonum/mat
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: gonum.org/v1/gonum/mat, golang.org/x/image/math/f64
// HINWEISE: Punkte sind Spaltenvektoren, die y-Achse zeigt nach unten

package geometry

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular meldet eine nicht invertierbare Matrix
var ErrSingular = errors.New("geometry: singular matrix")

// Affine ist eine 3x3 Matrix in row-major Reihenfolge:
//
//	| a b c |
//	| d e f |
//	| 0 0 1 |
type Affine [9]float64

// Identity gibt die Einheitsmatrix zurueck
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Translate verschiebt um (tx, ty)
func Translate(tx, ty float64) Affine {
	return Affine{1, 0, tx, 0, 1, ty, 0, 0, 1}
}

// Scale skaliert pro Achse
func Scale(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// Rotate dreht im Uhrzeigersinn (y nach unten) um ein Vielfaches von 90 Grad.
// Sinus und Kosinus sind exakt, andere Winkel werden auf 0 abgebildet.
func Rotate(degrees int) Affine {
	var c, s float64
	switch NormalizeRotation(degrees) {
	case 90:
		c, s = 0, 1
	case 180:
		c, s = -1, 0
	case 270:
		c, s = 0, -1
	default:
		c, s = 1, 0
	}
	return Affine{c, -s, 0, s, c, 0, 0, 0, 1}
}

// Mul berechnet m * n, also erst n und dann m anwenden
func (m Affine) Mul(n Affine) Affine {
	var r Affine
	for i := range 3 {
		for j := range 3 {
			r[i*3+j] = m[i*3]*n[j] + m[i*3+1]*n[3+j] + m[i*3+2]*n[6+j]
		}
	}
	return r
}

// Then haengt n hinten an: erst m, dann n
func (m Affine) Then(n Affine) Affine {
	return n.Mul(m)
}

// Apply bildet den Punkt (x, y) ab
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Inverse berechnet die algebraische Inverse
func (m Affine) Inverse() (Affine, error) {
	a := mat.NewDense(3, 3, m[:])

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Affine{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	var r Affine
	for i := range 2 {
		for j := range 3 {
			r[i*3+j] = inv.At(i, j)
		}
	}
	r[8] = 1
	return r, nil
}

// Aff3 konvertiert fuer golang.org/x/image/draw
func (m Affine) Aff3() f64.Aff3 {
	return f64.Aff3{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// NormalizeRotation bildet Grad auf [0, 360) ab
func NormalizeRotation(degrees int) int {
	return ((degrees % 360) + 360) % 360
}
