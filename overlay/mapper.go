// MODUL: overlay/mapper
// ZWECK: Schwellwert auf das Aktivierungsgitter und Rueckabbildung ins Kamerabild
// INPUT: Aktivierungsgitter (S*S), Schwelle, inverse Crop-Transformation
// OUTPUT: iter.Seq[Point] in Frame-Koordinaten
// NEBENEFFEKTE: Keine, das Gitter wird nur gelesen
// ABHAENGIGKEITEN: geometry (Affine)
// HINWEISE: Aktiv ist eine Zelle nur bei score > threshold (strikt)

package overlay

import (
	"fmt"
	"iter"
	"strings"

	"github.com/7blacky7/seglive/geometry"
)

// DefaultThreshold ist die Aktivierungsschwelle des Segmentierungsmodells
const DefaultThreshold float32 = 0.2

// CellOrigin waehlt den Referenzpunkt einer Zelle im Crop
type CellOrigin int

const (
	// CellCenter bildet (col+0.5, row+0.5) ab
	CellCenter CellOrigin = iota
	// CellCorner bildet die obere linke Ecke (col, row) ab
	CellCorner
)

func (o CellOrigin) String() string {
	if o == CellCorner {
		return "corner"
	}
	return "center"
}

// ParseCellOrigin liest "center" oder "corner"
func ParseCellOrigin(s string) (CellOrigin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center":
		return CellCenter, nil
	case "corner":
		return CellCorner, nil
	}
	return CellCenter, fmt.Errorf("overlay: unknown cell origin %q", s)
}

// GridOrder beschreibt, wie der flache Index auf (row, col) faellt
type GridOrder int

const (
	// RowMajor liest Index row*size + col
	RowMajor GridOrder = iota
	// ColumnMajor liest Index col*size + row
	ColumnMajor
)

func (o GridOrder) String() string {
	if o == ColumnMajor {
		return "column"
	}
	return "row"
}

// ParseGridOrder liest "row" oder "column"
func ParseGridOrder(s string) (GridOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "row", "row-major":
		return RowMajor, nil
	case "column", "col", "column-major":
		return ColumnMajor, nil
	}
	return RowMajor, fmt.Errorf("overlay: unknown grid order %q", s)
}

// Point ist ein Overlay-Punkt in Frame-Koordinaten und seine Ursprungszelle
type Point struct {
	X     float64
	Y     float64
	Row   int
	Col   int
	Score float32
}

// Mapper bildet aktive Zellen ins Frame ab
type Mapper struct {
	Size      int
	Threshold float32
	Origin    CellOrigin
	Order     GridOrder
}

// Points liefert eine lazy Sequenz der aktiven Zellen in Zeilenreihenfolge.
// Die Sequenz ist wiederholbar, ein Gitter falscher Laenge ergibt keine Punkte.
func (m Mapper) Points(grid []float32, inverse geometry.Affine) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		if m.Size <= 0 || len(grid) != m.Size*m.Size {
			return
		}

		var offset float64
		if m.Origin == CellCenter {
			offset = 0.5
		}

		for row := range m.Size {
			for col := range m.Size {
				k := row*m.Size + col
				if m.Order == ColumnMajor {
					k = col*m.Size + row
				}

				score := grid[k]
				if !(score > m.Threshold) {
					continue
				}

				x, y := inverse.Apply(float64(col)+offset, float64(row)+offset)
				if !yield(Point{X: x, Y: y, Row: row, Col: col, Score: score}) {
					return
				}
			}
		}
	}
}

// Map verwendet Zellmitte und Zeilenreihenfolge
func Map(grid []float32, size int, threshold float32, inverse geometry.Affine) iter.Seq[Point] {
	return Mapper{Size: size, Threshold: threshold}.Points(grid, inverse)
}

// Collect haengt alle Punkte an dst[:0] an und verwendet dessen Speicher wieder
func Collect(dst []Point, seq iter.Seq[Point]) []Point {
	dst = dst[:0]
	for p := range seq {
		dst = append(dst, p)
	}
	return dst
}
