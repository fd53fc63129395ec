// MODUL: frame
// ZWECK: Rohes Kamerabild (YUV420 mit Strides) und dessen Plausibilitaetspruefung
// INPUT: Drei Byte-Ebenen (Y, U, V) mit Row-/Pixel-Stride von der Bildquelle
// OUTPUT: RawFrame, validierte Kopien fuer den Verarbeitungszyklus
// NEBENEFFEKTE: CopyInto vergroessert Zielpuffer bei Bedarf
// ABHAENGIGKEITEN: Keine
// HINWEISE: Die Quelle besitzt ihre Ebenen, die Pipeline kopiert vor der Uebergabe an den Worker

package frame

import (
	"errors"
	"fmt"
)

// ErrMalformedFrame meldet inkonsistente Ebenen oder Strides.
// Der Frame wird verworfen, das letzte Overlay bleibt gueltig.
var ErrMalformedFrame = errors.New("frame: malformed frame")

// Plane ist eine Bildebene mit Speicherlayout
type Plane struct {
	Data        []byte
	RowStride   int // Bytes zwischen zwei Zeilen
	PixelStride int // Bytes zwischen zwei Pixeln, 0 wird als 1 gelesen
}

func (p Plane) pixelStride() int {
	if p.PixelStride <= 0 {
		return 1
	}
	return p.PixelStride
}

// RawFrame ist ein YUV420-Bild wie es die Kamera liefert.
// U und V haben halbe Aufloesung in beiden Achsen.
type RawFrame struct {
	Width     int
	Height    int
	Y         Plane
	U         Plane
	V         Plane
	Timestamp int64 // monoton steigend, Nanosekunden
}

// LumaLen ist die minimale Laenge der Y-Ebene fuer die Strides
func LumaLen(width, height, rowStride int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return (height-1)*rowStride + width
}

// ChromaLen ist die minimale Laenge einer U/V-Ebene.
// Der letzte Index ist ((h-1)/2)*rowStride + ((w-1)/2)*pixelStride.
func ChromaLen(width, height, rowStride, pixelStride int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return ((height-1)/2)*rowStride + ((width-1)/2)*pixelStride + 1
}

// Validate prueft Dimensionen, Strides und Ebenenlaengen
func (f *RawFrame) Validate() error {
	return validate(len(f.Y.Data), len(f.U.Data), len(f.V.Data),
		f.Width, f.Height, f.Y.RowStride, f.Y.pixelStride(),
		f.U.RowStride, f.U.pixelStride(), f.V.RowStride, f.V.pixelStride())
}

func validate(yLen, uLen, vLen, width, height, yRowStride, yPixelStride, uRowStride, uPixelStride, vRowStride, vPixelStride int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedFrame, width, height)
	}
	if yPixelStride != 1 {
		return fmt.Errorf("%w: luma pixel stride %d", ErrMalformedFrame, yPixelStride)
	}
	if yRowStride < width {
		return fmt.Errorf("%w: luma row stride %d below width %d", ErrMalformedFrame, yRowStride, width)
	}
	if uRowStride != vRowStride || uPixelStride != vPixelStride {
		return fmt.Errorf("%w: chroma planes disagree on strides (%d/%d vs %d/%d)",
			ErrMalformedFrame, uRowStride, uPixelStride, vRowStride, vPixelStride)
	}
	if minRow := ((width-1)/2)*uPixelStride + 1; uRowStride < minRow {
		return fmt.Errorf("%w: chroma row stride %d below %d", ErrMalformedFrame, uRowStride, minRow)
	}
	if need := LumaLen(width, height, yRowStride); yLen < need {
		return fmt.Errorf("%w: luma plane has %d bytes, need %d", ErrMalformedFrame, yLen, need)
	}
	need := ChromaLen(width, height, uRowStride, uPixelStride)
	if uLen < need {
		return fmt.Errorf("%w: u plane has %d bytes, need %d", ErrMalformedFrame, uLen, need)
	}
	if vLen < need {
		return fmt.Errorf("%w: v plane has %d bytes, need %d", ErrMalformedFrame, vLen, need)
	}
	return nil
}

// CopyInto kopiert den Frame in dst und verwendet dessen Puffer wieder.
// Es werden nur die adressierten Bytes kopiert. Der Frame muss gueltig sein.
func (f *RawFrame) CopyInto(dst *RawFrame) {
	dst.Width, dst.Height, dst.Timestamp = f.Width, f.Height, f.Timestamp
	copyPlane(&dst.Y, f.Y, LumaLen(f.Width, f.Height, f.Y.RowStride))
	n := ChromaLen(f.Width, f.Height, f.U.RowStride, f.U.pixelStride())
	copyPlane(&dst.U, f.U, n)
	copyPlane(&dst.V, f.V, n)
}

// Clone erstellt eine unabhaengige Kopie
func (f *RawFrame) Clone() *RawFrame {
	var c RawFrame
	f.CopyInto(&c)
	return &c
}

func copyPlane(dst *Plane, src Plane, n int) {
	if cap(dst.Data) < n {
		dst.Data = make([]byte, n)
	}
	dst.Data = dst.Data[:n]
	copy(dst.Data, src.Data[:n])
	dst.RowStride = src.RowStride
	dst.PixelStride = src.pixelStride()
}
