// MODUL: frame/yuv
// ZWECK: YUV420 nach RGB Konvertierung mit beliebigen Row- und Pixel-Strides
// INPUT: RawFrame bzw. drei Ebenen plus Strides, vorallokiertes *image.RGBA
// OUTPUT: RGBA-Pixel (A=255) im Zielbild
// NEBENEFFEKTE: Schreibt in das uebergebene Zielbild
// ABHAENGIGKEITEN: golang.org/x/sync/errgroup (parallele Zeilenbaender)
// HINWEISE: Festkomma-BT.601 (Studio-Range), Y=16..235 -> 0..255

package frame

import (
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// maxChannelValue ist 2^18-1, der Wertebereich vor dem Shift um 10 Bit
const maxChannelValue = 262143

// YUVToRGB konvertiert ein einzelnes YUV-Tripel.
// Koeffizienten sind BT.601 mal 1024 (1.164, 1.596, 0.813, 0.391, 2.018).
func YUVToRGB(y, u, v int) (r, g, b uint8) {
	y = max(y-16, 0)
	u -= 128
	v -= 128

	y1192 := 1192 * y
	ri := clampChannel(y1192 + 1634*v)
	gi := clampChannel(y1192 - 833*v - 400*u)
	bi := clampChannel(y1192 + 2066*u)

	return uint8(ri >> 10), uint8(gi >> 10), uint8(bi >> 10)
}

func clampChannel(c int) int {
	return min(max(c, 0), maxChannelValue)
}

// ConvertYUV420 schreibt die Ebenen als RGBA nach dst.
// dst muss exakt width x height gross sein.
func ConvertYUV420(dst *image.RGBA, y, u, v []byte, width, height, yRowStride, uvRowStride, uvPixelStride int) error {
	if err := checkTarget(dst, width, height); err != nil {
		return err
	}
	if uvPixelStride <= 0 {
		uvPixelStride = 1
	}
	if err := validate(len(y), len(u), len(v), width, height, yRowStride, 1,
		uvRowStride, uvPixelStride, uvRowStride, uvPixelStride); err != nil {
		return err
	}

	convertRows(dst, y, u, v, width, yRowStride, uvRowStride, uvPixelStride, 0, height)
	return nil
}

func checkTarget(dst *image.RGBA, width, height int) error {
	if dst == nil {
		return fmt.Errorf("%w: nil target image", ErrMalformedFrame)
	}
	if b := dst.Bounds(); b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("%w: target is %dx%d, frame is %dx%d", ErrMalformedFrame, b.Dx(), b.Dy(), width, height)
	}
	return nil
}

// convertRows bearbeitet die Zeilen [y0, y1)
func convertRows(dst *image.RGBA, yp, up, vp []byte, width, yRowStride, uvRowStride, uvPixelStride, y0, y1 int) {
	for j := y0; j < y1; j++ {
		yRow := yp[j*yRowStride : j*yRowStride+width]
		uvRow := (j >> 1) * uvRowStride
		out := dst.Pix[j*dst.Stride : j*dst.Stride+width*4]

		for i, luma := range yRow {
			uvOff := uvRow + (i>>1)*uvPixelStride
			r, g, b := YUVToRGB(int(luma), int(up[uvOff]), int(vp[uvOff]))
			o := i * 4
			out[o] = r
			out[o+1] = g
			out[o+2] = b
			out[o+3] = 0xff
		}
	}
}

// ============================================================================
// Converter
// ============================================================================

// Converter teilt die Konvertierung optional auf mehrere Zeilenbaender auf.
// Mit Workers <= 1 laeuft alles im aufrufenden Goroutine ohne Allokation.
type Converter struct {
	Workers int
}

// NewConverter erstellt einen Converter mit der gegebenen Band-Anzahl
func NewConverter(workers int) *Converter {
	return &Converter{Workers: workers}
}

// Convert validiert den Frame und schreibt ihn nach dst
func (c *Converter) Convert(dst *image.RGBA, f *RawFrame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := checkTarget(dst, f.Width, f.Height); err != nil {
		return err
	}

	yRowStride := f.Y.RowStride
	uvRowStride, uvPixelStride := f.U.RowStride, f.U.pixelStride()

	bands := min(c.Workers, f.Height)
	if bands <= 1 {
		convertRows(dst, f.Y.Data, f.U.Data, f.V.Data, f.Width, yRowStride, uvRowStride, uvPixelStride, 0, f.Height)
		return nil
	}

	// Baender schreiben disjunkte Zeilen in dst
	rows := (f.Height + bands - 1) / bands
	var g errgroup.Group
	for y0 := 0; y0 < f.Height; y0 += rows {
		y1 := min(y0+rows, f.Height)
		g.Go(func() error {
			convertRows(dst, f.Y.Data, f.U.Data, f.V.Data, f.Width, yRowStride, uvRowStride, uvPixelStride, y0, y1)
			return nil
		})
	}
	return g.Wait()
}
