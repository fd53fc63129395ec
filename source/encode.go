package source

import (
	"image"

	"github.com/7blacky7/seglive/frame"
)

// rgbToYUV ist die Umkehrung der BT.601-Konvertierung in frame (Videobereich 16..235)
func rgbToYUV(r, g, b int) (y, u, v byte) {
	yy := (66*r + 129*g + 25*b + 128) >> 8
	uu := (-38*r - 74*g + 112*b + 128) >> 8
	vv := (112*r - 94*g - 18*b + 128) >> 8
	return clampByte(yy + 16), clampByte(uu + 128), clampByte(vv + 128)
}

func clampByte(v int) byte {
	return byte(max(0, min(v, 255)))
}

// Layout der erzeugten Ebenen
type planeLayout struct {
	width, height int
	rowPadding    int
	pixelStride   int
}

func (l planeLayout) chromaSize() (cw, ch int) {
	return (l.width + 1) / 2, (l.height + 1) / 2
}

// allocate legt einen Frame mit gepolsterten Zeilen an.
// pixelStride 2 verschraenkt V und U in einem Puffer (NV21).
func (l planeLayout) allocate() *frame.RawFrame {
	cw, ch := l.chromaSize()
	yStride := l.width + l.rowPadding

	f := &frame.RawFrame{
		Width:  l.width,
		Height: l.height,
		Y:      frame.Plane{Data: make([]byte, yStride*l.height), RowStride: yStride, PixelStride: 1},
	}

	if l.pixelStride == 2 {
		stride := 2*cw + l.rowPadding
		buf := make([]byte, stride*ch)
		f.V = frame.Plane{Data: buf, RowStride: stride, PixelStride: 2}
		f.U = frame.Plane{Data: buf[1:], RowStride: stride, PixelStride: 2}
		return f
	}

	stride := cw + l.rowPadding
	f.U = frame.Plane{Data: make([]byte, stride*ch), RowStride: stride, PixelStride: 1}
	f.V = frame.Plane{Data: make([]byte, stride*ch), RowStride: stride, PixelStride: 1}
	return f
}

// EncodeYUV420 wandelt img in einen YUV420-Frame mit der gegebenen Zeilenpolsterung.
// pixelStride 2 erzeugt verschraenkte Chroma-Ebenen, sonst planar.
// Chroma wird ueber 2x2 Bloecke gemittelt.
func EncodeYUV420(img image.Image, rowPadding, pixelStride int) *frame.RawFrame {
	b := img.Bounds()
	l := planeLayout{width: b.Dx(), height: b.Dy(), rowPadding: max(rowPadding, 0), pixelStride: pixelStride}
	f := l.allocate()

	rgb := func(x, y int) (int, int, int) {
		r, g, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
		return int(r >> 8), int(g >> 8), int(bb >> 8)
	}

	for y := range l.height {
		row := f.Y.Data[y*f.Y.RowStride:]
		for x := range l.width {
			r, g, bb := rgb(x, y)
			row[x], _, _ = rgbToYUV(r, g, bb)
		}
	}

	cw, ch := l.chromaSize()
	ps := f.U.PixelStride
	for cy := range ch {
		for cx := range cw {
			var sr, sg, sb, n int
			for dy := range 2 {
				for dx := range 2 {
					x, y := 2*cx+dx, 2*cy+dy
					if x >= l.width || y >= l.height {
						continue
					}
					r, g, bb := rgb(x, y)
					sr, sg, sb, n = sr+r, sg+g, sb+bb, n+1
				}
			}
			_, u, v := rgbToYUV(sr/n, sg/n, sb/n)
			off := cy*f.U.RowStride + cx*ps
			f.U.Data[off] = u
			f.V.Data[off] = v
		}
	}
	return f
}
