package frame

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// solid baut einen I420-Frame mit Padding am Zeilenende
func solid(width, height, pad int, y, u, v byte) *RawFrame {
	yStride := width + pad
	cw := (width + 1) / 2
	ch := (height + 1) / 2
	uvStride := cw + pad

	fill := func(n int, b byte) []byte {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = b
		}
		return buf
	}

	return &RawFrame{
		Width:  width,
		Height: height,
		Y:      Plane{Data: fill(yStride*height, y), RowStride: yStride, PixelStride: 1},
		U:      Plane{Data: fill(uvStride*ch, u), RowStride: uvStride, PixelStride: 1},
		V:      Plane{Data: fill(uvStride*ch, v), RowStride: uvStride, PixelStride: 1},
	}
}

func within(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func TestYUVToRGBKnownTriples(t *testing.T) {
	cases := []struct {
		name    string
		y, u, v int
		r, g, b uint8
	}{
		{"grau", 128, 128, 128, 128, 128, 128},
		{"weiss", 255, 128, 128, 255, 255, 255},
		{"schwarz", 16, 128, 128, 0, 0, 0},
		{"unter schwarz", 0, 128, 128, 0, 0, 0},
		{"rot", 81, 90, 240, 255, 0, 0},
		{"gruen", 145, 54, 34, 0, 255, 0},
		{"blau", 41, 240, 110, 0, 0, 255},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := YUVToRGB(tt.y, tt.u, tt.v)
			if !within(r, tt.r, 2) || !within(g, tt.g, 2) || !within(b, tt.b, 2) {
				t.Errorf("erwartet (%d,%d,%d) +-2, bekommen (%d,%d,%d)", tt.r, tt.g, tt.b, r, g, b)
			}
		})
	}
}

func TestConvertSolidWithPadding(t *testing.T) {
	f := solid(33, 17, 7, 128, 128, 128)
	dst := image.NewRGBA(image.Rect(0, 0, 33, 17))

	if err := NewConverter(1).Convert(dst, f); err != nil {
		t.Fatalf("Convert fehlgeschlagen: %v", err)
	}

	for i := 0; i < len(dst.Pix); i += 4 {
		if !within(dst.Pix[i], 128, 2) || !within(dst.Pix[i+1], 128, 2) || !within(dst.Pix[i+2], 128, 2) || dst.Pix[i+3] != 255 {
			t.Fatalf("pixel %d: erwartet grau, bekommen %v", i/4, dst.Pix[i:i+4])
		}
	}
}

// toInterleaved baut einen NV21-artigen Frame: V und U teilen sich einen Puffer.
func toInterleaved(f *RawFrame, pad int) *RawFrame {
	cw := (f.Width + 1) / 2
	ch := (f.Height + 1) / 2
	stride := cw*2 + pad
	buf := make([]byte, stride*ch)
	for j := 0; j < ch; j++ {
		for i := 0; i < cw; i++ {
			buf[j*stride+2*i] = f.V.Data[j*f.V.RowStride+i]
			buf[j*stride+2*i+1] = f.U.Data[j*f.U.RowStride+i]
		}
	}
	return &RawFrame{
		Width:  f.Width,
		Height: f.Height,
		Y:      f.Y,
		U:      Plane{Data: buf[1:], RowStride: stride, PixelStride: 2},
		V:      Plane{Data: buf, RowStride: stride, PixelStride: 2},
	}
}

func gradient(width, height int) *RawFrame {
	f := solid(width, height, 3, 0, 0, 0)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			f.Y.Data[j*f.Y.RowStride+i] = byte(16 + (i*7+j*3)%220)
		}
	}
	for j := 0; j < (height+1)/2; j++ {
		for i := 0; i < (width+1)/2; i++ {
			f.U.Data[j*f.U.RowStride+i] = byte(40 + (i*11)%180)
			f.V.Data[j*f.V.RowStride+i] = byte(40 + (j*13)%180)
		}
	}
	return f
}

func TestConvertStridesMatchContiguous(t *testing.T) {
	planar := gradient(21, 11)
	interleaved := toInterleaved(planar, 5)

	want := image.NewRGBA(image.Rect(0, 0, 21, 11))
	got := image.NewRGBA(image.Rect(0, 0, 21, 11))

	c := NewConverter(1)
	if err := c.Convert(want, planar); err != nil {
		t.Fatalf("planar: %v", err)
	}
	if err := c.Convert(got, interleaved); err != nil {
		t.Fatalf("interleaved: %v", err)
	}
	if diff := cmp.Diff(want.Pix, got.Pix); diff != "" {
		t.Errorf("interleaved weicht ab (-want +got):\n%s", diff)
	}
}

func TestConvertParallelMatchesSerial(t *testing.T) {
	f := gradient(64, 37)
	serial := image.NewRGBA(image.Rect(0, 0, 64, 37))
	parallel := image.NewRGBA(image.Rect(0, 0, 64, 37))

	if err := NewConverter(1).Convert(serial, f); err != nil {
		t.Fatal(err)
	}
	if err := NewConverter(4).Convert(parallel, f); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(serial.Pix, parallel.Pix); diff != "" {
		t.Errorf("parallel weicht ab (-serial +parallel):\n%s", diff)
	}
}

func TestConvertYUV420Planes(t *testing.T) {
	f := gradient(10, 6)
	viaFrame := image.NewRGBA(image.Rect(0, 0, 10, 6))
	viaPlanes := image.NewRGBA(image.Rect(0, 0, 10, 6))

	if err := NewConverter(1).Convert(viaFrame, f); err != nil {
		t.Fatal(err)
	}
	if err := ConvertYUV420(viaPlanes, f.Y.Data, f.U.Data, f.V.Data, 10, 6, f.Y.RowStride, f.U.RowStride, 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(viaFrame.Pix, viaPlanes.Pix); diff != "" {
		t.Errorf("abweichung (-frame +planes):\n%s", diff)
	}
}

func TestConvertNoAllocation(t *testing.T) {
	f := gradient(32, 24)
	dst := image.NewRGBA(image.Rect(0, 0, 32, 24))
	c := NewConverter(1)

	allocs := testing.AllocsPerRun(20, func() {
		if err := c.Convert(dst, f); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Errorf("erwartet 0 allokationen, bekommen %v", allocs)
	}
}

func TestConvertMalformed(t *testing.T) {
	cases := map[string]func(f *RawFrame){
		"kurze luma":          func(f *RawFrame) { f.Y.Data = f.Y.Data[:len(f.Y.Data)-10] },
		"kurze chroma":        func(f *RawFrame) { f.U.Data = f.U.Data[:1] },
		"kurzes v":            func(f *RawFrame) { f.V.Data = nil },
		"stride unter breite": func(f *RawFrame) { f.Y.RowStride = f.Width - 1 },
		"null breite":         func(f *RawFrame) { f.Width = 0 },
		"stride mismatch":     func(f *RawFrame) { f.V.RowStride++ },
		"luma pixel stride":   func(f *RawFrame) { f.Y.PixelStride = 2 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := solid(16, 8, 4, 128, 128, 128)
			mutate(f)
			dst := image.NewRGBA(image.Rect(0, 0, 16, 8))
			err := NewConverter(1).Convert(dst, f)
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("erwartet ErrMalformedFrame, bekommen %v", err)
			}
		})
	}
}

func TestConvertWrongTarget(t *testing.T) {
	f := solid(16, 8, 0, 128, 128, 128)
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := NewConverter(1).Convert(dst, f); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("erwartet ErrMalformedFrame, bekommen %v", err)
	}
}

func TestExactChromaBound(t *testing.T) {
	// Android liefert die letzte Chroma-Zeile oft ohne Padding
	f := toInterleaved(gradient(20, 10), 4)
	need := ChromaLen(20, 10, f.U.RowStride, 2)
	f.U.Data = f.U.Data[:need]
	f.V.Data = f.V.Data[:need]

	if err := f.Validate(); err != nil {
		t.Errorf("exakte laenge sollte reichen: %v", err)
	}
	f.U.Data = f.U.Data[:need-1]
	if err := f.Validate(); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("erwartet ErrMalformedFrame, bekommen %v", err)
	}
}

func TestCopyIntoReusesBuffers(t *testing.T) {
	src := gradient(12, 6)
	var dst RawFrame
	src.CopyInto(&dst)

	ptr := &dst.Y.Data[0]
	src.Y.Data[0] = 99
	src.CopyInto(&dst)

	if &dst.Y.Data[0] != ptr {
		t.Error("puffer wurde neu allokiert")
	}
	if dst.Y.Data[0] != 99 {
		t.Errorf("erwartet 99, bekommen %d", dst.Y.Data[0])
	}
	if err := dst.Validate(); err != nil {
		t.Errorf("kopie ungueltig: %v", err)
	}

	clone := src.Clone()
	src.Y.Data[1] = 1
	if clone.Y.Data[1] == 1 {
		t.Error("clone teilt speicher mit quelle")
	}
}
