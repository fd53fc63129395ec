package tensor

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// img2x1 hat zwei Pixel: (0,64,128) und (255,192,32)
func img2x1() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{0, 64, 128, 255})
	img.SetRGBA(1, 0, color.RGBA{255, 192, 32, 255})
	return img
}

func TestPackPlanar(t *testing.T) {
	got, err := Pack(nil, img2x1(), Default, Planar)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{
		-1, 127.0 / 128, // R
		-0.5, 0.5, // G
		0, -0.75, // B
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planar (-want +got):\n%s", diff)
	}
}

func TestPackInterleaved(t *testing.T) {
	got, err := Pack(nil, img2x1(), Default, Interleaved)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{-1, -0.5, 0, 127.0 / 128, 0.5, -0.75}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("interleaved (-want +got):\n%s", diff)
	}
}

func TestPackPerChannel(t *testing.T) {
	norm := Normalization{Mean: [3]float32{0, 64, 128}, InvStd: [3]float32{1, 0.5, 0.25}}
	got, err := Pack(nil, img2x1(), norm, Planar)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 255, 0, 64, 0, -24}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestPackReusesBuffer(t *testing.T) {
	buf := make([]float32, 0, 6)
	out, err := Pack(buf, img2x1(), Default, Planar)
	if err != nil {
		t.Fatal(err)
	}
	if &out[0] != &buf[:1][0] {
		t.Error("puffer wurde nicht wiederverwendet")
	}

	p, err := NewPacker(Default, Planar, 2)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	a, _ := p.Pack(img)
	b, _ := p.Pack(img)
	if &a[0] != &b[0] || len(a) != 12 {
		t.Errorf("Packer soll seinen Puffer behalten (len %d)", len(a))
	}
}

func TestNormalizationValidate(t *testing.T) {
	if err := Uniform(128, 0).Validate(); !errors.Is(err, ErrInvalidNormalization) {
		t.Errorf("erwartet ErrInvalidNormalization, bekommen %v", err)
	}
	if _, err := NewPacker(Uniform(0, 0), Planar, 4); !errors.Is(err, ErrInvalidNormalization) {
		t.Errorf("NewPacker: erwartet ErrInvalidNormalization, bekommen %v", err)
	}
	if err := Default.Validate(); err != nil {
		t.Errorf("Default ungueltig: %v", err)
	}
}

func TestShapeAndLayout(t *testing.T) {
	if diff := cmp.Diff([]int64{1, 3, 128, 128}, Shape(Planar, 128)); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff([]int64{1, 128, 128, 3}, Shape(Interleaved, 128)); diff != "" {
		t.Error(diff)
	}

	for in, want := range map[string]Layout{"": Planar, "NCHW": Planar, "interleaved": Interleaved, "hwc": Interleaved} {
		got, err := ParseLayout(in)
		if err != nil || got != want {
			t.Errorf("%q: erwartet %v, bekommen %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLayout("nc"); err == nil {
		t.Error("fehler erwartet")
	}
}
