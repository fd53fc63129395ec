package geometry

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

func nearly(a, b uint8) bool {
	return int(a)-int(b) <= 1 && int(b)-int(a) <= 1
}

func TestCropSolidColor(t *testing.T) {
	want := color.RGBA{200, 40, 90, 255}
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	fill(src, want)

	for _, interp := range []Interpolation{Nearest, Bilinear} {
		for _, aspect := range []bool{true, false} {
			tr, err := Compute(Params{FrameWidth: 640, FrameHeight: 480, CropSize: 128, MaintainAspect: aspect})
			if err != nil {
				t.Fatal(err)
			}
			dst := image.NewRGBA(image.Rect(0, 0, 128, 128))
			if err := Crop(dst, src, tr, interp); err != nil {
				t.Fatalf("%v: %v", interp, err)
			}
			for i := 0; i < len(dst.Pix); i += 4 {
				if !nearly(dst.Pix[i], want.R) || !nearly(dst.Pix[i+1], want.G) || !nearly(dst.Pix[i+2], want.B) {
					t.Fatalf("%v/aspect=%v pixel %d: bekommen %v", interp, aspect, i/4, dst.Pix[i:i+4])
				}
			}
		}
	}
}

func TestCropRotation180(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	src := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			if x < 32 {
				src.SetRGBA(x, y, red)
			} else {
				src.SetRGBA(x, y, blue)
			}
		}
	}

	tr, err := Compute(Params{FrameWidth: 64, FrameHeight: 64, CropSize: 32, Rotation: 180, MaintainAspect: true})
	if err != nil {
		t.Fatal(err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 32, 32))
	if err := Crop(dst, src, tr, Nearest); err != nil {
		t.Fatal(err)
	}

	if got := dst.RGBAAt(2, 16); got != blue {
		t.Errorf("links erwartet blau, bekommen %v", got)
	}
	if got := dst.RGBAAt(29, 16); got != red {
		t.Errorf("rechts erwartet rot, bekommen %v", got)
	}
}

func TestCropUncoveredIsBlack(t *testing.T) {
	// Verschobener Transform laesst die linke Haelfte frei
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill(src, color.RGBA{255, 255, 255, 255})

	tr, err := Compute(Params{FrameWidth: 16, FrameHeight: 16, CropSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	shifted := *tr
	shifted.Forward = tr.Forward.Then(Translate(8, 0))

	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill(dst, color.RGBA{1, 2, 3, 4})
	if err := Crop(dst, src, &shifted, Nearest); err != nil {
		t.Fatal(err)
	}
	if got := dst.RGBAAt(2, 2); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("nicht abgedeckt: erwartet schwarz, bekommen %v", got)
	}
	if got := dst.RGBAAt(12, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("abgedeckt: erwartet weiss, bekommen %v", got)
	}
}

func TestCropSizeMismatch(t *testing.T) {
	tr, err := Compute(Params{FrameWidth: 64, FrameHeight: 48, CropSize: 32})
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	if err := Crop(image.NewRGBA(image.Rect(0, 0, 16, 16)), src, tr, Nearest); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("falscher crop: erwartet ErrInvalidParams, bekommen %v", err)
	}
	if err := Crop(image.NewRGBA(image.Rect(0, 0, 32, 32)), image.NewRGBA(image.Rect(0, 0, 10, 10)), tr, Nearest); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("falsches frame: erwartet ErrInvalidParams, bekommen %v", err)
	}
}

func TestParseInterpolation(t *testing.T) {
	cases := map[string]Interpolation{"": Nearest, "nearest": Nearest, "Bilinear": Bilinear}
	for in, want := range cases {
		got, err := ParseInterpolation(in)
		if err != nil || got != want {
			t.Errorf("%q: erwartet %v, bekommen %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseInterpolation("bicubic"); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("erwartet ErrInvalidParams, bekommen %v", err)
	}
}
