package pipeline

import (
	"math"
	"sync/atomic"

	"github.com/7blacky7/seglive/frame"
	"github.com/7blacky7/seglive/geometry"
)

// Tracker beobachtet jeden gelieferten Frame im Lieferpfad.
// OnFrame muss schnell sein und darf f nach der Rueckkehr nicht mehr lesen.
type Tracker interface {
	OnFrame(f *frame.RawFrame, t *geometry.Transform)
}

// LumaTracker misst die mittlere Helligkeit im Bereich den der Crop abdeckt.
// Mean darf von jeder Goroutine gelesen werden.
type LumaTracker struct {
	// Step ist der Abtastabstand in Pixeln, <= 0 bedeutet 8
	Step int

	mean   atomic.Uint64
	frames atomic.Uint64
}

func (l *LumaTracker) step() int {
	if l.Step <= 0 {
		return 8
	}
	return l.Step
}

// OnFrame tastet die Luma-Ebene im abgedeckten Rechteck ab
func (l *LumaTracker) OnFrame(f *frame.RawFrame, t *geometry.Transform) {
	if t == nil || f.Width <= 0 || f.Height <= 0 {
		return
	}
	rs := f.Y.RowStride
	if rs < f.Width || len(f.Y.Data) < frame.LumaLen(f.Width, f.Height, rs) {
		return
	}

	x0, y0, x1, y1 := coveredRect(t, f.Width, f.Height)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	step := l.step()
	var sum, n uint64
	for y := y0; y < y1; y += step {
		row := f.Y.Data[y*rs:]
		for x := x0; x < x1; x += step {
			sum += uint64(row[x])
			n++
		}
	}
	if n == 0 {
		return
	}
	l.mean.Store(math.Float64bits(float64(sum) / float64(n)))
	l.frames.Add(1)
}

// Mean gibt die zuletzt gemessene mittlere Luma zurueck (0..255)
func (l *LumaTracker) Mean() float64 {
	return math.Float64frombits(l.mean.Load())
}

// Frames zaehlt die gemessenen Frames
func (l *LumaTracker) Frames() uint64 {
	return l.frames.Load()
}

// coveredRect bildet die Crop-Ecken zurueck ins Frame und begrenzt auf das Bild
func coveredRect(t *geometry.Transform, width, height int) (x0, y0, x1, y1 int) {
	s := float64(t.Params.CropSize)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{0, 0}, {s, 0}, {0, s}, {s, s}} {
		x, y := t.ToFrame(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	x0 = clampInt(int(math.Floor(minX)), 0, width)
	y0 = clampInt(int(math.Floor(minY)), 0, height)
	x1 = clampInt(int(math.Ceil(maxX)), 0, width)
	y1 = clampInt(int(math.Ceil(maxY)), 0, height)
	return x0, y0, x1, y1
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
