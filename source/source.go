// Package source liefert Kamerabilder an die Pipeline.
//
// Echte Kamera-Hardware liegt ausserhalb dieses Moduls. Synthetic erzeugt
// Testbilder mit beliebigen Strides, Still spielt ein Bild von der Platte ab.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/7blacky7/seglive/frame"
)

// ErrInvalidSource meldet eine unbrauchbare Quellkonfiguration
var ErrInvalidSource = errors.New("source: invalid configuration")

// Source liefert Frames seriell an deliver bis ctx endet.
// Der Frame gehoert nach der Rueckkehr von deliver wieder der Quelle.
type Source interface {
	Size() (width, height int)
	Run(ctx context.Context, deliver func(*frame.RawFrame)) error
}

// DefaultFPS wird verwendet wenn keine Bildrate gesetzt ist
const DefaultFPS = 30

// loop ruft tick im Takt von fps auf. frames > 0 begrenzt die Anzahl.
// Zeitstempel sind Nanosekunden seit Start und steigen streng.
func loop(ctx context.Context, fps float64, frames int, tick func(n int, ts int64)) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	interval := time.Duration(float64(time.Second) / fps)

	t := time.NewTicker(interval)
	defer t.Stop()

	start := time.Now()
	var last int64 = -1
	for n := 0; frames <= 0 || n < frames; n++ {
		if err := ctx.Err(); err != nil {
			return nil
		}

		ts := time.Since(start).Nanoseconds()
		if ts <= last {
			ts = last + 1
		}
		last = ts
		tick(n, ts)

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
	return nil
}
