// Package pipeline - Admission, Worker und Veroeffentlichung der Overlays
//
// Diese Datei enthaelt:
// - Pipeline: Lieferpfad (OnFrame), Admission per CAS, Stop
// - Inferer: Schnittstelle zum Inference-Gateway
//
// Rollen: Der Lieferpfad schreibt das Admission-Flag und kopiert den Frame,
// der Worker schreibt Arbeitspuffer und Snapshot, der Renderer liest nur Latest.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/7blacky7/seglive/frame"
	"github.com/7blacky7/seglive/geometry"
	"github.com/7blacky7/seglive/logutil"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/tensor"
)

// Inferer fuehrt einen Eingabetensor synchron durch das Modell.
// Das Ergebnis darf nur bis zum naechsten Aufruf gelesen werden.
type Inferer interface {
	Run(ctx context.Context, input []float32) ([]float32, error)
}

// Pipeline verarbeitet hoechstens einen Frame gleichzeitig.
// Frames waehrend eines laufenden Zyklus werden verworfen, nie gepuffert.
type Pipeline struct {
	opts      Options
	gateway   Inferer
	converter *frame.Converter
	mapper    overlay.Mapper

	transforms geometry.Cache
	rotation   atomic.Int32

	// busy ist das Admission-Flag, gesetzt vom Gewinner des CAS
	busy    atomic.Bool
	state   atomic.Int32
	stopped atomic.Bool
	idle    chan struct{}
	halted  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// cur gehoert dem Lieferpfad zwischen CAS und Start des Workers,
	// danach dem Worker bis zur Freigabe von busy
	cur cycle

	latest        atomic.Pointer[overlay.Snapshot]
	seq           atomic.Uint64
	dumpRequested atomic.Bool
	stats         counters
}

// New baut die Pipeline und allokiert alle Puffer fuer den Crop.
// Ungueltige Optionen ergeben ErrConfiguration.
func New(gateway Inferer, opts Options) (*Pipeline, error) {
	if gateway == nil {
		return nil, fmt.Errorf("%w: no inference gateway", ErrConfiguration)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	packer, err := tensor.NewPacker(opts.Normalization, opts.Layout, opts.CropSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		opts:      opts,
		gateway:   gateway,
		converter: frame.NewConverter(opts.ConvertWorkers),
		mapper:    opts.mapper(),
		idle:      make(chan struct{}, 1),
		halted:    make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		cur: cycle{
			crop:   image.NewRGBA(image.Rect(0, 0, opts.CropSize, opts.CropSize)),
			packer: packer,
		},
	}
	p.rotation.Store(int32(geometry.NormalizeRotation(opts.Rotation)))
	return p, nil
}

func (p *Pipeline) params(width, height int) geometry.Params {
	return geometry.Params{
		FrameWidth:     width,
		FrameHeight:    height,
		CropSize:       p.opts.CropSize,
		Rotation:       int(p.rotation.Load()),
		MaintainAspect: p.opts.MaintainAspect,
	}
}

// Prepare berechnet die Transformation fuer die Vorschau-Groesse und
// allokiert den RGB-Puffer. Aufruf vor dem ersten Frame.
func (p *Pipeline) Prepare(width, height int) error {
	if _, err := p.transforms.Get(p.params(width, height)); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if !p.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.release()

	p.cur.ensureRGB(width, height)
	return nil
}

// SetRotation aendert die Sensorrotation. Der naechste Frame verwendet ein neues Transform-Paar.
func (p *Pipeline) SetRotation(degrees int) error {
	if degrees%90 != 0 {
		return fmt.Errorf("%w: rotation %d is not a multiple of 90", ErrConfiguration, degrees)
	}
	p.rotation.Store(int32(geometry.NormalizeRotation(degrees)))
	return nil
}

// OnFrame ist der Lieferpfad der Bildquelle. Gibt true zurueck wenn ein Zyklus gestartet wurde.
// Blockiert nie auf einen laufenden Zyklus, f wird nach der Rueckkehr nicht mehr gelesen.
func (p *Pipeline) OnFrame(f *frame.RawFrame) bool {
	if p.stopped.Load() {
		return false
	}
	p.stats.delivered.Add(1)

	t, err := p.transforms.Get(p.params(f.Width, f.Height))
	if err != nil {
		p.stats.malformed.Add(1)
		slog.Debug("frame rejected", "width", f.Width, "height", f.Height, "error", err)
		return false
	}

	for _, tr := range p.opts.Trackers {
		tr.OnFrame(f, t)
	}

	if !p.busy.CompareAndSwap(false, true) {
		p.stats.dropped.Add(1)
		if logutil.Enabled(logutil.LevelTrace) {
			logutil.Trace("frame dropped", "ts", f.Timestamp, "state", p.State())
		}
		return false
	}

	p.state.Store(int32(StateCapturing))
	if err := f.Validate(); err != nil {
		p.stats.malformed.Add(1)
		slog.Debug("malformed frame", "ts", f.Timestamp, "error", err)
		p.release()
		return false
	}

	c := &p.cur
	f.CopyInto(&c.frame)
	c.transform = t
	c.admitted = time.Now()

	p.stats.admitted.Add(1)
	p.state.Store(int32(StateAdmitted))
	go p.process(c)
	return true
}

// release gibt das Admission-Flag frei. Alle Pufferzugriffe des Zyklus liegen davor.
func (p *Pipeline) release() {
	p.state.Store(int32(StateIdle))
	p.busy.Store(false)
	select {
	case p.idle <- struct{}{}:
	default:
	}
}

// Latest gibt den zuletzt veroeffentlichten Snapshot zurueck oder nil
func (p *Pipeline) Latest() *overlay.Snapshot {
	return p.latest.Load()
}

// Transform gibt das aktuelle Transform-Paar zurueck oder nil
func (p *Pipeline) Transform() *geometry.Transform {
	return p.transforms.Current()
}

// State gibt den aktuellen Zustand zurueck
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Options gibt die Konfiguration zurueck
func (p *Pipeline) Options() Options {
	return p.opts
}

// RequestDump fordert einen Debug-Export im naechsten Zyklus an.
// Ohne DumpDir passiert nichts und es wird false zurueckgegeben.
func (p *Pipeline) RequestDump() bool {
	if p.opts.DumpDir == "" {
		return false
	}
	p.dumpRequested.Store(true)
	return true
}

// Stats liest alle Zaehler
func (p *Pipeline) Stats() Stats {
	return Stats{
		State:         p.State(),
		Delivered:     p.stats.delivered.Load(),
		Admitted:      p.stats.admitted.Load(),
		Dropped:       p.stats.dropped.Load(),
		Malformed:     p.stats.malformed.Load(),
		Failures:      p.stats.failures.Load(),
		Published:     p.stats.published.Load(),
		LastInference: time.Duration(p.stats.lastInference.Load()),
		LastCycle:     time.Duration(p.stats.lastCycle.Load()),
	}
}

// Stop nimmt keine Frames mehr an und wartet auf den laufenden Zyklus.
// Laeuft ctx vorher ab, wird ctx.Err() zurueckgegeben und der Zyklus behaelt seine Puffer
// bis er endet. Stop darf mehrfach aufgerufen werden.
func (p *Pipeline) Stop(ctx context.Context) error {
	if !p.stopped.Swap(true) {
		p.cancel()
	}

	for {
		// Wer das Flag haelt, startet keinen Zyklus mehr
		if p.busy.CompareAndSwap(false, true) {
			p.state.Store(int32(StateStopped))
			close(p.halted)
			slog.Debug("pipeline stopped", "published", p.stats.published.Load())
			return nil
		}

		select {
		case <-p.halted:
			return nil
		case <-p.idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
