package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/7blacky7/seglive/frame"
	"github.com/7blacky7/seglive/geometry"
	"github.com/7blacky7/seglive/inference"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/tensor"
)

// cycle haelt die Arbeitspuffer eines Zyklus. Sie ueberleben den Zyklus und werden wiederverwendet.
type cycle struct {
	frame     frame.RawFrame
	transform *geometry.Transform
	admitted  time.Time

	rgb    *image.RGBA
	crop   *image.RGBA
	packer *tensor.Packer

	lastPoints int
}

func (c *cycle) ensureRGB(width, height int) {
	if c.rgb != nil && c.rgb.Rect.Dx() == width && c.rgb.Rect.Dy() == height {
		return
	}
	c.rgb = image.NewRGBA(image.Rect(0, 0, width, height))
}

type statStringer interface {
	StatString() string
}

// process laeuft im Worker. Fehler behalten den vorherigen Snapshot.
func (p *Pipeline) process(c *cycle) {
	defer p.release()
	defer func() {
		if r := recover(); r != nil {
			p.stats.failures.Add(1)
			slog.Error("pipeline cycle panicked", "panic", r)
		}
	}()

	p.state.Store(int32(StateProcessing))
	snap, err := p.run(c)
	if err != nil {
		if errors.Is(err, inference.ErrInferenceFailure) {
			p.stats.failures.Add(1)
			slog.Warn("inference failed", "error", err)
		} else {
			p.stats.malformed.Add(1)
			slog.Debug("cycle aborted", "error", err)
		}
		return
	}

	p.state.Store(int32(StatePublishing))
	p.latest.Store(snap)
	p.stats.published.Add(1)
	slog.Debug("overlay published", "snapshot", snap)
}

func (p *Pipeline) run(c *cycle) (*overlay.Snapshot, error) {
	f := &c.frame
	c.ensureRGB(f.Width, f.Height)
	if err := p.converter.Convert(c.rgb, f); err != nil {
		return nil, err
	}
	if err := geometry.Crop(c.crop, c.rgb, c.transform, p.opts.Interpolation); err != nil {
		return nil, err
	}
	input, err := c.packer.Pack(c.crop)
	if err != nil {
		return nil, err
	}

	dump := p.opts.DumpDir != "" && (p.opts.DumpEvery || p.dumpRequested.Swap(false))
	if dump {
		tensor.Dump(filepath.Join(p.opts.DumpDir, tensor.InputDumpName), input)
		dumpCrop(filepath.Join(p.opts.DumpDir, CropDumpName), c.crop)
	}

	start := time.Now()
	grid, err := p.gateway.Run(p.ctx, input)
	elapsed := time.Since(start)
	if err != nil {
		if !errors.Is(err, inference.ErrInferenceFailure) {
			err = fmt.Errorf("%w: %w", inference.ErrInferenceFailure, err)
		}
		return nil, err
	}
	if dump {
		tensor.Dump(filepath.Join(p.opts.DumpDir, tensor.OutputDumpName), grid)
	}

	points := overlay.Collect(make([]overlay.Point, 0, c.lastPoints), p.mapper.Points(grid, c.transform.Inverse))
	c.lastPoints = len(points)

	snap := &overlay.Snapshot{
		Seq:               p.seq.Add(1),
		TraceID:           uuid.NewString(),
		Timestamp:         time.Now(),
		FrameTimestamp:    f.Timestamp,
		FrameWidth:        f.Width,
		FrameHeight:       f.Height,
		CropSize:          p.opts.CropSize,
		Rotation:          c.transform.Params.Rotation,
		Threshold:         p.opts.Threshold,
		InferenceDuration: elapsed,
		CycleDuration:     time.Since(c.admitted),
		Points:            points,
	}
	if s, ok := p.gateway.(statStringer); ok {
		snap.Stats = s.StatString()
	}
	if p.opts.KeepCrop {
		snap.Crop = cloneRGBA(c.crop)
	}

	p.stats.lastInference.Store(int64(elapsed))
	p.stats.lastCycle.Store(int64(snap.CycleDuration))
	return snap, nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := &image.RGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}
