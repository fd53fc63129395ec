// cmd_bench.go - Stufen der Pipeline synchron messen
// Hauptfunktionen: BenchHandler, runBench, renderBench
package cmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sys/cpu"

	"github.com/7blacky7/seglive/envconfig"
	"github.com/7blacky7/seglive/frame"
	"github.com/7blacky7/seglive/geometry"
	"github.com/7blacky7/seglive/inference"
	"github.com/7blacky7/seglive/logutil"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/pipeline"
	"github.com/7blacky7/seglive/source"
	"github.com/7blacky7/seglive/tensor"
)

// benchConfig beschreibt einen Benchmark-Lauf
type benchConfig struct {
	frames   int
	sizes    [][2]int
	parallel int
	infer    inference.Config
	opts     pipeline.Options
}

// benchResult enthaelt die mittlere Dauer pro Stufe fuer eine Frame-Groesse
type benchResult struct {
	Width, Height int
	Frames        int
	Points        int

	Convert time.Duration
	Crop    time.Duration
	Pack    time.Duration
	Infer   time.Duration
	Map     time.Duration
}

func (r benchResult) Total() time.Duration {
	return r.Convert + r.Crop + r.Pack + r.Infer + r.Map
}

// parseSizes - "640x480,1280x720" in Groessen zerlegen
func parseSizes(s string) ([][2]int, error) {
	var sizes [][2]int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, h, err := envconfig.ParseSize(part)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, [2]int{w, h})
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no frame sizes given")
	}
	return sizes, nil
}

// runBench - misst alle Groessen, hoechstens parallel gleichzeitig
func runBench(ctx context.Context, cfg benchConfig) ([]benchResult, error) {
	results := make([]benchResult, len(cfg.sizes))
	sem := semaphore.NewWeighted(int64(max(cfg.parallel, 1)))
	g, gctx := errgroup.WithContext(ctx)

	for i, size := range cfg.sizes {
		if err := sem.Acquire(gctx, 1); err != nil {
			if werr := g.Wait(); werr != nil {
				return nil, werr
			}
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			r, err := benchSize(gctx, cfg, size[0], size[1])
			if err != nil {
				return fmt.Errorf("bench %dx%d: %w", size[0], size[1], err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// benchSize - eine Groesse, eigene Session und eigene Puffer
func benchSize(ctx context.Context, cfg benchConfig, width, height int) (benchResult, error) {
	res := benchResult{Width: width, Height: height}
	opts := cfg.opts

	gw, err := inference.Open(cfg.infer)
	if err != nil {
		return res, err
	}
	defer gw.Close()

	tr, err := geometry.Compute(geometry.Params{
		FrameWidth:     width,
		FrameHeight:    height,
		CropSize:       opts.CropSize,
		Rotation:       opts.Rotation,
		MaintainAspect: opts.MaintainAspect,
	})
	if err != nil {
		return res, err
	}

	packer, err := tensor.NewPacker(opts.Normalization, opts.Layout, opts.CropSize)
	if err != nil {
		return res, err
	}

	src := &source.Synthetic{Width: width, Height: height, Pattern: source.Moving, PixelStride: 2, Y: 16, U: 128, V: 128}
	conv := frame.NewConverter(opts.ConvertWorkers)
	rgb := image.NewRGBA(image.Rect(0, 0, width, height))
	crop := image.NewRGBA(image.Rect(0, 0, opts.CropSize, opts.CropSize))
	mapper := overlay.Mapper{Size: opts.CropSize, Threshold: opts.Threshold, Origin: opts.Origin, Order: opts.Order}

	var points []overlay.Point
	for n := range max(cfg.frames, 1) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		f, err := src.Render(n)
		if err != nil {
			return res, err
		}

		start := time.Now()
		if err := conv.Convert(rgb, f); err != nil {
			return res, err
		}
		t1 := time.Now()
		if err := geometry.Crop(crop, rgb, tr, opts.Interpolation); err != nil {
			return res, err
		}
		t2 := time.Now()
		input, err := packer.Pack(crop)
		if err != nil {
			return res, err
		}
		t3 := time.Now()
		grid, err := gw.Run(ctx, input)
		if err != nil {
			return res, err
		}
		t4 := time.Now()
		points = overlay.Collect(points, mapper.Points(grid, tr.Inverse))
		t5 := time.Now()

		res.Convert += t1.Sub(start)
		res.Crop += t2.Sub(t1)
		res.Pack += t3.Sub(t2)
		res.Infer += t4.Sub(t3)
		res.Map += t5.Sub(t4)
		res.Frames++
	}

	d := time.Duration(res.Frames)
	res.Convert /= d
	res.Crop /= d
	res.Pack /= d
	res.Infer /= d
	res.Map /= d
	res.Points = len(points)

	logutil.Trace("bench size done", "width", width, "height", height, "total", res.Total())
	return res, nil
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
}

// renderBench - Tabelle im Stil von seglive ps
func renderBench(w io.Writer, results []benchResult) {
	var data [][]string
	for _, r := range results {
		fps := "-"
		if total := r.Total(); total > 0 {
			fps = fmt.Sprintf("%.1f", float64(time.Second)/float64(total))
		}
		data = append(data, []string{
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			fmt.Sprint(r.Frames),
			formatDuration(r.Convert),
			formatDuration(r.Crop),
			formatDuration(r.Pack),
			formatDuration(r.Infer),
			formatDuration(r.Map),
			formatDuration(r.Total()),
			fps,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"SIZE", "FRAMES", "CONVERT", "CROP", "PACK", "INFER", "MAP", "TOTAL", "FPS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

// BenchHandler - Fuehrt den Benchmark aus und druckt die Tabelle
func BenchHandler(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))

	frames, _ := cmd.Flags().GetInt("frames")
	parallel, _ := cmd.Flags().GetInt("parallel")
	sizesFlag, _ := cmd.Flags().GetString("sizes")

	sizes, err := parseSizes(sizesFlag)
	if err != nil {
		return err
	}

	infer, err := inferenceConfig()
	if err != nil {
		return err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		infer.Backend = backend
	}

	opts, err := pipelineOptions()
	if err != nil {
		return err
	}

	results, err := runBench(cmd.Context(), benchConfig{
		frames:   frames,
		sizes:    sizes,
		parallel: parallel,
		infer:    infer,
		opts:     opts,
	})
	if err != nil {
		return err
	}

	fmt.Printf("cpu: avx2=%t sse41=%t asimd=%t, convert workers %d\n\n", cpu.X86.HasAVX2, cpu.X86.HasSSE41, cpu.ARM64.HasASIMD, opts.ConvertWorkers)
	renderBench(os.Stdout, results)
	return nil
}

// newBenchCmd - Erstellt den bench Command
func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure conversion, crop, pack, inference and mapping per frame size",
		Args:  cobra.ExactArgs(0),
		RunE:  BenchHandler,
	}

	cmd.Flags().Int("frames", 100, "Frames per size")
	cmd.Flags().String("sizes", "640x480,1280x720", "Comma separated frame sizes")
	cmd.Flags().Int("parallel", 1, "Sizes measured concurrently")
	cmd.Flags().String("backend", "", "Inference backend, overrides SEGLIVE_BACKEND")

	return cmd
}
