// cmd_serve.go - Quelle, Pipeline und Renderer-Server starten
// Hauptfunktionen: RunServer, openSource, versionHandler
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/7blacky7/seglive/api"
	"github.com/7blacky7/seglive/envconfig"
	"github.com/7blacky7/seglive/frame"
	"github.com/7blacky7/seglive/inference"
	"github.com/7blacky7/seglive/logutil"
	"github.com/7blacky7/seglive/pipeline"
	"github.com/7blacky7/seglive/server"
	"github.com/7blacky7/seglive/source"
	"github.com/7blacky7/seglive/version"
)

// stopGrace ist die Wartezeit auf den laufenden Zyklus beim Beenden
const stopGrace = 3 * time.Second

// openSource - Erstellt die Bildquelle fuer serve
func openSource(kind, imagePath, pattern string) (source.Source, error) {
	fps := float64(envconfig.FPS())

	switch kind {
	case "", "synthetic":
		p, err := source.ParsePattern(pattern)
		if err != nil {
			return nil, err
		}
		w, h := envconfig.Preview()
		s := source.NewSynthetic(w, h)
		s.FPS = fps
		s.Pattern = p
		// Android liefert NV21, Chroma ist verschraenkt
		s.PixelStride = 2
		return s, nil
	case "still":
		if imagePath == "" {
			return nil, fmt.Errorf("%w: --image is required for the still source", source.ErrInvalidSource)
		}
		s, err := source.OpenStill(imagePath)
		if err != nil {
			return nil, err
		}
		s.FPS = fps
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown source %q", source.ErrInvalidSource, kind)
}

// RunServer - Startet Quelle, Pipeline und Server bis SIGINT/SIGTERM
func RunServer(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	flags := cmd.Flags()
	kind, _ := flags.GetString("source")
	imagePath, _ := flags.GetString("image")
	pattern, _ := flags.GetString("pattern")
	screenRotation, _ := flags.GetInt("screen-rotation")

	cfg, err := inferenceConfig()
	if err != nil {
		return err
	}
	if backend, _ := flags.GetString("backend"); backend != "" {
		cfg.Backend = backend
	}
	if model, _ := flags.GetString("model"); model != "" {
		cfg.ModelPath = model
	}
	cfg.Options, _ = flags.GetStringToString("backend-option")

	opts, err := pipelineOptions()
	if err != nil {
		return err
	}
	opts.Rotation = pipeline.SensorOrientation(opts.Rotation, screenRotation)

	src, err := openSource(kind, imagePath, pattern)
	if err != nil {
		return err
	}

	gw, err := inference.Open(cfg)
	if err != nil {
		return err
	}

	luma := &pipeline.LumaTracker{}
	opts.Trackers = append(opts.Trackers, luma)
	p, err := pipeline.New(gw, opts)
	if err != nil {
		gw.Close()
		return err
	}

	width, height := src.Size()
	if err := p.Prepare(width, height); err != nil {
		gw.Close()
		return err
	}

	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		gw.Close()
		return err
	}

	slog.Info("pipeline ready", "source", kind, "backend", gw.Backend(), "width", width, "height", height, "rotation", opts.Rotation)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return src.Run(gctx, func(f *frame.RawFrame) { p.OnFrame(f) })
	})
	g.Go(func() error {
		return server.New(p, gw.Backend(), luma).Serve(gctx, ln)
	})
	runErr := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopGrace)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		// der abgebrochene Zyklus haelt das Gateway noch, nicht schliessen
		slog.Warn("abandoning in-flight cycle", "error", err)
		return runErr
	}

	st := p.Stats()
	slog.Info("pipeline stopped", "delivered", st.Delivered, "published", st.Published, "dropped", st.Dropped)
	if err := gw.Close(); err != nil {
		slog.Warn("closing inference backend", "error", err)
	}
	return runErr
}

// versionHandler - Zeigt Client- und Server-Version
func versionHandler(cmd *cobra.Command, _ []string) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Println("Warning: could not connect to a running seglive instance")
	}

	if serverVersion != "" {
		fmt.Printf("seglive version is %s\n", serverVersion)
	}

	if serverVersion != version.Version {
		fmt.Printf("Warning: client version is %s\n", version.Version)
	}
}

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the segmentation pipeline and renderer API",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}

	cmd.Flags().String("source", "synthetic", "Frame source (synthetic, still)")
	cmd.Flags().String("image", "", "Image file for the still source (png, jpeg, bmp, webp)")
	cmd.Flags().String("pattern", "moving", "Pattern of the synthetic source (solid, moving)")
	cmd.Flags().String("backend", "", "Inference backend (synthetic, onnx, tflite), overrides SEGLIVE_BACKEND")
	cmd.Flags().String("model", "", "Model file, overrides SEGLIVE_MODEL")
	cmd.Flags().StringToString("backend-option", nil, "Backend specific option key=value")
	cmd.Flags().Int("screen-rotation", 0, "Screen rotation in degrees, added to SEGLIVE_ROTATION")

	return cmd
}
