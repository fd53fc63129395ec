// Package server - Renderer-Schnittstelle fuer seglive
// Beinhaltet: Server-Struct, Router-Registrierung, Server-Start
//
// Der Renderer zieht den letzten Snapshot selbst ab, der Server blockiert
// die Pipeline nie. Alle Handler lesen nur ueber Latest und Stats.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/7blacky7/seglive/envconfig"
	"github.com/7blacky7/seglive/logutil"
	"github.com/7blacky7/seglive/overlay"
	"github.com/7blacky7/seglive/pipeline"
	"github.com/7blacky7/seglive/version"
)

var mode string = gin.DebugMode

// Pipeline ist die Lesesicht des Servers auf die Verarbeitung
type Pipeline interface {
	Latest() *overlay.Snapshot
	Stats() pipeline.Stats
	RequestDump() bool
	Options() pipeline.Options
}

// Server liefert Overlays und Zaehler an den Renderer
type Server struct {
	addr     net.Addr
	pipeline Pipeline
	backend  string
	luma     *pipeline.LumaTracker
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// New baut einen Server. luma darf nil sein.
func New(p Pipeline, backend string, luma *pipeline.LumaTracker) *Server {
	return &Server{pipeline: p, backend: backend, luma: luma}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Recovery(),
		requestLogger(),
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "seglive is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "seglive is running") })
	r.HEAD("/api/version", s.VersionHandler)
	r.GET("/api/version", s.VersionHandler)

	// Overlay
	r.GET("/api/overlay", s.OverlayHandler)
	r.GET("/api/stats", s.StatsHandler)
	r.GET("/api/crop.png", s.CropHandler)
	r.POST("/api/dump", s.DumpHandler)

	return r
}

// requestLogger loggt jede Anfrage auf Trace-Ebene, der Renderer pollt staendig
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Log(c.Request.Context(), logutil.LevelTrace, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Serve bedient ln bis ctx endet
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.addr = ln.Addr()

	srvr := &http.Server{
		Handler:           s.GenerateRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srvr.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown", "error", err)
			srvr.Close()
		}
	}()

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	if err := srvr.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
