// MODUL: logutil
// ZWECK: Erzeugt den slog-Logger fuer CLI und Server
// INPUT: Ziel-Writer, Log-Level (envconfig.LogLevel)
// OUTPUT: *slog.Logger mit Text-Handler
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: log/slog
// HINWEISE: LevelTrace liegt unter Debug und wird mit SEGLIVE_DEBUG=2 aktiv

package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

// LevelTrace ist feiner als Debug, fuer Meldungen pro Frame
const LevelTrace slog.Level = -8

// NewLogger erstellt einen Text-Logger mit Quellangabe.
// Dateipfade werden auf den Dateinamen gekuerzt.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if lvl, ok := attr.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}

// Trace loggt auf LevelTrace ueber den Default-Logger
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}

// Enabled meldet ob der Default-Logger das Level ausgibt.
// Spart Argument-Aufbereitung im Frame-Pfad.
func Enabled(level slog.Level) bool {
	return slog.Default().Enabled(context.TODO(), level)
}
