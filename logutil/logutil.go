// logutil.go - Logging-Hilfsfunktionen
//
// Dieses Modul enthaelt:
// - LevelTrace: Log-Level unterhalb von Debug
// - NewLogger: Erstellt einen slog.Logger mit Source-Kuerzung
// - Trace: Loggt auf Trace-Level ueber den Default-Logger
package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

// LevelTrace liegt unterhalb von slog.LevelDebug
const LevelTrace slog.Level = slog.LevelDebug - 4

// NewLogger erstellt einen Logger, der Dateipfade auf den Basisnamen kuerzt
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

// Trace loggt eine Nachricht auf Trace-Level
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}
