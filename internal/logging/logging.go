// Package logging configures the process-wide zerolog logger. Adopted per
// SPEC_FULL.md's ambient stack: the teacher logs via fmt.Printf
// (internal/miner's old pool.go, internal/rpc/server.go), but weisyn-go-weisyn
// shows the idiomatic structured-logging shape for this kind of pack —
// zerolog's global logger plus a console writer for local runs.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the process-wide logger. debug raises the level to Debug;
// otherwise Info. pretty selects a human-readable console writer (for a
// terminal) over newline-delimited JSON (for log aggregation).
func Init(debug, pretty bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// For returns a child logger tagged with a component name, the teacher's
// equivalent of a per-subsystem prefix (e.g. "[pool]", "[rpc]" in its
// fmt.Printf call sites).
func For(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
