// Package cli implements the cvtopo command-line interface.
//
// The commands wrap the extraction pipeline: inventories are loaded, their
// group hierarchy is rebuilt as a container tree and the topology below a
// chosen container is written out for CloudVision provisioning.
//
// # Commands
//
//   - topology: extract a topology (and configlets) to YAML or JSON
//   - tree: print the container tree of an inventory
//   - devices: print the devices of one container
//   - configlets: list the configlets of a directory
//   - render: draw a topology as DOT or SVG
//   - serve: run the HTTP API
//   - snapshots: inspect stored topologies
//   - cache: manage the result cache
//
// # Configuration
//
// Settings come from flags, CVTOPO_* environment variables (a .env file in
// the working directory is loaded first), and cvtopo.toml, in that order of
// precedence.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of a step together with its duration.
// It is meant for sequential use by one goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time rounded to
// the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "duration", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
