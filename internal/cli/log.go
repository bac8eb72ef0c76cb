// Package cli implements the b4wexport command-line interface.
//
// The commands export scene files, browse the messages recorded in an
// exported document, check a document against its binary sidecar and draw
// node trees. Commands are built with cobra; all logging goes through one
// charmbracelet/log logger that is also attached to each command's context.
//
// # Commands
//
//   - export: Write the JSON document, the binary sidecar and packed media
//   - messages: Browse the warnings and errors recorded in a document
//   - inspect: Print the binaries table and validate the sidecar
//   - nodetree: Draw a material, world or node group tree as SVG or DOT
//   - cache: Manage the cooked geometry cache
//
// Every command accepts --verbose (-v) for debug logging, which also logs
// each pipeline stage as it completes.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/observability"
)

// newLogger creates the CLI logger. Timestamps read "15:04:05.00" and level
// badges use the CLI palette.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(colorYellow)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERRO").Bold(true).Foreground(colorRed)
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(colorRed)
	l.SetStyles(styles)
	return l
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Exported level.yaml (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// stageLogger logs every finished pipeline stage at debug level.
type stageLogger struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

func (s stageLogger) OnStageComplete(_ context.Context, ev observability.StageEvent) {
	kv := []any{"subject", ev.Subject, "count", ev.Count, "duration", ev.Duration.Round(time.Microsecond)}
	if ev.Messages > 0 {
		kv = append(kv, "messages", ev.Messages)
	}
	if ev.Err != nil {
		kv = append(kv, "err", ev.Err)
	}
	s.logger.Debug("stage "+string(ev.Stage), kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
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
