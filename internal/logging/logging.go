// Package logging builds the zap logger used by the CLI and bridges merge
// diagnostics onto it.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/loopcontext/stringsconv"
)

// levelEncoder prints the prefixes translators are used to from the old scripts.
func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.WarnLevel:
		enc.AppendString("WARNING:")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR:")
	default:
		enc.AppendString(l.CapitalString() + ":")
	}
}

// New returns a console logger writing to w. Warnings and errors are always shown;
// verbose adds info and debug output.
func New(w io.Writer, verbose bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	encCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// Observer reports merge diagnostics through a zap logger.
type Observer struct {
	log *zap.Logger
}

var _ stringsconv.Observer = (*Observer)(nil)

func NewObserver(log *zap.Logger) *Observer {
	return &Observer{log: log}
}

func (o *Observer) OnMalformedLine(line int, text string) {
	o.log.Error("Ignoring malformed line", zap.Int("line", line), zap.String("text", text))
}

func (o *Observer) OnMissingKey(line int, key string) {
	o.log.Warn("String key not found in target file", zap.String("key", key), zap.Int("line", line))
}

func (o *Observer) OnUnsortedKey(key string) {
	o.log.Debug("Appending key missing from master", zap.String("key", key))
}

// LogReport writes the end-of-run summary at info level.
func LogReport(log *zap.Logger, target string, report stringsconv.Report) {
	log.Info("Merge finished",
		zap.String("target", target),
		zap.Int("merged", report.Merged),
		zap.Int("missing", len(report.MissingKeys)),
		zap.Int("malformed", len(report.MalformedLines)),
		zap.Int("unsorted", len(report.Unsorted)),
		zap.Duration("took", report.Duration),
	)
}
