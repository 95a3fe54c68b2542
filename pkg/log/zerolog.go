package log

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	pkgerrors "github.com/YuminosukeSato/concretego/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
	level  *Level
}

// ZerologProvider implements LoggerProvider on top of zerolog.
// All loggers created by one provider share a minimum level.
type ZerologProvider struct {
	out   io.Writer
	level Level
}

// NewZerologProvider creates a provider emitting JSON log lines to stderr.
func NewZerologProvider(level Level) *ZerologProvider {
	return NewZerologProviderWithWriter(level, os.Stderr)
}

// NewZerologProviderWithWriter creates a provider writing to the given writer.
// Tests use this with a buffer to assert on emitted records.
func NewZerologProviderWithWriter(level Level, w io.Writer) *ZerologProvider {
	return &ZerologProvider{out: w, level: level}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	zl := zerolog.New(p.out).Level(toZerologLevel(p.level)).With().Timestamp().Logger()
	return &zerologLogger{logger: zl, level: &p.level}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.level = level
}

// WarnFunc returns a function suitable for errors.SetZerologWarnFunc so that
// library warnings (e.g. ConvergenceWarning) are emitted as structured records.
func (p *ZerologProvider) WarnFunc() func(warning error) {
	logger := p.GetLoggerWithName("warnings")
	return func(warning error) {
		logger.Warn(warning.Error(), ErrAttrKey, warning)
	}
}

// InstallWarningHandler routes pkg/errors warnings through this provider.
func (p *ZerologProvider) InstallWarningHandler() {
	pkgerrors.SetZerologWarnFunc(p.WarnFunc())
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	z.emit(z.logger.Error(), msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr {
			ctx = ctx.AnErr(key, err)
		} else {
			ctx = ctx.Interface(key, fields[i+1])
		}
	}
	return &zerologLogger{logger: ctx.Logger(), level: z.level}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return level >= *z.level
}

func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr {
			e = e.AnErr(key, err)
		} else {
			e = e.Interface(key, fields[i+1])
		}
	}
	e.Msg(msg)
}
