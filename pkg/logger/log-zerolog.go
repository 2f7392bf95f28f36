package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger writes human readable lines via zerolog's console writer
type ZeroLogger struct {
	log zerolog.Logger
}

func NewZeroLogger(level LogLevel) *ZeroLogger {
	return NewZeroLoggerTo(os.Stderr, level)
}

func NewZeroLoggerTo(w io.Writer, level LogLevel) *ZeroLogger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	l := zerolog.New(out).With().Timestamp().Logger().Level(zerologLevel(level))
	return &ZeroLogger{log: l}
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogDebug:
		return zerolog.DebugLevel
	case LogError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZeroLogger) Printf(level LogLevel, format string, a ...interface{}) {
	l.log.WithLevel(zerologLevel(level)).Msg(fmt.Sprintf(format, a...))
}
func (l *ZeroLogger) Debugf(format string, a ...interface{}) {
	l.log.Debug().Msgf(format, a...)
}
func (l *ZeroLogger) Infof(format string, a ...interface{}) {
	l.log.Info().Msgf(format, a...)
}
func (l *ZeroLogger) Errorf(format string, a ...interface{}) {
	l.log.Error().Msgf(format, a...)
}
