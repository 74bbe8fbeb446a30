package rtc

import (
	"github.com/pion/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loggerFactory routes the engine's internal logging through zerolog so
// ICE and DTLS noise shows up under the same sink as the rest of the app.
type loggerFactory struct{}

func (loggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return leveledLogger{lg: log.With().Str("module", "rtc."+scope).Logger()}
}

type leveledLogger struct {
	lg zerolog.Logger
}

func (l leveledLogger) Trace(msg string)                  { l.lg.Trace().Msg(msg) }
func (l leveledLogger) Tracef(format string, args ...any) { l.lg.Trace().Msgf(format, args...) }
func (l leveledLogger) Debug(msg string)                  { l.lg.Debug().Msg(msg) }
func (l leveledLogger) Debugf(format string, args ...any) { l.lg.Debug().Msgf(format, args...) }
func (l leveledLogger) Info(msg string)                   { l.lg.Info().Msg(msg) }
func (l leveledLogger) Infof(format string, args ...any)  { l.lg.Info().Msgf(format, args...) }
func (l leveledLogger) Warn(msg string)                   { l.lg.Warn().Msg(msg) }
func (l leveledLogger) Warnf(format string, args ...any)  { l.lg.Warn().Msgf(format, args...) }
func (l leveledLogger) Error(msg string)                  { l.lg.Error().Msg(msg) }
func (l leveledLogger) Errorf(format string, args ...any) { l.lg.Error().Msgf(format, args...) }
