package httplog

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Sink is the level-aware logging backend a rendered line is handed to.
// The sink owns delivery, buffering and I/O; the interceptor performs no
// retries, so a failed write propagates to the host.
type Sink interface {
	Write(level Level, line []byte) error
}

// ZerologSink writes each rendered line as the event message of a zerolog
// event at the mapped level.
type ZerologSink struct {
	Logger *zerolog.Logger
}

func (s *ZerologSink) Write(level Level, line []byte) error {
	s.Logger.WithLevel(zerologLevel(level)).Msg(string(line))
	return nil
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// MultiSink fans each line out to every sink. All sinks are attempted;
// the first error is returned.
type MultiSink []Sink

func (m MultiSink) Write(level Level, line []byte) error {
	var firstErr error
	for _, s := range m {
		if err := s.Write(level, line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

const warnDeprecationNotice = `log level "warn" is deprecated, use "debug" instead`

// emit renders one record to a single JSON line and hands it to the sink.
// An error-level configuration emits ordinary records at info; application
// errors are reported through ReportError instead of escalating request
// logs. The deprecated warn alias emits at debug after a one-time notice.
func (i *Interceptor) emit(rec map[string]any, level Level) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	switch level {
	case LevelError:
		level = LevelInfo
	case LevelWarn:
		i.warnOnce.Do(func() {
			i.sink.Write(LevelWarn, []byte(warnDeprecationNotice))
		})
		level = LevelDebug
	}
	return i.sink.Write(level, line)
}
