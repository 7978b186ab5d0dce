// Package log implements a small structured logging facility with a fluent
// event API, pluggable appenders and pooled event objects.
package log

import (
	"runtime"
	"strconv"
	"sync"
)

// Logger is a structured logging component producing leveled events.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	Fatal() *LogEvent
	AddAppender(appender LogAppender)
	OnEventEnd(e *LogEvent)
}

// EventLogger is the default Logger implementation. It filters by minimum
// level, optionally captures caller information and fans finished events
// out to its appenders. Events are pooled to keep the hot path
// allocation-free.
type EventLogger struct {
	appenders  []LogAppender
	minLevel   Level
	callerSkip int
	withCaller bool
	eventPool  *sync.Pool
	mu         sync.RWMutex
}

// NewLogger creates an EventLogger from cfg. A nil cfg selects the
// default configuration (info level, console output).
func NewLogger(cfg *LogCfg) *EventLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	l := &EventLogger{
		minLevel:   cfg.LogLevel,
		callerSkip: cfg.CallerSkip,
		withCaller: cfg.EnabledCallerInfo,
	}
	l.eventPool = &sync.Pool{
		New: func() any {
			return newEvent(l)
		},
	}

	if cfg.ConsoleAppender {
		l.AddAppender(NewConsoleAppender())
	}
	return l
}

// AddAppender registers an additional output destination.
func (l *EventLogger) AddAppender(appender LogAppender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appenders = append(l.appenders, appender)
}

// Refresh flushes all appenders.
func (l *EventLogger) Refresh() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.appenders {
		_ = a.Refresh()
	}
}

// Close flushes and closes all appenders.
func (l *EventLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.appenders {
		_ = a.Close()
	}
	l.appenders = nil
}

func (l *EventLogger) newEvent(level Level) *LogEvent {
	if level < l.minLevel {
		return nil
	}
	e := l.eventPool.Get().(*LogEvent)
	e.Reset()
	e.level = level
	e.Str("level", level.String())
	if l.withCaller {
		if _, file, line, ok := runtime.Caller(2 + l.callerSkip); ok {
			e.Str("caller", file+":"+strconv.Itoa(line))
		}
	}
	return e
}

// Debug creates a debug-level event, or nil when filtered out.
func (l *EventLogger) Debug() *LogEvent { return l.newEvent(DebugLevel) }

// Info creates an info-level event, or nil when filtered out.
func (l *EventLogger) Info() *LogEvent { return l.newEvent(InfoLevel) }

// Warn creates a warn-level event, or nil when filtered out.
func (l *EventLogger) Warn() *LogEvent { return l.newEvent(WarnLevel) }

// Error creates an error-level event, or nil when filtered out.
func (l *EventLogger) Error() *LogEvent { return l.newEvent(ErrorLevel) }

// Fatal creates a fatal-level event. Fatal events are never filtered.
func (l *EventLogger) Fatal() *LogEvent { return l.newEvent(FatalLevel) }

// OnEventEnd writes the finished event to all appenders and returns it to
// the pool.
func (l *EventLogger) OnEventEnd(e *LogEvent) {
	l.mu.RLock()
	for _, a := range l.appenders {
		_, _ = a.Write(e.buf.Bytes())
	}
	l.mu.RUnlock()
	l.eventPool.Put(e)
}

var _defaultLogger *EventLogger

func init() {
	_defaultLogger = NewLogger(getDefaultCfg())
}

// Initialize replaces the default logger configuration. It should be
// called once at application startup; a nil cfg keeps the defaults.
func Initialize(cfg *LogCfg) error {
	if cfg == nil {
		cfg = getDefaultCfg()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	SetDefaultLogger(NewLogger(cfg))
	return nil
}

// SetDefaultLogger replaces the package-level default logger.
func SetDefaultLogger(logger *EventLogger) {
	_defaultLogger = logger
}

// AddAppender adds an appender to the default logger.
func AddAppender(appender LogAppender) {
	_defaultLogger.AddAppender(appender)
}

// Close flushes and closes the default logger.
func Close() {
	_defaultLogger.Close()
}

// Debug creates a debug-level event on the default logger.
func Debug() *LogEvent { return _defaultLogger.Debug() }

// Info creates an info-level event on the default logger.
func Info() *LogEvent { return _defaultLogger.Info() }

// Warn creates a warn-level event on the default logger.
func Warn() *LogEvent { return _defaultLogger.Warn() }

// Error creates an error-level event on the default logger.
func Error() *LogEvent { return _defaultLogger.Error() }

// Fatal creates a fatal-level event on the default logger.
func Fatal() *LogEvent { return _defaultLogger.Fatal() }
