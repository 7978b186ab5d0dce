package log

import (
	"bytes"
	"encoding/json"
	"time"
)

// LogEvent is a single structured log entry under construction.
// Field methods append key-value pairs to the entry; Msg or End finalizes
// it and hands it to the owning logger for output. All field methods are
// nil-safe so a filtered-out event costs a handful of nil checks.
type LogEvent struct {
	buf    *bytes.Buffer
	logger Logger
	level  Level
}

func newEvent(l Logger) *LogEvent {
	e := &LogEvent{
		logger: l,
		level:  DebugLevel,
		buf:    &bytes.Buffer{},
	}
	e.buf.Grow(512)
	return e
}

// Reset clears the event so it can be reused from the pool.
func (e *LogEvent) Reset() {
	e.buf.Reset()
	e.level = DebugLevel
	appendBeginMarker(e.buf)
}

// Level returns the severity of the event.
func (e *LogEvent) Level() Level {
	return e.level
}

// Str appends a string field.
func (e *LogEvent) Str(k, v string) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendString(e.buf, v)
	return e
}

// Int appends an int field.
func (e *LogEvent) Int(k string, v int) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendInt64(e.buf, int64(v))
	return e
}

// Int64 appends an int64 field.
func (e *LogEvent) Int64(k string, v int64) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendInt64(e.buf, v)
	return e
}

// Uint64 appends a uint64 field.
func (e *LogEvent) Uint64(k string, v uint64) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendUint64(e.buf, v)
	return e
}

// Float64 appends a float64 field.
func (e *LogEvent) Float64(k string, v float64) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendFloat64(e.buf, v)
	return e
}

// Bool appends a bool field.
func (e *LogEvent) Bool(k string, v bool) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendBool(e.buf, v)
	return e
}

// Dur appends a duration field rendered in milliseconds.
func (e *LogEvent) Dur(k string, v time.Duration) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	appendFloat64(e.buf, float64(v.Microseconds())/1000)
	return e
}

// Err appends the error message under the "error" key.
// A nil error is rendered as null.
func (e *LogEvent) Err(v error) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, "error")
	if v != nil {
		appendString(e.buf, v.Error())
	} else {
		appendNil(e.buf)
	}
	return e
}

// Any appends an arbitrary value serialized with encoding/json.
func (e *LogEvent) Any(k string, v any) *LogEvent {
	if e == nil {
		return nil
	}
	appendKey(e.buf, k)
	b, err := json.Marshal(v)
	if err != nil {
		appendString(e.buf, err.Error())
	} else {
		appendString(e.buf, string(b))
	}
	return e
}

// Msg appends the final message and emits the event.
func (e *LogEvent) Msg(v string) {
	if e == nil {
		return
	}
	e.Str("msg", v)
	e.End()
}

// End finalizes the event without a message and emits it.
func (e *LogEvent) End() {
	if e == nil {
		return
	}
	appendEndMarker(e.buf)
	appendLineBreak(e.buf)
	e.logger.OnEventEnd(e)
}
