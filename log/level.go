package log

import "strings"

// Level defines the severity of a log event. Higher values are more severe.
type Level int8

const (
	// TraceLevel is for very fine-grained diagnostics.
	TraceLevel Level = iota + 1
	// DebugLevel is for development and troubleshooting output.
	DebugLevel
	// InfoLevel is for normal operational messages.
	InfoLevel
	// WarnLevel signals recoverable problems or suspicious conditions.
	WarnLevel
	// ErrorLevel signals failed operations that need attention.
	ErrorLevel
	// FatalLevel signals unrecoverable failures.
	FatalLevel
)

// String returns the uppercase name of the level.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level, case-insensitively.
// Unrecognized names fall back to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return TraceLevel
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	}
	return InfoLevel
}
