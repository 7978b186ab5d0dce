package log

import "os"

// LogAppender is the output destination for formatted log entries.
// Implementations must be safe for concurrent use.
type LogAppender interface {
	// Write outputs one formatted log entry.
	Write(buf []byte) (n int, err error)

	// Refresh forces any buffered entries to be written immediately.
	Refresh() error

	// Close flushes buffered entries and releases the destination.
	Close() error
}

// ConsoleAppender writes log entries unbuffered to stdout.
type ConsoleAppender struct{}

// NewConsoleAppender returns a stateless console appender.
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{}
}

// Write writes the entry to stdout.
func (ca *ConsoleAppender) Write(buf []byte) (int, error) {
	return os.Stdout.Write(buf)
}

// Refresh is a no-op; console writes are unbuffered.
func (ca *ConsoleAppender) Refresh() error {
	return nil
}

// Close is a no-op; stdout is not owned by the appender.
func (ca *ConsoleAppender) Close() error {
	return nil
}
