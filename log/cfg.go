package log

import "fmt"

// LogCfg configures the logger: minimum level, output destinations and
// caller capture.
type LogCfg struct {
	// LogLevel is the minimum level that will be emitted.
	LogLevel Level `mapstructure:"level"`

	// ConsoleAppender enables unbuffered stdout output.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// EnabledCallerInfo enables file:line capture on every event.
	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`

	// CallerSkip is the number of extra stack frames to skip when
	// capturing caller information, for wrapper layers.
	CallerSkip int `mapstructure:"callerSkip"`
}

// Validate checks the configuration for consistency.
func (cfg *LogCfg) Validate() error {
	if cfg.LogLevel < TraceLevel || cfg.LogLevel > FatalLevel {
		return fmt.Errorf("invalid log level: %d, must be between %d (Trace) and %d (Fatal)",
			cfg.LogLevel, TraceLevel, FatalLevel)
	}
	if cfg.CallerSkip < 0 {
		return fmt.Errorf("caller skip must not be negative, got %d", cfg.CallerSkip)
	}
	return nil
}

func getDefaultCfg() *LogCfg {
	return &LogCfg{
		LogLevel:        InfoLevel,
		ConsoleAppender: true,
	}
}
