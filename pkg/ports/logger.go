package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug covers per-tick and per-source internals.
	LevelDebug LogLevel = iota
	// LevelInfo covers job and batch progress.
	LevelInfo
	// LevelWarn covers dropped sources and skipped recordings.
	LevelWarn
	// LevelError covers aborted jobs.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Components log through loggers derived with WithComponent, e.g. "resample".

// Logger abstracts logging operations with multi-language support.
type Logger interface {
	// Debug logs a message key with format arguments at debug level.
	// The key is looked up in the registered lexicons before formatting.
	Debug(msg string, args ...interface{})

	// Info logs at info level.
	Info(msg string, args ...interface{})

	// Warn logs at warn level.
	Warn(msg string, args ...interface{})

	// Error logs at error level.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
