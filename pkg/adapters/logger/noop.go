package logger

import "github.com/user/camgrid/pkg/ports"

// NoopLogger discards everything. Used for --quiet and in tests.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (*NoopLogger) Debug(string, ...interface{}) {}
func (*NoopLogger) Info(string, ...interface{}) {}
func (*NoopLogger) Warn(string, ...interface{}) {}
func (*NoopLogger) Error(string, ...interface{}) {}

// WithComponent returns the receiver.
func (l *NoopLogger) WithComponent(string) ports.Logger { return l }

var _ ports.Logger = (*NoopLogger)(nil)
