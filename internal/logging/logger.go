// Package logging provides the structured logging abstraction used by every
// component. The rest of the code depends on Logger only; logrus stays behind
// LogrusAdapter.
package logging

// Logger is the structured logger injected into components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger carrying err on every entry.
	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for Field{Key: key, Value: value}.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
