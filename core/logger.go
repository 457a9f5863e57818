package core

// Logger reports app events to the log sink.
// Implementations may inspect args for well-known types (eg. a user.User
// identifying the acting user) in addition to printing them.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
