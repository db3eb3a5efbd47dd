package types

// ViewState is the navigation state published to the host and to Redis.
type ViewState string

const (
	ViewHome   ViewState = "home"
	ViewActive ViewState = "active"
)

// LogLevel is the severity carried by LOG frames.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarning  LogLevel = "warning"
	LevelError    LogLevel = "error"
	LevelCritical LogLevel = "critical"
)
