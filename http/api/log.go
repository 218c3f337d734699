package api

// LogEvent represents a log event from the app
type LogEvent map[string]interface{}
