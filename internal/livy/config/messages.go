package config

// Error and status messages used throughout the client
const (
	// ErrSessionError is the format string for session errors
	ErrSessionError = "session error: %v"
	// ErrNoSession indicates a tool was called before a session was opened
	ErrNoSession = "no livy session is open"
	// MsgSessionReady is the format string logged once a session reaches idle
	MsgSessionReady = "Session %d ready on %s"
	// ErrMissingParam is the format string for a missing required parameter
	ErrMissingParam = "must provide '%s' parameter"
)
