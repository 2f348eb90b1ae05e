package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no workspace, invalid config)
	ExitDataError   = 3 // Data error (malformed input, validation failure)
	ExitNetwork     = 4 // Network error (provider lookups failed)
)
