package main

// Exit codes used by all pubsync commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no site found, invalid pubsync.yml, bad template)
	ExitDataError   = 3 // Data error (defective record, page collision)
	ExitAPIError    = 4 // Entrez error (network failure, rate limited, bad response)
)
