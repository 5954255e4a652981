// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user or local error (bad args, unknown task id,
	// empty title).
	UserError = 1

	// AuthError indicates missing or rejected credentials.
	AuthError = 2

	// RemoteError indicates a failure reported by, or while reaching, the
	// task API.
	RemoteError = 3
)
