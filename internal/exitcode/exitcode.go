// Package exitcode defines process exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, unknown tasks and rejected input.
	UserError = 1

	// AuthError means no valid session, or the server rejected the credentials.
	AuthError = 2

	// BackendError covers transport failures and unexpected server responses.
	BackendError = 3
)
