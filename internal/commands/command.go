// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Needs reports what the dispatcher must prepare before Run.
	Needs() Need

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths).
	// st is nil for NeedNothing; for NeedAPI only st.API is set.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int
}

// Need is what a command requires from the dispatcher.
type Need int

const (
	// NeedNothing commands run on config alone (help, version, init).
	NeedNothing Need = iota
	// NeedAPI commands get the backend but build their own stores (serve).
	NeedAPI
	// NeedStores commands get stores over the backend without a session check.
	NeedStores
	// NeedSession commands run only after the session check allowed them.
	NeedSession
)

// UsesBackend reports whether the dispatcher must create a backend.
func (n Need) UsesBackend() bool { return n != NeedNothing }

// ExitCode maps a store or backend failure to a process exit code.
// Store methods have already reported the failure through the notifier.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, service.ErrUnauthorized):
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnsupported):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}
