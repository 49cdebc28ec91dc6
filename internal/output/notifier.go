package output

import (
	"errors"
	"fmt"
	"io"

	"taskboard/internal/service"
	"taskboard/internal/store"
)

// Notifier prints store notifications: successes to out unless quiet,
// errors to errOut as "error: <message>: <cause>".
type Notifier struct {
	Out    io.Writer
	ErrOut io.Writer
	Quiet  bool
}

// Notify implements store.Notifier.
func (n *Notifier) Notify(note store.Notification) {
	if note.Level == store.LevelError {
		if note.Err != nil {
			fmt.Fprintf(n.ErrOut, "error: %s: %s\n", note.Message, describe(note.Err))
			return
		}
		fmt.Fprintf(n.ErrOut, "error: %s\n", note.Message)
		return
	}
	if !n.Quiet {
		fmt.Fprintln(n.Out, note.Message)
	}
}

// describe shortens not-found causes, which otherwise carry the raw server reply.
func describe(err error) string {
	if errors.Is(err, service.ErrNotFound) {
		return "not found"
	}
	return err.Error()
}
