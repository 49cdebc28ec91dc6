package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

func init() {
	Register(&EditCmd{})
	Register(&MoveCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
// Fields without a flag keep their current value; the update is a full replacement.
type EditCmd struct {
	title  optString
	desc   optString
	status optString
	due    optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskboard edit [--title <t>] [--desc <text>] [--status <status>] [--due <YYYY-MM-DD>] <ref>"
}
func (c *EditCmd) Needs() Need { return NeedSession }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.desc, c.status, c.due = optString{}, optString{}, optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	if !c.title.set && !c.desc.set && !c.status.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	task, code := findTask(ctx, st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	in := task.Input()
	if c.title.set {
		in.Title = c.title.value
	}
	if c.desc.set {
		in.Description = c.desc.value
	}
	if c.status.set {
		status, err := service.ParseStatus(c.status.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		in.Status = status
	}
	if c.due.set {
		due, err := service.ParseDate(c.due.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		in.DueDate = due
	}

	_, err := st.Tasks.UpdateTask(ctx, task.ID, in)
	return ExitCode(err)
}

// MoveCmd implements the move command: a status change with every other field unchanged.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to another status column" }
func (c *MoveCmd) Usage() string     { return "taskboard move [common flags] <ref> <status>" }
func (c *MoveCmd) Needs() Need       { return NeedSession }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	if len(args) == 1 {
		fmt.Fprintln(errOut, "error: status required")
		return exitcode.UserError
	}
	if len(args) > 2 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[2])
		return exitcode.UserError
	}

	var status service.Status
	if len(args) == 2 {
		s, err := service.ParseStatus(args[1])
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		status = s
	}

	task, code := findTask(ctx, st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	in := task.Input()
	in.Status = status
	_, err := st.Tasks.UpdateTask(ctx, task.ID, in)
	return ExitCode(err)
}
