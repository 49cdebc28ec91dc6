package commands

import (
	"context"
	"flag"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/store"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show one task in full" }
func (c *ShowCmd) Usage() string     { return "taskboard show [common flags] <ref>" }
func (c *ShowCmd) Needs() Need       { return NeedSession }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	found, code := findTask(ctx, st, args, errOut)
	if code != exitcode.Success {
		return code
	}

	// The board gives the ID; the detail comes fresh from the server.
	task, ok := st.Tasks.GetTaskByID(ctx, found.ID)
	if !ok {
		return exitcode.BackendError
	}

	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
