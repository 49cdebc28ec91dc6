package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/store"
)

func init() {
	Register(&BoardCmd{})
}

// BoardCmd implements the board command, the default when no command is given.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"ls", "list"} }
func (c *BoardCmd) Synopsis() string  { return "Show tasks grouped by status" }
func (c *BoardCmd) Usage() string     { return "taskboard board [common flags]" }
func (c *BoardCmd) Needs() Need       { return NeedSession }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := st.Tasks.ListTasks(ctx); err != nil {
		return ExitCode(err)
	}

	board := st.Tasks.Board()
	if board.Len() == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatBoard(out, board)
	return exitcode.Success
}
