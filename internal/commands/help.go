package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. The listing comes from Registry,
// or DefaultRegistry when nil.
type HelpCmd struct {
	Registry *Registry
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskboard help" }
func (c *HelpCmd) Needs() Need       { return NeedNothing }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	fmt.Fprintln(out, "Usage:")
	if def, ok := reg.Default(); ok {
		fmt.Fprintf(out, "  %-44s %s\n", "taskboard", def.Synopsis())
	}
	for _, sec := range reg.Sections() {
		fmt.Fprintf(out, "\n%s:\n", sec.Title)
		for _, cmd := range sec.Commands {
			fmt.Fprintf(out, "  %s\n", cmd.Usage())
			line := cmd.Synopsis()
			if aliases := cmd.Aliases(); len(aliases) > 0 {
				line += " (alias: " + strings.Join(aliases, ", ") + ")"
			}
			fmt.Fprintf(out, "      %s\n", line)
		}
	}
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
A <ref> is a card number from the board or a task ID (a unique prefix is enough).
A <status> is one of TODO, IN_PROGRESS, DONE.
The password may also be given in TASKBOARD_PASSWORD.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
