package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc   string
	status string
	due    string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskboard add [--desc <text>] [--status <status>] [--due <YYYY-MM-DD>] <title...>"
}
func (c *AddCmd) Needs() Need { return NeedSession }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.desc, c.status, c.due = "", string(service.StatusTodo), ""
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
	fs.StringVar(&c.status, "status", string(service.StatusTodo), "")
	fs.StringVar(&c.status, "s", string(service.StatusTodo), "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	status, err := service.ParseStatus(c.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	due, err := service.ParseDate(c.due)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	_, err = st.Tasks.CreateTask(ctx, service.TaskInput{
		Title:       title,
		Description: c.desc,
		Status:      status,
		DueDate:     due,
	})
	return ExitCode(err)
}
