package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/store"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "TASKBOARD_PASSWORD"

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the task server" }
func (c *LoginCmd) Usage() string     { return "taskboard login [common flags] [--password <p>] <email>" }
func (c *LoginCmd) Needs() Need       { return NeedStores }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	c.password = ""
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	// The google backend signs in through the browser and ignores credentials.
	var email, password string
	if cfg.Backend != config.BackendGoogle {
		var ok bool
		email, password, ok = credentials(args, c.password, errOut)
		if !ok {
			return exitcode.UserError
		}
	}

	return ExitCode(st.Session.Login(ctx, email, password))
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskboard register [common flags] --name <name> [--password <p>] <email>"
}
func (c *RegisterCmd) Needs() Need { return NeedStores }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.name, c.password = "", ""
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	if c.name == "" {
		fmt.Fprintln(errOut, "error: name required (use --name)")
		return exitcode.UserError
	}
	email, password, ok := credentials(args, c.password, errOut)
	if !ok {
		return exitcode.UserError
	}

	return ExitCode(st.Session.Register(ctx, c.name, email, password))
}

// credentials takes the email from args and the password from the flag or PasswordEnv.
func credentials(args []string, flagPassword string, errOut io.Writer) (email, password string, ok bool) {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: email required")
		return "", "", false
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", "", false
	}

	password = flagPassword
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	if password == "" {
		fmt.Fprintf(errOut, "error: password required (use --password or %s)\n", PasswordEnv)
		return "", "", false
	}
	return args[0], password, true
}
