package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/logging"
	"taskboard/internal/store"
	"taskboard/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: the web dashboard on a local address.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the web dashboard" }
func (c *ServeCmd) Usage() string     { return "taskboard serve [common flags] [--addr <host:port>]" }
func (c *ServeCmd) Needs() Need       { return NeedAPI }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	c.addr = ""
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, st *store.Stores, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	level := os.Getenv("LOG_LEVEL")
	if cfg.Debug {
		level = "debug"
	}
	logger := logging.NewJSON(errOut, level)

	srv := web.New(cfg, st.API, logger)
	if !cfg.Quiet {
		fmt.Fprintf(out, "listening on http://%s\n", addr)
	}
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
