package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/service"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command.
type ImportCmd struct{}

func (c *ImportCmd) Name() string       { return "import" }
func (c *ImportCmd) Aliases() []string  { return nil }
func (c *ImportCmd) Synopsis() string   { return "Add tasks from an exported file" }
func (c *ImportCmd) Usage() string      { return "taskmaster import <file|->" }
func (c *ImportCmd) NeedsService() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: exactly one file required")
		return exitcode.UserError
	}

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read %s: %v\n", args[0], err)
		return exitcode.UserError
	}

	res, err := svc.Import(ctx, data)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d task(s)", len(res.Accepted))
		if res.Rejected > 0 {
			fmt.Fprintf(out, ", skipped %d invalid", res.Rejected)
		}
		fmt.Fprintln(out)
	}
	return exitcode.Success
}
