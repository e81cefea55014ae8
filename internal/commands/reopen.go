package commands

import (
	"context"
	"flag"
	"io"

	"taskmaster/internal/config"
	"taskmaster/internal/service"
)

func init() {
	Register(&ReopenCmd{})
}

// ReopenCmd implements the reopen command.
type ReopenCmd struct{}

func (c *ReopenCmd) Name() string       { return "reopen" }
func (c *ReopenCmd) Aliases() []string  { return []string{"undo"} }
func (c *ReopenCmd) Synopsis() string   { return "Mark a task pending again" }
func (c *ReopenCmd) Usage() string      { return "taskmaster reopen <ref>" }
func (c *ReopenCmd) NeedsService() bool { return true }

func (c *ReopenCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ReopenCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, err := ResolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := svc.Reopen(ctx, t.ID); err != nil {
		return fail(errOut, err)
	}
	return ok(cfg, out)
}
