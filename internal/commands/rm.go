package commands

import (
	"context"
	"flag"
	"io"

	"taskmaster/internal/config"
	"taskmaster/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskmaster rm <ref>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, err := ResolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}
	if err := svc.Delete(ctx, t.ID); err != nil {
		return fail(errOut, err)
	}
	cfg.Debugf("deleted task %s", t.ID)
	return ok(cfg, out)
}
