package commands

import (
	"context"
	"flag"
	"io"

	"taskmaster/internal/config"
	"taskmaster/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "taskmaster done <ref>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, err := ResolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := svc.Complete(ctx, t.ID); err != nil {
		return fail(errOut, err)
	}
	return ok(cfg, out)
}
