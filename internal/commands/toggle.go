package commands

import (
	"context"
	"flag"
	"io"

	"taskmaster/internal/config"
	"taskmaster/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return nil }
func (c *ToggleCmd) Synopsis() string   { return "Flip a task between completed and pending" }
func (c *ToggleCmd) Usage() string      { return "taskmaster toggle <ref>" }
func (c *ToggleCmd) NeedsService() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, err := ResolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := svc.Toggle(ctx, t.ID); err != nil {
		return fail(errOut, err)
	}
	return ok(cfg, out)
}
