package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/output"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc     string
	category string
	priority string
	due      string
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) NeedsService() bool { return true }
func (c *AddCmd) Usage() string {
	return "taskmaster add [--desc <text>] [--category <c>] [--priority <p>] [--due <date>] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	due, err := task.ParseDue(c.due, output.Location)
	if err != nil {
		return fail(errOut, err)
	}

	created, err := svc.Create(ctx, task.Input{
		Title:       title,
		Description: c.desc,
		Category:    c.category,
		Priority:    c.priority,
		DueDate:     due,
	})
	if err != nil {
		return fail(errOut, err)
	}
	cfg.Debugf("created task %s", created.ID)

	return ok(cfg, out)
}
