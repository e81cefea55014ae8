package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/output"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	desc     optString
	category optString
	priority optString
	due      optString
	noDue    bool
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Change a task" }
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) Usage() string {
	return "taskmaster edit [--title <t>] [--desc <text>] [--category <c>] [--priority <p>] [--due <date> | --no-due] <ref>"
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.Var(&c.category, "category", "")
	fs.Var(&c.category, "c", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.due, "due", "")
	fs.BoolVar(&c.noDue, "no-due", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.due.set && c.noDue {
		fmt.Fprintln(errOut, "error: cannot use both --due and --no-due")
		return exitcode.UserError
	}
	if !c.title.set && !c.desc.set && !c.category.set && !c.priority.set && !c.due.set && !c.noDue {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	t, err := ResolveTask(ctx, svc, args)
	if err != nil {
		return fail(errOut, err)
	}

	in := t.Input()
	if c.title.set {
		in.Title = c.title.value
	}
	if c.desc.set {
		in.Description = c.desc.value
	}
	if c.category.set {
		in.Category = c.category.value
	}
	if c.priority.set {
		in.Priority = c.priority.value
	}
	if c.due.set {
		if in.DueDate, err = task.ParseDue(c.due.value, output.Location); err != nil {
			return fail(errOut, err)
		}
	}
	if c.noDue {
		in.DueDate = nil
	}

	if _, err := svc.Update(ctx, t.ID, in); err != nil {
		return fail(errOut, err)
	}
	return ok(cfg, out)
}
