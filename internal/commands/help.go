package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskmaster help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskmaster                                   List tasks (same as list)
  taskmaster list [--search <text>] [--category <c>] [--priority <p>]
                  [--status <s>] [--sort <key>] [--page <n>]
  taskmaster add [--desc <text>] [--category <c>] [--priority <p>] [--due <date>] <title...>
  taskmaster create ...                        Same as add
  taskmaster edit [--title <t>] [--desc <text>] [--category <c>] [--priority <p>]
                  [--due <date> | --no-due] <ref>
  taskmaster show <ref>
  taskmaster done <ref>
  taskmaster reopen <ref>                      Also: undo
  taskmaster toggle <ref>
  taskmaster rm <ref>                          Also: delete
  taskmaster clear --force
  taskmaster stats
  taskmaster export [--format json|pdf] [--output <file>]
  taskmaster import <file|->
  taskmaster push [--list <list-name>]
  taskmaster login
  taskmaster logout
  taskmaster help
  taskmaster version

References:
  <ref> is a number shown by 'taskmaster list' or the first 4+ characters of a task id.

Values:
  category   personal, work, study, health, finance, other
  priority   low, medium, high, urgent
  status     pending, completed, overdue
  sort       created, dueDate, priority, title
  date       2006-01-02, 2006-01-02T15:04 or RFC 3339

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
