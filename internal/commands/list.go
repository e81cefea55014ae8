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
	"taskmaster/internal/query"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskmaster` (no args) and `taskmaster list [flags]`.
type ListCmd struct {
	search   string
	category string
	priority string
	status   string
	sort     string
	page     int
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) NeedsService() bool { return true }
func (c *ListCmd) Usage() string {
	return "taskmaster list [--search <text>] [--category <c>] [--priority <p>] [--status <s>] [--sort <key>] [--page <n>]"
}

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.category, "category", query.All, "")
	fs.StringVar(&c.category, "c", query.All, "")
	fs.StringVar(&c.priority, "priority", query.All, "")
	fs.StringVar(&c.priority, "p", query.All, "")
	fs.StringVar(&c.status, "status", query.All, "")
	fs.StringVar(&c.sort, "sort", string(query.DefaultSort), "")
	fs.IntVar(&c.page, "page", 1, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	params, err := c.params(cfg)
	if err != nil {
		return fail(errOut, err)
	}

	res, err := svc.Query(ctx, params)
	if err != nil {
		return fail(errOut, err)
	}
	cfg.Debugf("query %+v: %d match(es), page %d/%d", params, res.Total, res.Page, res.TotalPages)

	if res.Empty() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	// Numbers are positions in the unfiltered default ordering so that
	// they can be passed to done, rm and friends.
	pos, err := positions(ctx, svc)
	if err != nil {
		return fail(errOut, err)
	}

	now := Now()
	output.FormatHeader(out, query.Describe(params))
	for _, t := range res.Tasks {
		output.FormatTask(out, pos[t.ID], t, now)
	}
	if res.TotalPages > 1 {
		output.FormatPageFooter(out, res)
	}
	return exitcode.Success
}

// params validates the flags and builds the query.
func (c *ListCmd) params(cfg *config.Config) (query.Params, error) {
	if c.page < 1 {
		return query.Params{}, usageErrorf("invalid page number: %d", c.page)
	}

	category := strings.ToLower(strings.TrimSpace(c.category))
	if category != query.All && !task.Category(category).Valid() {
		return query.Params{}, usageErrorf("invalid category: %s", c.category)
	}
	priority := strings.ToLower(strings.TrimSpace(c.priority))
	if priority != query.All && !task.Priority(priority).Valid() {
		return query.Params{}, usageErrorf("invalid priority: %s", c.priority)
	}
	status := strings.ToLower(strings.TrimSpace(c.status))
	switch task.Status(status) {
	case task.StatusPending, task.StatusCompleted, task.StatusOverdue, query.All:
	default:
		return query.Params{}, usageErrorf("invalid status: %s", c.status)
	}

	key, known := query.ParseSortKey(c.sort)
	if !known {
		if cfg.Settings.StrictSort {
			return query.Params{}, usageErrorf("invalid sort key: %s", c.sort)
		}
		cfg.Debugf("unknown sort key %q, using %s", c.sort, key)
	}

	return query.Params{
		Search:   c.search,
		Category: category,
		Priority: priority,
		Status:   status,
		Sort:     key,
		Page:     c.page,
		PageSize: cfg.Settings.PageSize,
	}, nil
}
