package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"

	"taskmaster/internal/backend/googletasks"
	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

func init() {
	Register(&PushCmd{})
}

// Remote is a task list that push mirrors the collection into.
type Remote interface {
	EnsureList(ctx context.Context, name string) (string, error)
	Upsert(ctx context.Context, listID, remoteID string, t task.Task) (string, error)
}

// RemoteFactory creates the push target.
type RemoteFactory func(ctx context.Context, cfg *config.Config) (Remote, error)

var newRemote RemoteFactory = func(ctx context.Context, cfg *config.Config) (Remote, error) {
	return googletasks.New(ctx, cfg)
}

// SetRemoteFactory replaces the push target (for testing).
// Returns a function restoring the previous factory.
func SetRemoteFactory(f RemoteFactory) func() {
	prev := newRemote
	newRemote = f
	return func() { newRemote = prev }
}

// PushCmd implements the push command.
type PushCmd struct {
	listName string
}

func (c *PushCmd) Name() string       { return "push" }
func (c *PushCmd) Aliases() []string  { return nil }
func (c *PushCmd) Synopsis() string   { return "Copy tasks to Google Tasks" }
func (c *PushCmd) Usage() string      { return "taskmaster push [--list <list-name>]" }
func (c *PushCmd) NeedsService() bool { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Check for required auth files
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n", cfg.Dir)
		return exitcode.AuthError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: taskmaster login)")
		return exitcode.AuthError
	}

	remote, err := newRemote(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	listName := c.listName
	if listName == "" {
		listName = cfg.GoogleList()
	}
	listID, err := remote.EnsureList(ctx, listName)
	if err != nil {
		return fail(errOut, err)
	}

	tasks, err := svc.Tasks(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	links, err := svc.RemoteLinks(ctx)
	if err != nil {
		return fail(errOut, err)
	}

	// Links are per list; pushing elsewhere starts over.
	if links[listKey] != listID {
		links = map[string]string{listKey: listID}
	}

	// Oldest first so the remote list fills in creation order.
	pushed := 0
	var pushErr error
	for _, t := range slices.Backward(tasks) {
		remoteID, err := remote.Upsert(ctx, listID, links[t.ID], t)
		if err != nil {
			pushErr = fmt.Errorf("%s: %w", t.Title, err)
			break
		}
		links[t.ID] = remoteID
		pushed++
		cfg.Debugf("pushed %s as %s", t.ID, remoteID)
	}

	// Forget links of deleted tasks.
	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}
	for id := range links {
		if id != listKey && !present[id] {
			delete(links, id)
		}
	}

	// Save progress even after a failure so the next push patches instead
	// of duplicating.
	if err := svc.SetRemoteLinks(ctx, links); err != nil {
		return fail(errOut, err)
	}
	if pushErr != nil {
		return fail(errOut, pushErr)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "pushed %d task(s) to %s\n", pushed, listName)
	}
	return exitcode.Success
}

// listKey records which remote list the links belong to.
const listKey = "@list"
