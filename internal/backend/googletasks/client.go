// Package googletasks mirrors local tasks into a Google Tasks list.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskmaster/internal/config"
	"taskmaster/internal/task"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Google Tasks status values.
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"

	// Google Tasks limits.
	maxTitleLen = 1024
	maxNotesLen = 8192
)

var (
	// ErrAuth means the stored token was rejected.
	ErrAuth = errors.New("token expired or revoked (run: taskmaster login)")

	// ErrNotFound means the addressed list or task does not exist remotely.
	ErrNotFound = errors.New("not found")

	// ErrTimeout means an API call ran past APITimeout.
	ErrTimeout = errors.New("request timed out")
)

// Client pushes tasks through the Google Tasks API.
type Client struct {
	svc *tasks.Service
}

// New creates a client from the stored OAuth client and token.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg)
	if err != nil {
		return nil, err
	}

	// Create token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithHTTPClient creates a client against endpoint with a custom HTTP
// client (for testing). An empty endpoint means the production API.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// EnsureList returns the id of the list titled name (case-insensitive,
// trimmed), creating it if no list matches.
func (c *Client) EnsureList(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []string
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
				matches = append(matches, list.Id)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	switch len(matches) {
	case 0:
		created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		return created.Id, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous list name: %s", name)
	}
}

// Upsert writes t into the list. With a remoteID it patches that task,
// falling back to an insert if the remote task no longer exists.
// Returns the remote id of the written task.
func (c *Client) Upsert(ctx context.Context, listID, remoteID string, t task.Task) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := toRemote(t)

	if remoteID != "" {
		patched, err := c.svc.Tasks.Patch(listID, remoteID, body).Context(ctx).Do()
		if err == nil {
			return patched.Id, nil
		}
		if wrapped := wrapError(err); !errors.Is(wrapped, ErrNotFound) {
			return "", wrapped
		}
	}

	inserted, err := c.svc.Tasks.Insert(listID, body).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return inserted.Id, nil
}

// toRemote maps a local task onto the Google Tasks resource.
// Google Tasks only keeps the date part of a due date.
func toRemote(t task.Task) *tasks.Task {
	r := &tasks.Task{
		Title:  truncate(t.Title, maxTitleLen),
		Notes:  truncate(notes(t), maxNotesLen),
		Status: statusNeedsAction,
	}
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		r.Due = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}
	if t.Completed {
		r.Status = statusCompleted
		if t.CompletedAt != nil {
			at := t.CompletedAt.UTC().Format(time.RFC3339)
			r.Completed = &at
		}
	} else {
		// Patch must clear a completion set by an earlier push.
		r.NullFields = append(r.NullFields, "Completed")
	}
	return r
}

func notes(t task.Task) string {
	meta := fmt.Sprintf("[%s · %s]", t.Category.Label(), t.Priority.Label())
	if t.Description == "" {
		return meta
	}
	return t.Description + "\n\n" + meta
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// wrapError maps API errors onto ErrAuth, ErrNotFound and ErrTimeout.
// Other errors pass through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusNotFound:
			return ErrNotFound
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return ErrAuth
	}
	return err
}
