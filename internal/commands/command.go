// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsService returns true if the command operates on the task collection.
	// Commands like help, version, login, logout return false.
	NeedsService() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings).
	// svc is nil if NeedsService() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// Now is the clock used to derive overdue status.
var Now = time.Now

// Stdin is read by import when the file argument is "-".
var Stdin io.Reader = os.Stdin
