package commands

import (
	"errors"
	"fmt"
	"io"

	"taskmaster/internal/backend/googletasks"
	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/persist"
	"taskmaster/internal/service"
	"taskmaster/internal/task"
)

// UsageError is a problem with the command line itself.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// fail prints err and returns the exit code for it.
//
//	usage, validation, import format, not found -> UserError
//	rejected Google token                       -> AuthError
//	storage and anything else                   -> BackendError
func fail(errOut io.Writer, err error) int {
	var (
		usage   *UsageError
		invalid *task.ValidationError
		format  *persist.ImportFormatError
		storage *persist.StorageError
	)
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &invalid):
		for _, ve := range task.ValidationErrors(err) {
			fmt.Fprintf(errOut, "error: %v\n", ve)
		}
		return exitcode.UserError
	case errors.As(err, &format):
		fmt.Fprintf(errOut, "error: import failed: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, googletasks.ErrAuth):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.As(err, &storage):
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// ok prints the standard success line unless quiet.
func ok(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
