package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskmaster/internal/config"
	"taskmaster/internal/exitcode"
	"taskmaster/internal/report"
	"taskmaster/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// Export formats.
const (
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	output string
}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Write all tasks to a file" }
func (c *ExportCmd) Usage() string      { return "taskmaster export [--format json|pdf] [--output <file>]" }
func (c *ExportCmd) NeedsService() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", FormatJSON, "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	var data []byte
	var err error
	switch strings.ToLower(c.format) {
	case FormatJSON:
		data, err = svc.Export(ctx)
		if err == nil {
			data = append(data, '\n')
		}
	case FormatPDF:
		if c.output == "" {
			fmt.Fprintln(errOut, "error: pdf export requires --output")
			return exitcode.UserError
		}
		tasks, terr := svc.Tasks(ctx)
		if terr != nil {
			return fail(errOut, terr)
		}
		data, err = report.PDF("All Tasks", tasks, Now())
	default:
		fmt.Fprintf(errOut, "error: unknown format: %s\n", c.format)
		return exitcode.UserError
	}
	if err != nil {
		return fail(errOut, err)
	}

	if c.output == "" || c.output == "-" {
		out.Write(data)
		return exitcode.Success
	}
	if err := os.WriteFile(c.output, data, 0644); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", c.output, err)
		return exitcode.UserError
	}
	cfg.Debugf("wrote %d bytes to %s", len(data), c.output)
	return ok(cfg, out)
}
